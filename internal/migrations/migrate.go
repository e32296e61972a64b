package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

const (
	sqliteDialect = "sqlite3"
	migrationsDir = "sql"
)

//go:embed sql/*.sql
var embedded embed.FS

// Up runs all pending catalog migrations embedded in the binary.
func Up(db *sql.DB) error {
	goose.SetBaseFS(embedded)

	if err := goose.SetDialect(sqliteDialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	return nil
}

// Version reports the schema version currently applied.
func Version(db *sql.DB) (int64, error) {
	goose.SetBaseFS(embedded)

	if err := goose.SetDialect(sqliteDialect); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}

	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("read goose db version: %w", err)
	}
	return v, nil
}
