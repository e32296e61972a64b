package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// Open opens the SQLite catalog database, sets recommended pragmas, and
// validates connectivity. An in-memory database is pinned to one connection,
// otherwise every pooled connection would see its own empty database.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	pragmas := `
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`
	if dbPath == memoryPath {
		db.SetMaxOpenConns(1)
	} else {
		pragmas += "PRAGMA journal_mode = WAL;"
	}

	if _, err := db.Exec(pragmas); err != nil {
		db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return db, nil
}
