package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	defaultDBPath    = "./catalog.db"
	defaultPort      = "8080"
	defaultEnv       = "development"
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level  string
	Format string
}

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env             string
	DBPath          string
	Port            string
	AdminToken      string
	LengthThreshold string
	SeedOnStart     bool
	Log             LogConfig

	warnings []string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Missing .env is fine; production injects real environment variables.
	dotenvErr := loadDotEnv(".env")

	cfg := Config{
		Env:             getEnv("APP_ENV", defaultEnv),
		DBPath:          getEnv("DB_PATH", defaultDBPath),
		Port:            getEnv("PORT", defaultPort),
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
		LengthThreshold: strings.ToLower(strings.TrimSpace(os.Getenv("PRICING_LENGTH_THRESHOLD"))),
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
			Format: strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		},
	}

	if dotenvErr != nil {
		cfg.warnings = append(cfg.warnings, "could not load .env: "+dotenvErr.Error())
	}

	if raw := os.Getenv("SEED_ON_START"); raw != "" {
		seed, err := strconv.ParseBool(raw)
		if err != nil {
			cfg.warnings = append(cfg.warnings, "SEED_ON_START is not a boolean, ignoring")
		}
		cfg.SeedOnStart = seed
	}

	if cfg.AdminToken == "" {
		cfg.warnings = append(cfg.warnings, "ADMIN_TOKEN is not set, admin endpoints are disabled")
	}

	return cfg
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}

// Warnings returns configuration problems worth logging once a logger exists.
func (c Config) Warnings() []string {
	return c.warnings
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
