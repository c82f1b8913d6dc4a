// internal/config/config.go
package config

import "os"

// Config holds all runtime configuration, loaded from the environment.
// DatabaseURL selects the storage backend: when set the service runs
// against PostgreSQL, otherwise against a local SQLite file.
type Config struct {
	Port        string
	DatabaseURL string
	SQLitePath  string
	Environment string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "fiado.db"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
