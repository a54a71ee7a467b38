package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Default landmark site shown before any map click: Mer de Glace, WGMS id 353.
const defaultGlacierID = 353

// Config holds environment-driven settings for the REST API.
type Config struct {
	// DatasetPath points at the SQLite snapshot produced by the offline ETL.
	// Ignored when DatabaseURL is set.
	DatasetPath string
	// DatabaseURL selects the Postgres loader when non-empty.
	DatabaseURL string

	Port             int
	DefaultGlacierID int
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		DatasetPath:      "./data/wgms.db",
		Port:             8080,
		DefaultGlacierID: defaultGlacierID,
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if path := os.Getenv("DATASET_PATH"); path != "" {
		cfg.DatasetPath = path
	}
	if cfg.DatabaseURL == "" && cfg.DatasetPath == "" {
		return cfg, errors.New("either DATASET_PATH or DATABASE_URL is required")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if idStr := os.Getenv("DEFAULT_GLACIER_ID"); idStr != "" {
		if id, err := strconv.Atoi(idStr); err == nil && id > 0 {
			cfg.DefaultGlacierID = id
		} else {
			return cfg, fmt.Errorf("invalid DEFAULT_GLACIER_ID: %s", idStr)
		}
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
