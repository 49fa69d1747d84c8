package server

import "os"

// Config holds the HTTP server configuration, read from the
// environment. Callers load .env files (godotenv) before calling
// FromEnv if they want file-based config.
type Config struct {
	// Addr is the listen address, ENVGATE_ADDR.
	Addr string

	// DBPath is the SQLite database path, ENVGATE_DB.
	DBPath string
}

// FromEnv builds a Config from environment variables with defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:   os.Getenv("ENVGATE_ADDR"),
		DBPath: os.Getenv("ENVGATE_DB"),
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "envgate.db"
	}
	return cfg
}
