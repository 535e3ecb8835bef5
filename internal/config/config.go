package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultServerURL = "http://localhost:8000"
	DefaultTimeout   = 15 * time.Second
)

// Config holds the runtime settings for the client
type Config struct {
	ServerURL string
	DBPath    string
	Timeout   time.Duration
}

// Load reads configuration from a .env file (if present) and the
// environment. Flags layered on top by the CLI take precedence over
// both.
func Load() Config {
	// Missing .env is the normal case, not an error
	_ = godotenv.Load()

	cfg := Config{
		ServerURL: DefaultServerURL,
		Timeout:   DefaultTimeout,
	}

	if v := os.Getenv("CALTRACK_SERVER"); v != "" {
		cfg.ServerURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("CALTRACK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CALTRACK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}
