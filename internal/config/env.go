package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with environment variables. A .env file in the
// working directory is loaded first when present; real environment variables
// take precedence over it, which is godotenv's default.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("PORTAL_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("PORTAL_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("PORTAL_SESSION_DB"); v != "" {
		cfg.SessionDBPath = v
	}
	if v := os.Getenv("PORTAL_STORAGE_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("PORTAL_STORAGE_REGION"); v != "" {
		cfg.Storage.Region = v
	}
	if v := os.Getenv("PORTAL_STORAGE_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("PORTAL_STORAGE_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("PORTAL_STORAGE_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
}
