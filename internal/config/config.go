// Package config assembles runtime settings for the portal CLI from
// defaults, an optional JSON file, environment variables (.env supported),
// and command-line flags — later sources win.
package config

import (
	"time"

	"github.com/techwork/portal-cli/internal/api"
	"github.com/techwork/portal-cli/internal/avatar"
)

// Config holds runtime settings for the portal CLI.
//
// ServerURL is scheme://host[:port] of the portal backend; the auth API
// prefix is appended by the API client. RequestTimeout bounds every request;
// there is no per-operation deadline shorter than it.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	SessionDBPath  string
	Storage        avatar.Config
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.RequestTimeout = api.DefaultTimeout
	c.SessionDBPath = "portal-session.db"
	c.Storage = avatar.Config{
		Endpoint: "http://127.0.0.1:9000",
		Region:   "us-east-1",
		Bucket:   "avatars",
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a config file is given), the environment, and command-line
// flags, in that order.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
