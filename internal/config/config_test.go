package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	require.Equal(t, "http://127.0.0.1:8000", cfg.ServerURL)
	require.Equal(t, 50*time.Second, cfg.RequestTimeout)
	require.Equal(t, "portal-session.db", cfg.SessionDBPath)
	require.Equal(t, "avatars", cfg.Storage.Bucket)
}

func TestParseJSON_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_url": "https://portal.example.com",
		"request_timeout": "30s",
		"storage_bucket": "pictures"
	}`), 0o600))

	origArgs := os.Args
	os.Args = []string{"cli", "-c", path}
	t.Cleanup(func() { os.Args = origArgs })

	var cfg Config
	cfg.LoadDefaults()
	parseJSON(&cfg)

	require.Equal(t, "https://portal.example.com", cfg.ServerURL)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.Equal(t, "pictures", cfg.Storage.Bucket)
	// Fields absent from the file keep their defaults.
	require.Equal(t, "portal-session.db", cfg.SessionDBPath)
}

func TestParseEnv_Overlay(t *testing.T) {
	t.Setenv("PORTAL_SERVER_URL", "https://env.example.com")
	t.Setenv("PORTAL_REQUEST_TIMEOUT", "25s")
	t.Setenv("PORTAL_STORAGE_ACCESS_KEY", "ak")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	require.Equal(t, "https://env.example.com", cfg.ServerURL)
	require.Equal(t, 25*time.Second, cfg.RequestTimeout)
	require.Equal(t, "ak", cfg.Storage.AccessKey)
}

func TestParseEnv_BadTimeoutIgnored(t *testing.T) {
	t.Setenv("PORTAL_REQUEST_TIMEOUT", "soon")

	var cfg Config
	cfg.LoadDefaults()
	parseEnv(&cfg)

	require.Equal(t, 50*time.Second, cfg.RequestTimeout)
}

func TestParseFlags_Overlay(t *testing.T) {
	origArgs := os.Args
	os.Args = []string{"cli", "-a", "https://flag.example.com", "-t", "10", "-d", "/tmp/s.db"}
	t.Cleanup(func() { os.Args = origArgs })

	var cfg Config
	cfg.LoadDefaults()
	parseFlags(&cfg)

	require.Equal(t, "https://flag.example.com", cfg.ServerURL)
	require.Equal(t, 10*time.Second, cfg.RequestTimeout)
	require.Equal(t, "/tmp/s.db", cfg.SessionDBPath)
}
