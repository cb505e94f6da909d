package config

import (
	"encoding/json"
	"os"

	"github.com/techwork/portal-cli/internal/flagx"
	"github.com/techwork/portal-cli/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Durations can
// be given as strings like "50s" or as integer nanoseconds.
type jsonConfig struct {
	ServerURL        string         `json:"server_url"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	SessionDBPath    string         `json:"session_db_path"`
	StorageEndpoint  string         `json:"storage_endpoint"`
	StorageRegion    string         `json:"storage_region"`
	StorageBucket    string         `json:"storage_bucket"`
	StorageAccessKey string         `json:"storage_access_key"`
	StorageSecretKey string         `json:"storage_secret_key"`
}

// parseJSON overlays cfg with values from the file named by -c/-config.
// No flag, no file, nothing happens. Read or unmarshal errors panic; the
// process cannot do anything useful with a broken config file.
func parseJSON(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SessionDBPath != "" {
		cfg.SessionDBPath = jc.SessionDBPath
	}
	if jc.StorageEndpoint != "" {
		cfg.Storage.Endpoint = jc.StorageEndpoint
	}
	if jc.StorageRegion != "" {
		cfg.Storage.Region = jc.StorageRegion
	}
	if jc.StorageBucket != "" {
		cfg.Storage.Bucket = jc.StorageBucket
	}
	if jc.StorageAccessKey != "" {
		cfg.Storage.AccessKey = jc.StorageAccessKey
	}
	if jc.StorageSecretKey != "" {
		cfg.Storage.SecretKey = jc.StorageSecretKey
	}
}
