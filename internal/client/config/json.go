package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/matchpoint-app/matchpoint/internal/flagx"
	"github.com/matchpoint-app/matchpoint/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. timex.Duration
// lets the file spell durations as strings like "2s" or integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL    string         `json:"server_base_url"`
	LocalDBPath      string         `json:"local_db_path"`
	HandshakeTimeout timex.Duration `json:"handshake_timeout"`
	CoalesceDelay    timex.Duration `json:"coalesce_delay"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// the -c/-config flags. When no file is named, nothing happens. Empty fields
// in the file leave the current value untouched.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.LocalDBPath != "" {
		cfg.LocalDBPath = jc.LocalDBPath
	}
	if jc.HandshakeTimeout.Duration != 0 {
		cfg.HandshakeTimeout = time.Duration(jc.HandshakeTimeout.Duration)
	}
	if jc.CoalesceDelay.Duration != 0 {
		cfg.CoalesceDelay = time.Duration(jc.CoalesceDelay.Duration)
	}
}
