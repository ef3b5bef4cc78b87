package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/matchpoint-app/matchpoint/internal/flagx"
	"github.com/matchpoint-app/matchpoint/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "720h"
// or as integer nanoseconds. Parsed values are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr            string         `json:"address"`
	DatabaseDSN             string         `json:"database_dsn"`
	UseMemoryStorage        *bool          `json:"use_memory_storage"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	LoginRatePerMinute      int            `json:"login_rate_per_minute"`
	GeocoderBaseURL         string         `json:"geocoder_base_url"`
	S3RootUser              string         `json:"s3_root_user"`
	S3RootPassword          string         `json:"s3_root_password"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
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

	if jc.EndpointAddr != "" {
		cfg.EndpointAddr = jc.EndpointAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.UseMemoryStorage != nil {
		cfg.UseMemoryStorage = *jc.UseMemoryStorage
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.SessionValidityDuration.Duration != 0 {
		cfg.SessionValidityDuration = time.Duration(jc.SessionValidityDuration.Duration)
	}
	if jc.LoginRatePerMinute != 0 {
		cfg.LoginRatePerMinute = jc.LoginRatePerMinute
	}
	if jc.GeocoderBaseURL != "" {
		cfg.GeocoderBaseURL = jc.GeocoderBaseURL
	}
	if jc.S3RootUser != "" {
		cfg.S3RootUser = jc.S3RootUser
	}
	if jc.S3RootPassword != "" {
		cfg.S3RootPassword = jc.S3RootPassword
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
}
