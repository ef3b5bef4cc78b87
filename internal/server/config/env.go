package config

import (
	"os"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the process environment. A .env
// file in the working directory is loaded first if present; a missing file is
// not an error. Only non-empty variables override.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("MP_ADDRESS"); v != "" {
		cfg.EndpointAddr = v
	}
	if v := os.Getenv("MP_DATABASE_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("MP_SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv("MP_GEOCODER_BASE_URL"); v != "" {
		cfg.GeocoderBaseURL = v
	}
	if v := os.Getenv("MP_S3_ROOT_USER"); v != "" {
		cfg.S3RootUser = v
	}
	if v := os.Getenv("MP_S3_ROOT_PASSWORD"); v != "" {
		cfg.S3RootPassword = v
	}
	if v := os.Getenv("MP_S3_BUCKET"); v != "" {
		cfg.S3Bucket = v
	}
	if v := os.Getenv("MP_S3_REGION"); v != "" {
		cfg.S3Region = v
	}
	if v := os.Getenv("MP_S3_BASE_ENDPOINT"); v != "" {
		cfg.S3BaseEndpoint = v
	}
}
