// Package config loads runtime configuration for the Matchpoint CLI.
//
// Sources and precedence: built-in defaults, then an optional JSON file
// named by -c/-config, then command-line flags. Later sources win.
package config

import "time"

// Config holds runtime settings for the Matchpoint CLI.
type Config struct {
	// ServerBaseURL is the backend origin, e.g. "http://127.0.0.1:8080".
	ServerBaseURL string
	// LocalDBPath is the sqlite file for client-side state.
	LocalDBPath string
	// HandshakeTimeout bounds the post-login identity probe.
	HandshakeTimeout time.Duration
	// CoalesceDelay is the quiet window before a profile save triggers a
	// refresh probe.
	CoalesceDelay time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.LocalDBPath = "matchpoint.db"
	c.HandshakeTimeout = 2 * time.Second
	c.CoalesceDelay = 200 * time.Millisecond
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
