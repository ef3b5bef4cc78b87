package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerBaseURL)
	assert.Equal(t, "matchpoint.db", cfg.LocalDBPath)
	assert.Equal(t, 2*time.Second, cfg.HandshakeTimeout)
	assert.Equal(t, 200*time.Millisecond, cfg.CoalesceDelay)
}

func TestParseJsonOverlay(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.json")
	raw, err := json.Marshal(map[string]any{
		"server_base_url":   "https://app.example",
		"handshake_timeout": "5s",
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, raw, 0o600))

	origArgs := os.Args
	os.Args = []string{"test", "-config", file}
	t.Cleanup(func() { os.Args = origArgs })

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	require.Equal(t, "https://app.example", cfg.ServerBaseURL)
	require.Equal(t, 5*time.Second, cfg.HandshakeTimeout)
	// Fields absent from the file keep their defaults.
	require.Equal(t, "matchpoint.db", cfg.LocalDBPath)
	require.Equal(t, 200*time.Millisecond, cfg.CoalesceDelay)
}
