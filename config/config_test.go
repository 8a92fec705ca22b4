package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig drops a YAML file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "theta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestDefault verifies the stock local-Terminal settings validate.
func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1", cfg.Terminal.Host)
	assert.Equal(t, 11000, cfg.Terminal.ControlPort)
	assert.Equal(t, 10000, cfg.Terminal.StreamPort)
	assert.Equal(t, 25510, cfg.Terminal.RESTPort)
	assert.Equal(t, "http://127.0.0.1:25510", cfg.Terminal.RESTBaseURL())
	assert.Equal(t, 64, cfg.Bridge.MaxClients)
	assert.Equal(t, 256, cfg.Bridge.SendBuffer)
	assert.Equal(t, "info", cfg.Log.Level)
}

// TestLoad verifies file values override defaults while absent keys keep
// theirs.
func TestLoad(t *testing.T) {
	path := writeConfig(t, `
terminal:
  host: 192.168.1.10
  rest_port: 25511
bridge:
  max_clients: 8
log:
  level: debug
  pretty: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.10", cfg.Terminal.Host)
	assert.Equal(t, 25511, cfg.Terminal.RESTPort)
	assert.Equal(t, "http://192.168.1.10:25511", cfg.Terminal.RESTBaseURL())
	assert.Equal(t, 8, cfg.Bridge.MaxClients)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)

	// Defaults survive for keys the file omits.
	assert.Equal(t, 11000, cfg.Terminal.ControlPort)
	assert.Equal(t, 256, cfg.Bridge.SendBuffer)
	assert.Equal(t, "/stream", cfg.Bridge.Path)
}

// TestLoadErrors verifies missing files, bad YAML, and out-of-range values
// are all reported.
func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config")
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "terminal: [not a map"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeConfig(t, "terminal:\n  control_port: 0\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
		assert.Contains(t, err.Error(), "out of range")
	})
}

// TestValidate verifies each range check fires.
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty host", func(c *Config) { c.Terminal.Host = "" }, "terminal.host"},
		{"control port low", func(c *Config) { c.Terminal.ControlPort = 0 }, "out of range"},
		{"stream port high", func(c *Config) { c.Terminal.StreamPort = 70000 }, "out of range"},
		{"rest port negative", func(c *Config) { c.Terminal.RESTPort = -1 }, "out of range"},
		{"negative jvm mem", func(c *Config) { c.Terminal.JVMMemGB = -1 }, "jvm_mem_gb"},
		{"zero max clients", func(c *Config) { c.Bridge.MaxClients = 0 }, "max_clients"},
		{"zero send buffer", func(c *Config) { c.Bridge.SendBuffer = 0 }, "send_buffer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
