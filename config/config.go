// Package config loads the YAML configuration file shared by the theta CLI
// and the Terminal supervisor. Library code never reads files; embed these
// values into the per-client configs instead.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level file layout.
type Config struct {
	Terminal TerminalConfig `yaml:"terminal"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// TerminalConfig describes where the Terminal runs and how to launch it.
type TerminalConfig struct {
	Host        string `yaml:"host"`
	ControlPort int    `yaml:"control_port"`
	StreamPort  int    `yaml:"stream_port"`
	RESTPort    int    `yaml:"rest_port"`

	// Supervisor settings, used by `theta terminal start`.
	Dir      string `yaml:"dir"`
	JavaPath string `yaml:"java_path"`
	JVMMemGB int    `yaml:"jvm_mem_gb"`
}

// RESTBaseURL returns the base URL for the Terminal's HTTP port.
func (t TerminalConfig) RESTBaseURL() string {
	return fmt.Sprintf("http://%s:%d", t.Host, t.RESTPort)
}

// BridgeConfig describes the WebSocket re-publisher.
type BridgeConfig struct {
	Addr       string `yaml:"addr"`
	Path       string `yaml:"path"`
	MaxClients int    `yaml:"max_clients"`
	SendBuffer int    `yaml:"send_buffer"`
}

// MetricsConfig describes the Prometheus endpoint. An empty Addr disables
// it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls CLI logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // zerolog level name, default "info"
	Pretty bool   `yaml:"pretty"` // console writer instead of JSON
}

// Default returns the configuration for a local Terminal with stock ports.
func Default() *Config {
	return &Config{
		Terminal: TerminalConfig{
			Host:        "127.0.0.1",
			ControlPort: 11000,
			StreamPort:  10000,
			RESTPort:    25510,
			Dir:         ".",
			JavaPath:    "java",
		},
		Bridge: BridgeConfig{
			Addr:       "127.0.0.1:8080",
			Path:       "/stream",
			MaxClients: 64,
			SendBuffer: 256,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads a YAML file over the defaults. Absent keys keep their default
// values, so a config file only needs the settings it changes.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges the YAML schema can't express.
func (c *Config) Validate() error {
	if c.Terminal.Host == "" {
		return fmt.Errorf("terminal.host is required")
	}
	for name, port := range map[string]int{
		"terminal.control_port": c.Terminal.ControlPort,
		"terminal.stream_port":  c.Terminal.StreamPort,
		"terminal.rest_port":    c.Terminal.RESTPort,
	} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("%s %d out of range", name, port)
		}
	}
	if c.Terminal.JVMMemGB < 0 {
		return fmt.Errorf("terminal.jvm_mem_gb must be non-negative")
	}
	if c.Bridge.MaxClients < 1 {
		return fmt.Errorf("bridge.max_clients must be positive")
	}
	if c.Bridge.SendBuffer < 1 {
		return fmt.Errorf("bridge.send_buffer must be positive")
	}
	return nil
}
