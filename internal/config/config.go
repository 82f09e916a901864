// Package config loads the console's YAML configuration.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Stream StreamConfig `yaml:"stream"`
	Mock   MockConfig   `yaml:"mock"`
}

// ServerConfig locates the agent backend.
type ServerConfig struct {
	URL string `yaml:"url"` // HTTP base; the stream endpoint is derived
}

// StreamConfig tunes the event stream session.
type StreamConfig struct {
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	KeepaliveInterval time.Duration `yaml:"keepalive_interval"`
	LogCapacity       int           `yaml:"log_capacity"`
}

// MockConfig configures the development mock server (cmd/mockd).
type MockConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL: "http://127.0.0.1:8000",
		},
		Stream: StreamConfig{
			ReconnectDelay:    3 * time.Second,
			KeepaliveInterval: 30 * time.Second,
			LogCapacity:       500,
		},
		Mock: MockConfig{
			Host:         "127.0.0.1",
			Port:         8000,
			TickInterval: 400 * time.Millisecond,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
