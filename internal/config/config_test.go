package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.URL != "http://127.0.0.1:8000" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Stream.ReconnectDelay != 3*time.Second {
		t.Errorf("ReconnectDelay = %v, want 3s", cfg.Stream.ReconnectDelay)
	}
	if cfg.Stream.LogCapacity != 500 {
		t.Errorf("LogCapacity = %d, want 500", cfg.Stream.LogCapacity)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  url: http://melee-box:9000
stream:
  reconnect_delay: 10s
mock:
  port: 9000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "http://melee-box:9000" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Stream.ReconnectDelay != 10*time.Second {
		t.Errorf("ReconnectDelay = %v, want 10s", cfg.Stream.ReconnectDelay)
	}
	// Untouched keys keep their defaults.
	if cfg.Stream.LogCapacity != 500 {
		t.Errorf("LogCapacity = %d, want default 500", cfg.Stream.LogCapacity)
	}
	if cfg.Mock.Port != 9000 {
		t.Errorf("Mock.Port = %d, want 9000", cfg.Mock.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of missing file returned nil error")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of malformed file returned nil error")
	}
}
