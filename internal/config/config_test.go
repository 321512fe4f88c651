package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Watch.URL != "http://127.0.0.1:8080/events" {
		t.Errorf("Watch.URL = %q", cfg.Watch.URL)
	}
	if cfg.Watch.ProbeInterval != 10*time.Second {
		t.Errorf("Watch.ProbeInterval = %v, want 10s", cfg.Watch.ProbeInterval)
	}
	if cfg.Watch.RefreshInterval != time.Second {
		t.Errorf("Watch.RefreshInterval = %v, want 1s", cfg.Watch.RefreshInterval)
	}
	if cfg.Feed.Port != 8080 {
		t.Errorf("Feed.Port = %d, want 8080", cfg.Feed.Port)
	}
	if cfg.Feed.HistorySize != 256 {
		t.Errorf("Feed.HistorySize = %d, want 256", cfg.Feed.HistorySize)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	content := `
watch:
  url: https://scans.example.com/events?topic=all
  token: abc
  probe_interval: 30s
feed:
  port: 9999
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Watch.URL != "https://scans.example.com/events?topic=all" {
		t.Errorf("Watch.URL = %q", cfg.Watch.URL)
	}
	if cfg.Watch.Token != "abc" {
		t.Errorf("Watch.Token = %q, want \"abc\"", cfg.Watch.Token)
	}
	if cfg.Watch.ProbeInterval != 30*time.Second {
		t.Errorf("Watch.ProbeInterval = %v, want 30s", cfg.Watch.ProbeInterval)
	}
	if cfg.Feed.Port != 9999 {
		t.Errorf("Feed.Port = %d, want 9999", cfg.Feed.Port)
	}

	// Fields the file leaves out keep their defaults.
	if cfg.Watch.RefreshInterval != time.Second {
		t.Errorf("Watch.RefreshInterval = %v, want default 1s", cfg.Watch.RefreshInterval)
	}
	if cfg.Feed.HistorySize != 256 {
		t.Errorf("Feed.HistorySize = %d, want default 256", cfg.Feed.HistorySize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load succeeded on a missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("watch: [not: a: mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load succeeded on malformed YAML")
	}
}
