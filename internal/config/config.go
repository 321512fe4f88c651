// Package config loads the YAML configuration shared by the scanwatch
// client and the scanfeed demo server.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Watch WatchConfig `yaml:"watch"`
	Feed  FeedConfig  `yaml:"feed"`
}

// WatchConfig configures the subscription client.
type WatchConfig struct {
	// URL of the push endpoint, topic selection included.
	URL string `yaml:"url"`
	// Token is sent as a bearer token if set.
	Token string `yaml:"token"`
	// Cookie is sent verbatim as the Cookie header if set.
	Cookie string `yaml:"cookie"`
	// ProbeInterval is how often connection liveness is checked.
	ProbeInterval time.Duration `yaml:"probe_interval"`
	// RefreshInterval is how often in-progress durations re-render.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// FeedConfig configures the demo feed server.
type FeedConfig struct {
	Host  string `yaml:"host"`
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
	// HistorySize bounds how many published events are kept for replay.
	HistorySize int `yaml:"history_size"`
	// PublishInterval is the simulator tick.
	PublishInterval time.Duration `yaml:"publish_interval"`
	// FailRatio is the fraction of simulated scans that end failed.
	FailRatio float64 `yaml:"fail_ratio"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Watch: WatchConfig{
			URL:             "http://127.0.0.1:8080/events",
			ProbeInterval:   10 * time.Second,
			RefreshInterval: time.Second,
		},
		Feed: FeedConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			HistorySize:     256,
			PublishInterval: time.Second,
			FailRatio:       0.2,
		},
	}
}

// Load reads a YAML config file on top of the defaults.
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
