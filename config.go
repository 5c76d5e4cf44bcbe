package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the service settings. Every field has a default so the server
// runs with no config file at all.
type Config struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`
	// DataDir is where the badger database lives.
	DataDir string `yaml:"data_dir"`
	// LogLevel: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFormat: text or json.
	LogFormat string `yaml:"log_format"`

	// Engine tuning. The alignment engine's window and epsilon constants are
	// deliberately configurable; see retime.Options.
	WindowSec  float64 `yaml:"window_sec"`
	EpsilonSec float64 `yaml:"epsilon_sec"`
}

func defaultConfig() *Config {
	return &Config{
		Addr:      ":8080",
		DataDir:   "./data",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// loadConfig reads the YAML config at path on top of the defaults. A missing
// file is fine when the path is the default one; an explicitly named file
// must exist.
func loadConfig(path string, required bool) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	if c.WindowSec < 0 || c.EpsilonSec < 0 {
		return errors.New("window_sec and epsilon_sec must not be negative")
	}
	return nil
}
