// Package config loads service settings from an optional YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of the wfgraph server.
type Config struct {
	Version  int `yaml:"version"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Fetch struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"fetch"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the built-in settings.
func Default() *Config {
	cfg := &Config{Version: 1}
	cfg.HTTP.Addr = ":3000"
	cfg.Fetch.PageSize = 200
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads path (if non-empty) over the defaults, then applies environment
// overrides: DATABASE_URL, WFGRAPH_ADDR, WFGRAPH_PAGE_SIZE, WFGRAPH_LOG_LEVEL
// and WFGRAPH_LOG_FORMAT.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if cfg.Version != 1 {
			return nil, fmt.Errorf("unsupported config version: %d", cfg.Version)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("WFGRAPH_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("WFGRAPH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("WFGRAPH_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("WFGRAPH_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("WFGRAPH_PAGE_SIZE: %w", err)
		}
		cfg.Fetch.PageSize = n
	}

	if cfg.Fetch.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", cfg.Fetch.PageSize)
	}
	return cfg, nil
}
