package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors config.toml. Empty values keep the current setting.
type fileConfig struct {
	BaseURL  string `toml:"base_url"`
	PageSize int    `toml:"page_size"`
	SortBy   string `toml:"sort_by"`
	SortDir  string `toml:"sort_dir"`
	Debounce string `toml:"debounce"`
	LogLevel string `toml:"log_level"`
}

// Load builds the configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (<dir>/config.toml), if present
// 3. Environment variables
// Flags are applied by the caller afterwards.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	if err := loadConfigFile(cfg, cfg.ConfigPath()); err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", cfg.ConfigPath(), err)
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	return cfg, nil
}

// loadConfigFile merges a TOML file into cfg. A missing file is not an error.
func loadConfigFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if fc.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(fc.BaseURL, "/")
	}
	if fc.PageSize != 0 {
		cfg.PageSize = fc.PageSize
	}
	if fc.SortBy != "" {
		cfg.SortBy = fc.SortBy
	}
	if fc.SortDir != "" {
		cfg.SortDir = strings.ToUpper(fc.SortDir)
	}
	if fc.Debounce != "" {
		d, err := time.ParseDuration(fc.Debounce)
		if err != nil {
			return fmt.Errorf("invalid debounce: %w", err)
		}
		cfg.Debounce = d
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	return nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TODOCTL_BASE_URL"); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("TODOCTL_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TODOCTL_PAGE_SIZE: %w", err)
		}
		cfg.PageSize = n
	}
	if v := os.Getenv("TODOCTL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}
