// Package config handles the configuration directory, the config file and
// the layered settings of the CLI.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// AppName is the application directory name.
	AppName = "todoctl"

	// ConfigFile is the optional TOML settings filename.
	ConfigFile = "config.toml"

	// TokenFile is the stored session token filename.
	TokenFile = "token.json"
)

// Defaults for settings not provided by file, environment or flags.
const (
	DefaultBaseURL  = "http://localhost:8080"
	DefaultPageSize = 10
	DefaultSortBy   = "id"
	DefaultSortDir  = "DESC"
	DefaultDebounce = 300 * time.Millisecond
	DefaultLogLevel = "info"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// BaseURL is the backend root, e.g. http://localhost:8080.
	BaseURL string

	// PageSize is the fixed page size for listing and search.
	PageSize int

	// SortBy and SortDir are forwarded to the backend listing endpoint.
	SortBy  string
	SortDir string

	// Debounce is the quiet period before a search query is sent.
	Debounce time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// New creates a Config with defaults and the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todoctl or $HOME/.config/todoctl.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		BaseURL:  DefaultBaseURL,
		PageSize: DefaultPageSize,
		SortBy:   DefaultSortBy,
		SortDir:  DefaultSortDir,
		Debounce: DefaultDebounce,
		LogLevel: DefaultLogLevel,
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to the TOML settings file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// TokenPath returns the path to the stored session token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// Validate rejects settings the client cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url: %q", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base_url scheme: %s", u.Scheme)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("invalid page_size: %d", c.PageSize)
	}
	switch strings.ToUpper(c.SortDir) {
	case "ASC", "DESC":
	default:
		return fmt.Errorf("invalid sort_dir: %s", c.SortDir)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("invalid debounce: %s", c.Debounce)
	}
	return nil
}
