// Package config handles feedadmin configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the root configuration structure for feedadmin.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// API settings for the feed service backend.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Demo settings for the embedded demo server.
	Demo DemoConfig `yaml:"demo" mapstructure:"demo"`

	// Profiles are named backend endpoints (prod, staging, demo).
	Profiles map[string]ProfileConfig `yaml:"profiles" mapstructure:"profiles"`

	// Profile selects the active entry in Profiles. Empty means the
	// top-level API settings are used directly.
	Profile string `yaml:"profile" mapstructure:"profile"`
}

// GlobalConfig contains global feedadmin settings.
type GlobalConfig struct {
	// DataDir is where feedadmin stores its data (default: ~/.local/share/feedadmin).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/feedadmin).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// BaseURL is the feed service endpoint.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Token is the bearer token for authenticated requests.
	Token string `yaml:"token" mapstructure:"token"`

	// Timeout bounds individual requests.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ProfileConfig is one named backend endpoint.
type ProfileConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Token   string `yaml:"token" mapstructure:"token"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// RefreshInterval is how often collection data is re-checked for
	// staleness.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// StaleAfter is how long a fetched collection is served without a
	// refetch.
	StaleAfter time.Duration `yaml:"stale_after" mapstructure:"stale_after"`

	// Theme is the color theme (dark, light, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// PageSize is the card-list page size.
	PageSize int `yaml:"page_size" mapstructure:"page_size"`

	// RunPollInterval is how often a triggered run's status is polled.
	RunPollInterval time.Duration `yaml:"run_poll_interval" mapstructure:"run_poll_interval"`

	// RunPollMaxWait caps how long a run is polled before the running
	// indicator is dropped.
	RunPollMaxWait time.Duration `yaml:"run_poll_max_wait" mapstructure:"run_poll_max_wait"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path. The TUI always logs to a file so
	// stdout stays clean; empty means DataDir/feedadmin.log.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// DemoConfig contains embedded demo server settings.
type DemoConfig struct {
	// Bind is the host:port the demo server listens on.
	Bind string `yaml:"bind" mapstructure:"bind"`

	// DatabasePath is the demo SQLite file. Empty means DataDir/demo.db.
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`

	// Seed loads example feeds/sources/tags on first start.
	Seed bool `yaml:"seed" mapstructure:"seed"`

	// RunDuration is how long a simulated feed run stays running.
	RunDuration time.Duration `yaml:"run_duration" mapstructure:"run_duration"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "feedadmin"),
			ConfigDir: filepath.Join(homeDir, ".config", "feedadmin"),
		},
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8642",
			Timeout: 10 * time.Second,
		},
		TUI: TUIConfig{
			RefreshInterval: time.Second,
			StaleAfter:      30 * time.Second,
			Theme:           "dark",
			PageSize:        12,
			RunPollInterval: 2 * time.Second,
			RunPollMaxWait:  5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Demo: DemoConfig{
			Bind:        "127.0.0.1:8642",
			Seed:        true,
			RunDuration: 3 * time.Second,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if !strings.Contains(c.API.BaseURL, "://") && !strings.Contains(c.API.BaseURL, ":") {
		return fmt.Errorf("api.base_url must be a URL or host:port")
	}
	if c.API.Timeout < time.Second {
		return fmt.Errorf("api.timeout must be at least 1s")
	}
	if c.TUI.RefreshInterval < 100*time.Millisecond {
		return fmt.Errorf("tui.refresh_interval must be at least 100ms")
	}
	if c.TUI.StaleAfter < c.TUI.RefreshInterval {
		return fmt.Errorf("tui.stale_after must not be shorter than tui.refresh_interval")
	}
	if c.TUI.PageSize < 1 {
		return fmt.Errorf("tui.page_size must be at least 1")
	}
	if c.TUI.RunPollInterval < 100*time.Millisecond {
		return fmt.Errorf("tui.run_poll_interval must be at least 100ms")
	}
	switch c.TUI.Theme {
	case "dark", "light", "high-contrast":
	default:
		return fmt.Errorf("tui.theme must be one of dark, light, high-contrast")
	}
	if c.Profile != "" {
		if _, ok := c.Profiles[c.Profile]; !ok {
			return fmt.Errorf("profile %q is not defined in profiles", c.Profile)
		}
	}
	for name, profile := range c.Profiles {
		if profile.BaseURL == "" {
			return fmt.Errorf("profiles.%s.base_url is required", name)
		}
	}
	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Global.DataDir, c.Global.ConfigDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ActiveAPI resolves the effective backend settings, honoring the selected
// profile.
func (c *Config) ActiveAPI() APIConfig {
	api := c.API
	if c.Profile != "" {
		if profile, ok := c.Profiles[c.Profile]; ok {
			api.BaseURL = profile.BaseURL
			if profile.Token != "" {
				api.Token = profile.Token
			}
		}
	}
	return api
}

// LogFilePath returns the effective log file path.
func (c *Config) LogFilePath() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(c.Global.DataDir, "feedadmin.log")
}

// DemoDatabasePath returns the effective demo database path.
func (c *Config) DemoDatabasePath() string {
	if c.Demo.DatabasePath != "" {
		return c.Demo.DatabasePath
	}
	return filepath.Join(c.Global.DataDir, "demo.db")
}

// StatePath returns where persisted TUI state lives.
func (c *Config) StatePath() string {
	return filepath.Join(c.Global.DataDir, "tui-state.json")
}
