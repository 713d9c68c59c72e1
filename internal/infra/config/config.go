// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Admin    AdminConfig    `yaml:"admin"`
	Playback PlaybackConfig `yaml:"playback"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" env:"BEATBOX_ADDR" default:":8080"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// AdminConfig represents admin-related configuration.
type AdminConfig struct {
	Token string `yaml:"token" env:"ADMIN_TOKEN" validate:"required"`
}

// PlaybackConfig represents playback configuration.
type PlaybackConfig struct {
	PreviewLimitSec       int            `yaml:"preview_limit_sec" default:"90" validate:"gte=1,lte=3600"`
	Output                string         `yaml:"output" env:"BEATBOX_OUTPUT" default:"clock" validate:"oneof=clock speaker"`
	Settings              map[string]any `yaml:"settings"`
	NotificationTimeoutMs int            `yaml:"notification_timeout_ms" default:"500" validate:"gte=10,lte=10000"`
}

// CatalogConfig represents catalog configuration.
type CatalogConfig struct {
	File        string                  `yaml:"file" env:"BEATBOX_CATALOG"`
	ScanDir     string                  `yaml:"scan_dir"`
	ScanWorkers int                     `yaml:"scan_workers" default:"4" validate:"gte=1,lte=64"`
	PageSize    int                     `yaml:"page_size" default:"12" validate:"gte=1,lte=1000"`
	MaxPageSize int                     `yaml:"max_page_size" default:"100" validate:"gte=1,lte=1000"`
	Filters     map[string]FilterConfig `yaml:"filters"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses configuration from YAML data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to read environment")
	}

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Catalog.File == "" && c.Catalog.ScanDir == "" {
		return errors.New("catalog.file or catalog.scan_dir must be set")
	}
	if c.Catalog.PageSize > c.Catalog.MaxPageSize {
		return errors.Newf("catalog.page_size (%d) must not exceed catalog.max_page_size (%d)",
			c.Catalog.PageSize, c.Catalog.MaxPageSize)
	}
	return nil
}

// PreviewLimit returns the preview window as a duration.
func (c *Config) PreviewLimit() time.Duration {
	return time.Duration(c.Playback.PreviewLimitSec) * time.Second
}

// NotificationTimeout returns the per-subscriber send timeout.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Playback.NotificationTimeoutMs) * time.Millisecond
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Catalog.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// FilterSettings returns the settings of every configured filter by name.
func (c *Config) FilterSettings() map[string]map[string]any {
	out := make(map[string]map[string]any, len(c.Catalog.Filters))
	for name, f := range c.Catalog.Filters {
		out[name] = f.Settings
	}
	return out
}
