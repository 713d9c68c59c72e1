package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Admin:  AdminConfig{Token: "test-admin-token"},
		Playback: PlaybackConfig{
			PreviewLimitSec:       90,
			Output:                "clock",
			NotificationTimeoutMs: 500,
		},
		Catalog: CatalogConfig{
			File:        "config/catalog.yaml",
			PageSize:    12,
			MaxPageSize: 100,
			ScanWorkers: 4,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing admin token",
			mutate:  func(c *Config) { c.Admin.Token = "" },
			wantErr: true,
			errMsg:  "Token",
		},
		{
			name:    "preview limit too small",
			mutate:  func(c *Config) { c.Playback.PreviewLimitSec = 0 },
			wantErr: true,
			errMsg:  "PreviewLimitSec",
		},
		{
			name:    "unknown output",
			mutate:  func(c *Config) { c.Playback.Output = "alsa" },
			wantErr: true,
			errMsg:  "Output",
		},
		{
			name: "no catalog source",
			mutate: func(c *Config) {
				c.Catalog.File = ""
				c.Catalog.ScanDir = ""
			},
			wantErr: true,
			errMsg:  "catalog.file",
		},
		{
			name: "scan dir only",
			mutate: func(c *Config) {
				c.Catalog.File = ""
				c.Catalog.ScanDir = "beats"
			},
			wantErr: false,
		},
		{
			name:    "page size above max",
			mutate:  func(c *Config) { c.Catalog.PageSize = 200 },
			wantErr: true,
			errMsg:  "page_size",
		},
		{
			name:    "no scan workers",
			mutate:  func(c *Config) { c.Catalog.ScanWorkers = 0 },
			wantErr: true,
			errMsg:  "ScanWorkers",
		},
		{
			name:    "too many scan workers",
			mutate:  func(c *Config) { c.Catalog.ScanWorkers = 65 },
			wantErr: true,
			errMsg:  "ScanWorkers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err, "expected validation to fail")
				assert.Contains(t, err.Error(), tt.errMsg,
					"error message should mention the problematic field")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`
admin:
  token: secret
catalog:
  file: catalog.yaml
`))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 90, cfg.Playback.PreviewLimitSec)
	assert.Equal(t, 90*time.Second, cfg.PreviewLimit())
	assert.Equal(t, "clock", cfg.Playback.Output)
	assert.Equal(t, 500*time.Millisecond, cfg.NotificationTimeout())
	assert.Equal(t, 12, cfg.Catalog.PageSize)
	assert.Equal(t, 100, cfg.Catalog.MaxPageSize)
	assert.Equal(t, 4, cfg.Catalog.ScanWorkers)
}

func TestParse_Filters(t *testing.T) {
	cfg, err := Parse([]byte(`
admin:
  token: secret
catalog:
  file: catalog.yaml
  filters:
    bpm_range_filter:
      settings:
        min_bpm: 60
        max_bpm: 200
    recent_filter:
      enabled: true
      settings:
        max_age_days: 14
`))
	require.NoError(t, err)

	assert.True(t, cfg.IsFilterEnabled("recent_filter"))
	assert.False(t, cfg.IsFilterEnabled("bpm_range_filter"))
	assert.False(t, cfg.IsFilterEnabled("unknown_filter"))

	settings := cfg.FilterSettings()
	assert.Equal(t, 60, settings["bpm_range_filter"]["min_bpm"])
	assert.Equal(t, 14, settings["recent_filter"]["max_age_days"])
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "from-env")
	t.Setenv("BEATBOX_ADDR", ":9999")
	t.Setenv("BEATBOX_OUTPUT", "speaker")

	cfg, err := Parse([]byte(`
server:
  addr: ":8080"
admin:
  token: from-file
catalog:
  file: catalog.yaml
`))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Admin.Token)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "speaker", cfg.Playback.Output)
}

func TestParse_Invalid(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")

	_, err := Parse([]byte("admin: [unclosed"))
	assert.Error(t, err)

	_, err = Parse([]byte(`
catalog:
  file: catalog.yaml
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Token")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
admin:
  token: secret
playback:
  preview_limit_sec: 30
catalog:
  scan_dir: beats
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.PreviewLimit())
	assert.Equal(t, "beats", cfg.Catalog.ScanDir)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
