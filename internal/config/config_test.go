package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "listen: 127.0.0.1:4000\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:4000", cfg.Listen)
	assert.Equal(t, StoreTypeSQLite, cfg.Store.Type)
	assert.Equal(t, "./data/bixblion.db", cfg.Store.Path)
	assert.Equal(t, time.Minute, cfg.Appearance.CheckInterval)
	assert.Equal(t, 20, cfg.Appearance.NightStartHour)
	assert.Equal(t, 7, cfg.Appearance.NightEndHour)
	assert.Equal(t, "light", cfg.Appearance.DefaultTheme)
	assert.True(t, cfg.Seed.Enabled)
	assert.Equal(t, "u-local-1", cfg.Seed.ID)
	assert.Equal(t, "demo@bixblion.app", cfg.Seed.Email)
	assert.NotNil(t, cfg.Gravatar)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
store:
  type: " Memory "
appearance:
  check_interval: 30s
  night_start_hour: 21
  night_end_hour: 6
  default_theme: " Sepia "
seed:
  email: "  Demo@Example.COM "
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StoreTypeMemory, cfg.Store.Type)
	assert.Equal(t, 30*time.Second, cfg.Appearance.CheckInterval)
	assert.Equal(t, 21, cfg.Appearance.NightStartHour)
	assert.Equal(t, 6, cfg.Appearance.NightEndHour)
	assert.Equal(t, "sepia", cfg.Appearance.DefaultTheme)
	assert.Equal(t, "demo@example.com", cfg.Seed.Email)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "store:\n  type: memory\n")
	t.Setenv("BIXBLION_LISTEN", "0.0.0.0:9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.Listen)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "default config",
			mutate: func(_ *Config) {},
		},
		{
			name:    "nil store",
			mutate:  func(c *Config) { c.Store = nil },
			wantErr: true,
		},
		{
			name:    "unknown store type",
			mutate:  func(c *Config) { c.Store.Type = "etcd" },
			wantErr: true,
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Store.Type = StoreTypeSQLite
				c.Store.Path = ""
			},
			wantErr: true,
		},
		{
			name: "redis without url",
			mutate: func(c *Config) {
				c.Store.Type = StoreTypeRedis
			},
			wantErr: true,
		},
		{
			name:    "zero check interval",
			mutate:  func(c *Config) { c.Appearance.CheckInterval = 0 },
			wantErr: true,
		},
		{
			name:    "hour out of range",
			mutate:  func(c *Config) { c.Appearance.NightStartHour = 24 },
			wantErr: true,
		},
		{
			name: "empty night window",
			mutate: func(c *Config) {
				c.Appearance.NightStartHour = 7
				c.Appearance.NightEndHour = 7
			},
			wantErr: true,
		},
		{
			name:    "seed without secret",
			mutate:  func(c *Config) { c.Seed.Secret = "" },
			wantErr: true,
		},
		{
			name: "disabled seed without secret",
			mutate: func(c *Config) {
				c.Seed.Enabled = false
				c.Seed.Secret = ""
			},
		},
		{
			name:   "nil gravatar is defaulted",
			mutate: func(c *Config) { c.Gravatar = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := validateConfig(c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, c.Gravatar)
		})
	}
}
