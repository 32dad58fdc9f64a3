package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, "analytics.json", cfg.AnalyticsFile)
	assert.False(t, cfg.Dashboard.Protected())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("does-not-exist.yml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "devserver.yml")
	yml := `
port: 9100
root_dir: ./site
dashboard:
  api_key: yaml-key
  token_ttl: 30m
sinks:
  sqlite:
    path: mirror.db
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("DEVSERVER_PORT", "9200")
	t.Setenv("DEVSERVER_SINKS__POSTGRES__DSN", "postgres://localhost/devserver")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Port, "env wins over yaml")
	assert.Equal(t, "./site", cfg.RootDir)
	assert.Equal(t, "yaml-key", cfg.Dashboard.APIKey)
	assert.Equal(t, 30*time.Minute, cfg.Dashboard.TokenTTL)
	assert.True(t, cfg.Dashboard.Protected())
	assert.True(t, cfg.Sinks.SQLite.Enabled())
	assert.True(t, cfg.Sinks.Postgres.Enabled())
	assert.False(t, cfg.Sinks.ClickHouse.Enabled())
	assert.Equal(t, "analytics.json", cfg.AnalyticsFile, "untouched keys keep defaults")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DEVSERVER_CORS_ORIGIN=http://localhost:3000\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("DEVSERVER_CORS_ORIGIN") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.CORSOrigin)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"port", func(c *Config) { c.Port = 0 }, "port"},
		{"root", func(c *Config) { c.RootDir = "" }, "root_dir"},
		{"timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"gin mode", func(c *Config) { c.GinMode = "loud" }, "gin_mode"},
		{"secret", func(c *Config) { c.Dashboard.PasswordHash = "$2a$10$x" }, "jwt_secret"},
		{"sink timeout", func(c *Config) { c.Sinks.Timeout = 0 }, "sinks.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

// chdir changes the working directory for the duration of the test, like
// testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
