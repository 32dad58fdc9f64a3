package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nested keys: DEVSERVER_SINKS__POSTGRES__DSN -> sinks.postgres.dsn.
const EnvPrefix = "DEVSERVER_"

type Config struct {
	Port          int    `koanf:"port"`
	RootDir       string `koanf:"root_dir"`
	AnalyticsFile string `koanf:"analytics_file"`
	TracksFile    string `koanf:"tracks_file"`
	Timezone      string `koanf:"timezone"`
	CORSOrigin    string `koanf:"cors_origin"`
	GinMode       string `koanf:"gin_mode"`

	Dashboard DashboardConfig `koanf:"dashboard"`
	Sinks     SinksConfig     `koanf:"sinks"`
}

// DashboardConfig guards GET ?range=... when a password hash or API key is set.
type DashboardConfig struct {
	PasswordHash string        `koanf:"password_hash"`
	JWTSecret    string        `koanf:"jwt_secret"`
	APIKey       string        `koanf:"api_key"`
	TokenTTL     time.Duration `koanf:"token_ttl"`
}

// Protected reports whether dashboard reads need credentials.
func (d DashboardConfig) Protected() bool {
	return d.PasswordHash != "" || d.APIKey != ""
}

type SinksConfig struct {
	Timeout    time.Duration    `koanf:"timeout"`
	ClickHouse ClickHouseConfig `koanf:"clickhouse"`
	Postgres   PostgresConfig   `koanf:"postgres"`
	SQLite     SQLiteConfig     `koanf:"sqlite"`
}

type ClickHouseConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

func (c ClickHouseConfig) Enabled() bool { return c.Host != "" }

type PostgresConfig struct {
	DSN string `koanf:"dsn"`
}

func (c PostgresConfig) Enabled() bool { return c.DSN != "" }

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

func (c SQLiteConfig) Enabled() bool { return c.Path != "" }

// Default returns the settings the dev server runs with out of the box.
func Default() *Config {
	return &Config{
		Port:          8000,
		RootDir:       ".",
		AnalyticsFile: "analytics.json",
		TracksFile:    "assets/js/tracks.json",
		Timezone:      "Local",
		CORSOrigin:    "*",
		GinMode:       "debug",
		Dashboard: DashboardConfig{
			TokenTTL: time.Hour,
		},
		Sinks: SinksConfig{
			Timeout: 15 * time.Second,
			ClickHouse: ClickHouseConfig{
				Port:     9000,
				Database: "default",
			},
		},
	}
}

// Load reads .env (if present), then the YAML file at path (if present), then
// DEVSERVER_* environment overrides, on top of Default.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.RootDir == "" {
		return fmt.Errorf("root_dir is required")
	}
	if c.AnalyticsFile == "" {
		return fmt.Errorf("analytics_file is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid gin_mode %q: must be one of debug, release, test", c.GinMode)
	}
	if c.Dashboard.PasswordHash != "" && c.Dashboard.JWTSecret == "" {
		return fmt.Errorf("dashboard.jwt_secret is required when dashboard.password_hash is set")
	}
	if c.Dashboard.TokenTTL <= 0 {
		return fmt.Errorf("dashboard.token_ttl must be positive")
	}
	if c.Sinks.Timeout <= 0 {
		return fmt.Errorf("sinks.timeout must be positive")
	}
	return nil
}

// Location resolves the time zone used for the daily hash rotation.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
