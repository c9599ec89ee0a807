// Package config loads the entityform CLI configuration from a YAML file, an
// optional .env file and ENTITYFORM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no explicit config file is given. A missing file
// at this path is not an error.
const DefaultPath = "entityform.yaml"

// Store backends.
const (
	BackendHTTP   = "http"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the complete CLI configuration.
type Config struct {
	API      APIConfig   `yaml:"api"`
	Store    StoreConfig `yaml:"store"`
	Schema   string      `yaml:"schema"`
	Log      LogConfig   `yaml:"log"`
	Timezone string      `yaml:"timezone"`
	LangKey  string      `yaml:"lang_key"`
	Output   string      `yaml:"output"`
}

// APIConfig addresses the remote REST backend.
type APIConfig struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	DSN     string `yaml:"dsn"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:     "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Backend: BackendHTTP,
			DSN:     "entityform.db",
		},
		Schema:   "schemas",
		Log:      LogConfig{Level: "info"},
		Timezone: "Local",
		LangKey:  "en",
		Output:   "json",
	}
}

// Load reads path over the defaults, then the .env file, then the
// environment. An empty path reads DefaultPath when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields with the ENTITYFORM_* variables that are set.
func (c *Config) ApplyEnv() error {
	c.API.URL = getEnv("ENTITYFORM_API_URL", c.API.URL)
	c.API.Token = getEnv("ENTITYFORM_API_TOKEN", c.API.Token)
	c.Schema = getEnv("ENTITYFORM_SCHEMA", c.Schema)
	c.Log.Level = getEnv("ENTITYFORM_LOG_LEVEL", c.Log.Level)
	c.Store.Backend = getEnv("ENTITYFORM_STORE", c.Store.Backend)
	c.Store.DSN = getEnv("ENTITYFORM_DSN", c.Store.DSN)
	c.Timezone = getEnv("ENTITYFORM_TIMEZONE", c.Timezone)
	c.LangKey = getEnv("ENTITYFORM_LANG_KEY", c.LangKey)
	if raw, ok := os.LookupEnv("ENTITYFORM_API_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("config: ENTITYFORM_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = timeout
	}
	return nil
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendHTTP:
		if strings.TrimSpace(c.API.URL) == "" {
			return errors.New("config: api.url is required for the http store")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return errors.New("config: store.dsn is required for the sqlite store")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.API.Timeout < 0 {
		return errors.New("config: api.timeout must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
