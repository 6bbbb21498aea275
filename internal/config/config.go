// Package config loads service configuration.
//
// Sources are applied in order, each overriding the previous one:
// built-in defaults, an optional YAML file, then environment variables.
// Command-line flags are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/todos/internal/store"
)

// Defaults.
const (
	DefaultPort     = 3001
	DefaultDatabase = "./todos.db"
	DefaultDriver   = store.DriverMattn
)

// Config holds the service settings.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port int `yaml:"port" env:"PORT"`

	// Database is a SQLite file path, or ":memory:".
	Database string `yaml:"database" env:"TODOS_DB"`

	// Driver selects the SQLite driver: "sqlite3" or "sqlite".
	Driver string `yaml:"driver" env:"TODOS_DRIVER"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:     DefaultPort,
		Database: DefaultDatabase,
		Driver:   DefaultDriver,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile overlays the fields set in a YAML file.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.Port)
	}
	if c.Database == "" {
		return errors.New("database path must not be empty")
	}
	switch c.Driver {
	case store.DriverMattn, store.DriverModernc:
	default:
		return fmt.Errorf("invalid driver %q: must be one of %q, %q", c.Driver, store.DriverMattn, store.DriverModernc)
	}
	return nil
}

// StoreConfig returns the store settings.
func (c Config) StoreConfig() store.Config {
	return store.Config{Path: c.Database, Driver: c.Driver}
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
