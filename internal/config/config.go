// Package config handles loading and parsing application configuration.
// Values come from (in priority order):
//  1. Environment variables, e.g. STORAGE_PATH=/var/lib/records.db
//  2. A YAML file, when a path is given (--config flag or CONFIG_PATH)
//  3. The env-default:"..." tags below
//
// The parsed values are returned as a *Config pointer so the struct is
// shared by reference rather than copied everywhere.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev" validate:"oneof=dev staging prod"`

	// StoragePath is the filesystem path to the SQLite .db file.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"college_sms.db" validate:"required"`

	// BusyTimeout is how long SQLite waits on a locked database file
	// before giving up.
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"BUSY_TIMEOUT" env-default:"5s"`
}

// Load reads and validates the configuration.
//
// An empty path means "environment only": every field falls back to its
// env-default. A non-empty path must point at an existing YAML file.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read config from environment: %w", err)
		}
	} else {
		// Give a clear message rather than a cryptic "open: no such file".
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
