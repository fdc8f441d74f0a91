// Package config loads the application configuration from an optional
// YAML file, filling in the compiled defaults for anything left unset.
// Command-line flags override file values; the cmd layer applies that
// precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultQuery selects the confirmation emails of the class the tool was
// written for. Override it via config file or the --query flag.
const DefaultQuery = `subject:"Registration Confirmation: Beginners (White/Orng/Yellow)"`

// Config is the top-level application configuration.
type Config struct {
	// Query is the Gmail search query selecting confirmation emails.
	Query string `yaml:"query"`

	// MaxMessages bounds the number of messages processed per run.
	MaxMessages int64 `yaml:"max_messages"`

	// Calendar is the target calendar ID, usually "primary".
	Calendar string `yaml:"calendar"`

	// Timezone is the IANA zone the subject-line times belong to.
	Timezone string `yaml:"timezone"`

	// Attendees are invited to every created event.
	Attendees []string `yaml:"attendees"`
}

// Default returns the compiled default configuration, mirroring the
// flag defaults.
func Default() *Config {
	return &Config{
		Query:       DefaultQuery,
		MaxMessages: 6,
		Calendar:    "primary",
		Timezone:    "America/Chicago",
	}
}

// Path returns the config file location. The REGCAL_CONFIG environment
// variable overrides the default in the user config directory.
func Path() string {
	if p := os.Getenv("REGCAL_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("REGCAL_CONFIG_DIR")
	if dir == "" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dir = filepath.Join(xdg, "regcal")
		} else if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config", "regcal")
		}
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file at Path. A missing file is not an error;
// the defaults are returned unchanged.
func Load() (*Config, error) {
	return loadFile(Path())
}

func loadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize fills in missing/zero values so a partially-filled config
// still behaves correctly.
func (c *Config) normalize() {
	d := Default()
	if c.Query == "" {
		c.Query = d.Query
	}
	if c.MaxMessages == 0 {
		c.MaxMessages = d.MaxMessages
	}
	if c.Calendar == "" {
		c.Calendar = d.Calendar
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
}
