// Package config loads the timekeeper startup configuration.
//
// The configuration file is located by, in order:
//   - the --config flag passed to the command
//   - the TIMEKEEPER_CONFIG environment variable
//   - ~/.config/timekeeper/config.yaml
//
// A missing file is not an error: the defaults are used as-is. Values set
// in the file replace the defaults field by field.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no --config flag is given.
const EnvVar = "TIMEKEEPER_CONFIG"

// Config is the startup configuration.
type Config struct {
	// DataFile is the time log opened at startup. Empty means start with an
	// unsaved document, or the last saved file recorded in the settings store.
	DataFile string `yaml:"data_file"`

	// SettingsDB is the sqlite database holding settings, recent files and the journal.
	// Default: ~/.config/timekeeper/timekeeper.db
	SettingsDB string `yaml:"settings_db"`

	// LogFile receives log records. Empty logs to stderr.
	LogFile string `yaml:"log_file"`

	// LogLevel is one of debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// PollInterval is how often the ledger is advanced.
	// Default: 1s
	PollInterval string `yaml:"poll_interval"`

	// AutosaveInterval is how often the document is saved when autosave is on.
	// Default: 5m
	AutosaveInterval string `yaml:"autosave_interval"`
}

// Dir returns ~/.config/timekeeper.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "timekeeper"), nil
}

// DefaultPath returns the config file used when neither the flag nor the
// environment variable names one.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the default configuration.
func Default() *Config {
	dir, _ := Dir()
	return &Config{
		SettingsDB:       filepath.Join(dir, "timekeeper.db"),
		LogLevel:         "info",
		PollInterval:     "1s",
		AutosaveInterval: "5m",
	}
}

// Resolve picks the config path: the flag value when set, then TIMEKEEPER_CONFIG,
// then DefaultPath.
func Resolve(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if env := os.Getenv(EnvVar); env != "" {
		return env, nil
	}
	return DefaultPath()
}

// Load reads the configuration at path on top of the defaults. A missing
// file yields the defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) expandPaths() {
	c.DataFile = expandPath(c.DataFile)
	c.SettingsDB = expandPath(c.SettingsDB)
	c.LogFile = expandPath(c.LogFile)
}

// expandPath expands a leading ~/ and ${VAR} references.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return os.ExpandEnv(p)
}

// Poll returns the parsed poll interval.
func (c *Config) Poll() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// Autosave returns the parsed autosave interval.
func (c *Config) Autosave() time.Duration {
	d, _ := time.ParseDuration(c.AutosaveInterval)
	return d
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log_level: %q", c.LogLevel))
	}

	if c.SettingsDB == "" {
		errs = append(errs, errors.New("settings_db is required"))
	}

	for _, iv := range []struct{ name, value string }{
		{"poll_interval", c.PollInterval},
		{"autosave_interval", c.AutosaveInterval},
	} {
		d, err := time.ParseDuration(iv.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", iv.name, err))
			continue
		}
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", iv.name, iv.value))
		}
	}

	return errors.Join(errs...)
}
