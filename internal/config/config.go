// Package config loads the tool's configuration: built-in defaults,
// overridden by an optional YAML file, then DRILLBOOK_* environment
// variables, then command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "DRILLBOOK_"

// Config holds the settings the CLI reads at startup. The core engine
// and store never read configuration themselves; limits are passed in
// explicitly by the caller.
type Config struct {
	Database           string `koanf:"database"`
	QuestionsDuePerDay int    `koanf:"questions_due_per_day"`
	DatetimeFormat     string `koanf:"datetime_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Database:           filepath.Join(home, ".drillbook.db"),
		QuestionsDuePerDay: 10,
		DatetimeFormat:     "2006-01-02",
	}
}

// DefaultPath returns the default config file location, ~/.drillbook.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".drillbook.yaml")
}

// Load builds the effective configuration. A missing config file is not
// an error; a malformed one is. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.QuestionsDuePerDay <= 0 {
		return Config{}, fmt.Errorf("questions_due_per_day must be positive, got %d", cfg.QuestionsDuePerDay)
	}
	return cfg, nil
}
