// Package config loads settings for the tagwire binaries.
//
// Configuration comes from a single YAML file named by the --config flag or,
// when the flag is empty, the TAGWIRE_CONFIG environment variable. Without
// either the defaults apply. Unknown keys are rejected.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/anirudhraja/tagwire/wire"
)

// EnvVar names the environment variable consulted when no path is given.
const EnvVar = "TAGWIRE_CONFIG"

// Config is the configuration of the tagwire binaries.
type Config struct {
	// Decode configures the wire decoder.
	Decode DecodeConfig `yaml:"decode"`

	// Log configures the stderr logger.
	Log LogConfig `yaml:"log"`
}

// DecodeConfig mirrors wire.UnmarshalOptions.
type DecodeConfig struct {
	// PreserveUnknown keeps fields missing from the descriptor so they are
	// re-emitted on encode.
	PreserveUnknown bool `yaml:"preserve_unknown"`

	// ValidateUTF8 rejects string fields holding invalid UTF-8.
	ValidateUTF8 bool `yaml:"validate_utf8"`

	// RecursionLimit bounds message nesting.
	// Default: 10000
	RecursionLimit int `yaml:"recursion_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Decode: DecodeConfig{
			RecursionLimit: wire.DefaultRecursionLimit,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load resolves the config file from path or TAGWIRE_CONFIG and loads it.
// With neither set it returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path on top of the
// defaults.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Decode.RecursionLimit < 0 {
		errs = append(errs, fmt.Errorf("decode.recursion_limit must not be negative, got %d", c.Decode.RecursionLimit))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// UnmarshalOptions returns the decoder options described by c.
func (c *Config) UnmarshalOptions() wire.UnmarshalOptions {
	return wire.UnmarshalOptions{
		PreserveUnknown: c.Decode.PreserveUnknown,
		ValidateUTF8:    c.Decode.ValidateUTF8,
		RecursionLimit:  c.Decode.RecursionLimit,
	}
}

// SlogLevel returns the configured log level, or info when it does not
// parse.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
