// Package config loads the control-surface configuration: where to listen,
// which address prefixes the handlers answer to, and how long a section move
// waits by default.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Listen   string         `yaml:"listen"`
	Sections SectionsConfig `yaml:"sections"`
	Toggle   ToggleConfig   `yaml:"toggle"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SectionsConfig configures the section-move handler.
type SectionsConfig struct {
	// Prefix is prepended to every section name to form its address.
	Prefix string `yaml:"prefix"`
	// Wait is the base delay in seconds before a move fires.
	Wait float64 `yaml:"wait"`
	// Names lists the sections in clip order. Hosts with a live timeline
	// ignore this and report their own list.
	Names []string `yaml:"names"`
}

// ToggleConfig configures the enable/disable handler.
type ToggleConfig struct {
	Prefix string `yaml:"prefix"`
	// ArgumentStart is the index of the first message argument passed to the
	// target.
	ArgumentStart int `yaml:"argument_start"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Listen: "127.0.0.1:8765",
		Sections: SectionsConfig{
			Prefix: "/timeline",
			Wait:   0,
		},
		Toggle: ToggleConfig{
			Prefix:        "/toggle",
			ArgumentStart: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from path on top of the defaults. An empty
// path returns the validated defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the handlers would reject.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}

	if err := validPrefix(c.Sections.Prefix); err != nil {
		return fmt.Errorf("sections.prefix: %w", err)
	}
	if err := validPrefix(c.Toggle.Prefix); err != nil {
		return fmt.Errorf("toggle.prefix: %w", err)
	}

	if c.Sections.Wait < 0 {
		return fmt.Errorf("sections.wait must not be negative, got %v", c.Sections.Wait)
	}
	if c.Toggle.ArgumentStart < 0 {
		return fmt.Errorf("toggle.argument_start must not be negative, got %d", c.Toggle.ArgumentStart)
	}

	return nil
}

// validPrefix rejects prefixes the registry could never register: empty,
// not rooted, trailing slash, or containing OSC pattern characters.
func validPrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("prefix is required")
	}
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("prefix must start with '/', got %q", prefix)
	}
	if strings.HasSuffix(prefix, "/") {
		return fmt.Errorf("prefix must not end with '/', got %q", prefix)
	}
	if strings.ContainsAny(prefix, "*?,[]{}# ") {
		return fmt.Errorf("prefix must not contain any characters in \"*?,[]{}# \", got %q", prefix)
	}
	return nil
}
