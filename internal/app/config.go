package app

import (
	"fmt"
	"os"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigDir is the directory holding the root experiment document
	// and its config-group subdirectories.
	ConfigDir string
	// Name is the root document name without extension. Empty selects
	// the default root document.
	Name string

	// LogFormat and LogLevel, when set, override the composed
	// logging section.
	LogFormat string
	LogLevel  string

	// Overrides are raw command-line override tokens, applied in
	// order during composition.
	Overrides []string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigDir == "" {
		return nil, fmt.Errorf("ConfigDir is a required configuration field and cannot be empty")
	}
	info, err := os.Stat(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("config directory %q is not accessible: %w", cfg.ConfigDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config path %q is not a directory", cfg.ConfigDir)
	}

	return &cfg, nil
}
