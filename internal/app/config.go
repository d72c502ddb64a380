package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/pipeprint/internal/blueprint"
	"github.com/specialistvlad/pipeprint/internal/policy"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPaths are files or directories holding the pipeline definition.
	ConfigPaths []string
	// Environment overrides the environment from the configuration files,
	// field by field, when set.
	Environment policy.Environment
	Format      blueprint.Format
	// OutPath is the file the blueprint is written to; empty means the
	// app's output writer.
	OutPath string

	// Addr is the listen address of the HTTP server.
	Addr string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Format == "" {
		cfg.Format = blueprint.FormatJSON
	}
	if _, err := blueprint.ParseFormat(string(cfg.Format)); err != nil {
		return nil, err
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.Addr == "" && len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one configuration path is required")
	}
	return &cfg, nil
}
