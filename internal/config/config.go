// Package config loads runtime settings for the cvdata tools from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	log "github.com/sirupsen/logrus"
)

// Config holds the settings shared by the CLI, the MCP server and the review shell.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"CVDATA_LOG_LEVEL" envDefault:"info"`

	// CVATBaseURL overrides the review link base derived from an export's segment URLs.
	CVATBaseURL string `env:"CVDATA_CVAT_BASE_URL"`

	// Workers caps the worker pool used for batch jobs such as preview fetching.
	Workers int `env:"CVDATA_WORKERS" envDefault:"4"`

	// FetchTimeout bounds a single preview download.
	FetchTimeout time.Duration `env:"CVDATA_FETCH_TIMEOUT" envDefault:"15s"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &cfg, nil
}

// SetupLogging points logrus at stderr and applies the configured level.
// Stdout is reserved for command output and the MCP protocol.
func (c *Config) SetupLogging() error {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level, err := log.ParseLevel(strings.TrimSpace(c.LogLevel))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	log.SetLevel(level)
	return nil
}
