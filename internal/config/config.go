// Package config provides configuration types and defaults for flowdeck.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flowdeck/flowdeck/internal/log"
	"github.com/flowdeck/flowdeck/internal/tracing"
)

// Config holds all configuration options for flowdeck.
type Config struct {
	// DBPath is the location of the registry store.
	// Default: ~/.config/flowdeck/flowdeck.db
	DBPath string `mapstructure:"db_path"`

	// CacheTTLSeconds is the lifetime of registry cache entries.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds"`

	// WatchStore enables the cross-process cache invalidation watcher on
	// the store file. Off by default: a single registry instance is the
	// unit of consistency.
	WatchStore bool `mapstructure:"watch_store"`

	// Debug enables debug logging to LogFile.
	Debug bool `mapstructure:"debug"`

	// LogFile is the debug log destination.
	// Default: ~/.config/flowdeck/flowdeck.log
	LogFile string `mapstructure:"log_file"`

	// Tracing configures the OpenTelemetry provider.
	Tracing tracing.Config `mapstructure:"tracing"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		DBPath:          filepath.Join(configDir(), "flowdeck.db"),
		CacheTTLSeconds: 600,
		WatchStore:      false,
		Debug:           false,
		LogFile:         filepath.Join(configDir(), "flowdeck.log"),
		Tracing:         tracing.DefaultConfig(),
	}
}

// configDir returns the per-user configuration directory.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "flowdeck")
}

// DefaultConfigTemplate returns the commented default config file contents.
func DefaultConfigTemplate() string {
	return `# flowdeck configuration
#
# Location of the workflow registry store. Created on first use.
# db_path: ~/.config/flowdeck/flowdeck.db

# Lifetime of registry cache entries, in seconds.
cache_ttl_seconds: 600

# Watch the store file and flush the cache when another process writes it.
watch_store: false

# Debug logging.
debug: false
# log_file: ~/.config/flowdeck/flowdeck.log

# OpenTelemetry tracing for registry operations.
# tracing:
#   enabled: true
#   exporter: stdout
#
# Example: Send traces to a collector via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: localhost:4317
#   sample_rate: 0.1  # Sample 10% of traces
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
