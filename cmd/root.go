// Package cmd wires the flowdeck CLI.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flowdeck/flowdeck/internal/config"
	"github.com/flowdeck/flowdeck/internal/infrastructure/sqlite"
	"github.com/flowdeck/flowdeck/internal/log"
	"github.com/flowdeck/flowdeck/internal/registry"
	"github.com/flowdeck/flowdeck/internal/tracing"
)

var (
	version = "dev"
	cfgFile string
	dbPath  string
	debug   bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "flowdeck",
	Short:   "Workflow definition registry",
	Long:    `flowdeck manages versioned workflow definitions: create, publish, template, and share them from a local registry.`,
	Version: version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/flowdeck/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "",
		"path to the registry store")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug logging")

	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("db_path", defaults.DBPath)
	viper.SetDefault("cache_ttl_seconds", defaults.CacheTTLSeconds)
	viper.SetDefault("watch_store", defaults.WatchStore)
	viper.SetDefault("debug", defaults.Debug)
	viper.SetDefault("log_file", defaults.LogFile)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .flowdeck/config.yaml (current directory)
		// 2. ~/.config/flowdeck/config.yaml (user config)
		if _, err := os.Stat(".flowdeck/config.yaml"); err == nil {
			viper.SetConfigFile(".flowdeck/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "flowdeck"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create a commented default
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			home, homeErr := os.UserHomeDir()
			if homeErr == nil {
				defaultPath := filepath.Join(home, ".config", "flowdeck", "config.yaml")
				if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
					viper.SetConfigFile(defaultPath)
					_ = viper.ReadInConfig()
				}
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)

	if debug || os.Getenv("FLOWDECK_DEBUG") != "" {
		cfg.Debug = true
	}
}

// withService opens the registry store, builds the service with the configured
// cache TTL and tracing, runs fn, and tears everything down afterwards.
func withService(fn func(ctx context.Context, svc *registry.Service) error) error {
	ctx := context.Background()

	if cfg.Debug {
		log.SetEnabled(true)
		if cleanup, err := log.Init(cfg.LogFile); err == nil {
			defer cleanup()
		}
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening registry store: %w", err)
	}
	defer func() { _ = db.Close() }()

	opts := []registry.Option{
		registry.WithCacheTTL(time.Duration(cfg.CacheTTLSeconds) * time.Second),
	}
	if provider.Enabled() {
		opts = append(opts, registry.WithTracer(provider.Tracer()))
	}
	svc := registry.NewService(db.DefinitionRepository(), opts...)

	if cfg.WatchStore {
		watcher, watchErr := registry.NewStoreWatcher(svc, db.Path())
		if watchErr != nil {
			log.ErrorErr(log.CatWatcher, "Store watcher unavailable", watchErr, "path", db.Path())
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	return fn(ctx, svc)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
