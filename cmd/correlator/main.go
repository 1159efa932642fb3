package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soltixdb/correlator/internal/config"
	"github.com/soltixdb/correlator/internal/logging"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

var configPath string

// rootCmd is the base command for the correlator CLI
var rootCmd = &cobra.Command{
	Use:   "correlator",
	Short: "Pairwise rolling correlation of daily price series",
	Long: `correlator builds rolling-window statistics for a universe of daily
series and computes, for every day, the short and long window Pearson
correlation of every pair of series.

Typical pipeline:
  correlator preprocess                      # signals -> daily statistics
  correlator correlate --first 2011-06-01    # statistics -> daily matrices
  correlator serve                           # query API over the catalog`,
	SilenceUsage: true,
	Version:      Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.SetVersionTemplate(fmt.Sprintf("correlator %s (commit %s, built %s)\n", Version, GitCommit, BuildTime))
}

// setup loads the configuration and installs the global logger
func setup(command string) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetGlobal(logger)

	logger = logger.With("command", command)
	logger.Info("Correlator starting",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
