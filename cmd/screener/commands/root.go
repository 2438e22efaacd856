package commands

import (
	"github.com/spf13/cobra"

	"github.com/tradebyz/screener/pkg/config"
	"github.com/tradebyz/screener/pkg/logger"
)

var (
	// Global flags
	dataDir      string
	selectorFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Technical pattern screener for daily equity bars",
	Long: `screener - equity technical pattern screener

Fetches daily bar history, keeps a local store in sync, and runs the
configured selector strategies (KDJ pullback, golden cross, breakout,
gap reversal) against it.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener fetch
  go run ./cmd/screener select --date 2024-06-03
  go run ./cmd/screener serve
  go run ./cmd/screener schedule`,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "bar data directory (default from DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&selectorFile, "config", "", "selector config file (default from SELECTOR_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the environment config and applies global flag
// overrides.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if selectorFile != "" {
		cfg.SelectorFile = selectorFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}
