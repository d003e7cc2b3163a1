// Package main is the entry point for the accidents dashboard. Without a
// subcommand it runs the TUI; report and import work from the shell.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/j-veylop/accidents-dashboard-tui/internal/config"
	"github.com/j-veylop/accidents-dashboard-tui/internal/logger"
)

var (
	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "acd",
	Short: "Brazilian traffic accident dashboard",
	Long: `Explore traffic accidents per state and municipality: rankings by volume and
per capita, monthly and weekly trends, weekday/hour patterns, correlations and
a density map.

Input files and options are read from .env files and environment variables
(ACCIDENTS_PATH, MUNICIPALITIES_PATH, BOUNDARIES_PATH, CSV_DELIMITER,
CSV_ENCODING, CACHE_PATH, TOP_N, DEFAULT_STATE, GRANULARITY, WATCH_DATA,
NOTIFY_ON_RELOAD, LOG_PATH, LOG_LEVEL).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = c

		// The TUI owns the terminal, so logs always go to a file.
		closer, err := logger.Init(cfg.LogPath, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return runTUI(cfg)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
