package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/j-veylop/accidents-dashboard-tui/internal/services"
	"github.com/j-veylop/accidents-dashboard-tui/internal/services/dataset"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Parse the input files and rebuild the dataset cache",
	Long: `Re-read ACCIDENTS_PATH and MUNICIPALITIES_PATH even when they are unchanged
and store the rows in the sqlite cache at CACHE_PATH.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !cfg.CacheEnabled() {
			return errors.New("the dataset cache is disabled (CACHE_PATH=off)")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg.WatchData = false
		cfg.NotifyOnReload = false

		mgr, err := services.NewManager(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer mgr.Close()

		ds, err := mgr.Dataset().Load(ctx, dataset.TriggerImport, true)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		r := ds.Report
		fmt.Fprintf(cmd.OutOrStdout(),
			"Imported %s accidents and %s municipalities in %s into %s\n",
			humanize.Comma(int64(r.AccidentRows)),
			humanize.Comma(int64(r.MunicipalityRows)),
			r.Duration.Round(time.Millisecond),
			cfg.CachePath)
		if r.NullCoordinates > 0 || r.MissingMunicipalityCode > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s rows without coordinates, %s without a municipality code\n",
				humanize.Comma(int64(r.NullCoordinates)),
				humanize.Comma(int64(r.MissingMunicipalityCode)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
