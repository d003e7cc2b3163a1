package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-veylop/accidents-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/accidents-dashboard-tui/internal/export"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/services"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the report for one state",
	Long: `Load the input files and print the rankings, temporal views, correlation
matrix and data-quality tallies for one state (or ALL) as text or JSON.

Exits with an error when the state has no accidents.`,
	Example: `  acd report --state SP
  acd report --state ALL --format json --top 20 --granularity week`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		state, _ := cmd.Flags().GetString("state")
		formatFlag, _ := cmd.Flags().GetString("format")
		granularityFlag, _ := cmd.Flags().GetString("granularity")

		format, err := export.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		if granularityFlag == "" {
			granularityFlag = cfg.Granularity
		}
		granularity, ok := models.ParseGranularity(granularityFlag)
		if !ok {
			return fmt.Errorf("unknown granularity %q (want month or week)", granularityFlag)
		}

		if cmd.Flags().Changed("top") {
			top, _ := cmd.Flags().GetInt("top")
			if top <= 0 {
				return fmt.Errorf("--top must be positive, got %d", top)
			}
			cfg.TopN = top
		}
		cfg.WatchData = false
		cfg.NotifyOnReload = false

		mgr, err := services.NewManager(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer mgr.Close()

		filter := models.NewStateFilter(state)
		if state == "" {
			_, filter = mgr.InitialState()
		}

		rep, err := mgr.BuildReport(filter, granularity)
		if err != nil {
			if loadErr := mgr.Dataset().LastError(); loadErr != nil {
				return fmt.Errorf("failed to load dataset: %w", loadErr)
			}
			return err
		}

		if err := export.Write(cmd.OutOrStdout(), rep, format); err != nil {
			return err
		}
		if rep.NoData {
			return fmt.Errorf("%w: %s", aggregator.ErrNoData, filter)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().String("state", "", "UF code or ALL (default DEFAULT_STATE, then the first state)")
	reportCmd.Flags().String("format", "text", "output format: text or json")
	reportCmd.Flags().Int("top", 10, "number of municipalities per ranking (default TOP_N)")
	reportCmd.Flags().String("granularity", "", "period size: month or week (default GRANULARITY)")
	rootCmd.AddCommand(reportCmd)
}
