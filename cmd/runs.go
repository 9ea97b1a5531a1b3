package cmd

import (
	"github.com/huangsam/revmetrics/internal/outwriter"
	"github.com/huangsam/revmetrics/internal/persist"
	"github.com/spf13/cobra"
)

// runsCmd lists recorded collection runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent collection runs",
	Long: `Show the run log kept next to the metrics table, newest first.
Runs without an end time were interrupted before they could be recorded.

Examples:
  revmetrics runs --limit 5`,
	PreRunE: tabularSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		runs, err := persist.Manager.Runs().ListRuns(rootCtx, cfg.Limit)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteRuns(runs, cfg)
	},
}
