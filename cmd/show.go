package cmd

import (
	"github.com/huangsam/revmetrics/internal/outwriter"
	"github.com/huangsam/revmetrics/internal/persist"
	"github.com/spf13/cobra"
)

// showCmd lists stored measurements.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "List stored measurements, optionally for one file",
	Long: `Print rows of the metrics table ordered by id. Unset measurements
(missing tools or unsupported languages) are shown as empty cells.

Examples:
  # First 25 rows
  revmetrics show

  # Every revision of one file as CSV
  revmetrics show --file-id 42 --limit 0 --output csv`,
	PreRunE: tabularSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		rows, err := persist.Manager.Metrics().ListMetrics(rootCtx, cfg.FileID, cfg.Limit)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteMetricRows(rows, cfg)
	},
}
