package cmd

import (
	"github.com/huangsam/revmetrics/internal/outwriter"
	"github.com/huangsam/revmetrics/internal/persist"
	"github.com/spf13/cobra"
)

// statusCmd shows the state of the metrics table.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display metrics table statistics and connection details",
	Long: `Show what the metrics table holds and how the last run went.

Displays:
- Backend type and connection status
- Row count, distinct files and highest id
- Rows per language
- Number of recorded runs and the most recent one

Examples:
  # Check the default SQLite database
  revmetrics status

  # Machine-readable status
  revmetrics status --output json`,
	PreRunE: tabularSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		status, err := persist.Manager.Metrics().GetStatus(rootCtx)
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter().WriteStatus(status, cfg)
	},
}
