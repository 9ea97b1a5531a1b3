package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/internal/outwriter"
	"github.com/huangsam/revmetrics/internal/parquet"
	"github.com/huangsam/revmetrics/internal/persist"
	"github.com/huangsam/revmetrics/schema"
	"github.com/spf13/cobra"
)

// exportCmd dumps the whole metrics table.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the metrics table for BI tools and analytics",
	Long: `Export every stored measurement. With --output parquet two files are written:
<output-file>.metrics.parquet and <output-file>.runs.parquet.
CSV and JSON exports write the metrics rows only.

Requires: --output-file parameter

Examples:
  # Export for DuckDB or pandas
  revmetrics export --output parquet --output-file revmetrics

  duckdb -c "SELECT lang, avg(sloc) FROM read_parquet('revmetrics.metrics.parquet') GROUP BY lang"

  # Plain CSV
  revmetrics export --output csv --output-file metrics.csv`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if cfg.OutputFile == "" {
			return errors.New("--output-file is required for export command")
		}

		rows, err := persist.Manager.Metrics().ListMetrics(rootCtx, 0, 0)
		if err != nil {
			return fmt.Errorf("failed to retrieve metrics: %w", err)
		}
		if cfg.Output != schema.ParquetOut {
			return outwriter.NewOutWriter().WriteMetricRows(rows, cfg)
		}

		runs, err := persist.Manager.Runs().ListRuns(rootCtx, 0)
		if err != nil {
			return fmt.Errorf("failed to retrieve runs: %w", err)
		}
		return exportParquet(cfg, rows, runs)
	},
}

// exportParquet writes the metrics and the run log next to each other.
func exportParquet(c *contract.Config, rows []schema.MetricRow, runs []schema.RunRecord) error {
	metricsFile := c.OutputFile + ".metrics.parquet"
	if err := parquet.WriteMetricsParquet(parquet.ConvertMetricRows(rows), metricsFile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Exported %d metric rows to: %s\n", len(rows), metricsFile)

	runsFile := c.OutputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Exported %d runs to: %s\n", len(runs), runsFile)
	return nil
}
