// Package cmd defines the command-line interface for revmetrics.
package cmd

import (
	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("database-backend", string(schema.SQLiteBackend), "Database backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("database-connect", "", "Database connection string (e.g., user:pass@tcp(host:port)/dbname); sqlite defaults to ~/.revmetrics.db")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", contract.LogFormatText, "Log format: text or json")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultLimit, "Number of rows to display (0 = all)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runCmd to Viper
	runCmd.Flags().String("repo-uri", "", "Repository URI as recorded in the repositories table (defaults to the repository path)")
	runCmd.Flags().String("vcs", "", "Version control system: svn or cvs or git (detected when empty)")
	runCmd.Flags().Bool("metrics-all", false, "Measure every revision instead of the branch head only")
	runCmd.Flags().Int("retries", contract.DefaultRetries, "Extra checkout attempts when materialization fails")
	runCmd.Flags().Int("batch-size", contract.DefaultBatchSize, "Rows inserted per transaction")
	runCmd.Flags().String("tool-paths", "", "Comma-separated directories searched for measurement tools before $PATH")
	runCmd.Flags().String("workspace-dir", "", "Parent directory of the temporary checkout workspace")
	runCmd.Flags().Bool("keep-workspace", false, "Keep the checkout workspace after the run")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus run counters on this address (e.g., :9090)")
	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		contract.LogFatal("Error binding run flags", err)
	}

	// Bind all flags of showCmd to Viper
	showCmd.Flags().Int64("file-id", 0, "Tree id of the file to show (0 = every file)")
	if err := viper.BindPFlags(showCmd.Flags()); err != nil {
		contract.LogFatal("Error binding show flags", err)
	}

	// Bind all flags of migrateCmd to Viper
	migrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(migrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding migrate flags", err)
	}
}
