package cmd

import (
	"fmt"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/internal/persist"
	"github.com/huangsam/revmetrics/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// migrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func migrateSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("database-backend"))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid database backend '%s'. must be sqlite, mysql, postgresql", backend)
	}
	connStr := viper.GetString("database-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetDBFilePath()
	}

	cfg.DatabaseBackend = backend
	cfg.DatabaseConnect = connStr
	return nil
}

// migrateCmd runs database migrations for the metrics tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the metrics and metrics_runs tables.

The run command creates the tables on first use; migrations let an existing
database pick up schema changes without losing collected rows.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  revmetrics migrate

  # Rollback to initial state
  revmetrics migrate --target-version 0`,
	PreRunE: migrateSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		targetVersion := viper.GetInt("target-version")
		if err := persist.Migrate(cfg.DatabaseBackend, cfg.DatabaseConnect, targetVersion); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		cmd.Printf("Migrations applied to %s backend.\n", cfg.DatabaseBackend)
		return nil
	},
}
