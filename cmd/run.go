package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huangsam/revmetrics/core"
	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/internal/observability"
	"github.com/huangsam/revmetrics/internal/outwriter"
	"github.com/huangsam/revmetrics/internal/persist"
	"github.com/huangsam/revmetrics/schema"
	"github.com/spf13/cobra"
)

// runSetup extends the tabular setup with repository resolution.
func runSetup(cmd *cobra.Command, args []string) error {
	if err := tabularSetupWrapper(cmd, args); err != nil {
		return err
	}
	return contract.ResolveRepository(cfg, input)
}

// repositoryLocation picks what the VCS backend reads from. Git works on the
// local clone; SVN and CVS talk to the repository root directly.
func repositoryLocation(c *contract.Config) string {
	if c.VCS == schema.Git {
		return c.RepoPath
	}
	return c.RepoURI
}

// runCmd collects metrics for one repository.
var runCmd = &cobra.Command{
	Use:   "run [repo-path]",
	Short: "Measure every file revision recorded for a repository",
	Long: `Walk the files recorded in the history database, materialize each revision
in a temporary workspace and store its measurements in the metrics table.

The history tables (repositories, scmlog, actions, file_types, ...) must already
be populated. An existing metrics table resumes the previous run: rows already
measured are skipped and new ids continue after the current maximum.

Measurements come from external tools (sloccount, kdsi, halstead, mccabe, pymetrics, cccc).
A missing tool leaves its columns unset and is reported once.

Examples:
  # Measure the branch head of a local Git clone
  revmetrics run /path/to/clone

  # Measure every revision of an SVN repository into PostgreSQL
  revmetrics run --vcs svn --repo-uri svn://host/repo --metrics-all \
    --database-backend postgresql --database-connect "host=db dbname=history"

  # Expose run counters while collecting
  revmetrics run --metrics-addr :9090`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: runSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := newLogger()
		repo, err := contract.NewRepository(cfg.VCS, repositoryLocation(cfg))
		if err != nil {
			return err
		}

		runMetrics := observability.NewRunMetrics()
		if cfg.MetricsAddr != "" {
			go func() {
				if err := runMetrics.Serve(ctx, cfg.MetricsAddr); err != nil {
					logger.Warn("metrics endpoint stopped", "addr", cfg.MetricsAddr, "error", err)
				}
			}()
			logger.Info("serving run counters", "addr", cfg.MetricsAddr)
		}

		ext, err := core.GetExtension(core.MetricsExtension)
		if err != nil {
			return err
		}

		start := time.Now()
		summary, err := ext.Run(ctx, cfg, core.Deps{
			Repo:     repo,
			History:  persist.Manager.History(),
			Store:    persist.Manager.Metrics(),
			Runs:     persist.Manager.Runs(),
			Logger:   logger,
			Observer: runMetrics,
		})
		if err != nil {
			return fmt.Errorf("metrics collection failed: %w", err)
		}
		return outwriter.NewOutWriter().WriteRunSummary(summary, cfg, time.Since(start))
	},
}
