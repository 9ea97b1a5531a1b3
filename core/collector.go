// Package core has the collection driver that measures files across the
// revision history and writes the results to the metrics table.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/revmetrics/core/agg"
	"github.com/huangsam/revmetrics/core/analyzer"
	"github.com/huangsam/revmetrics/core/materialize"
	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/internal/persist"
	"github.com/huangsam/revmetrics/schema"
)

// Skip reasons reported to the Observer.
const (
	SkipMeasured  = "measured"
	SkipDeleted   = "deleted"
	SkipMissing   = "missing"
	SkipDirectory = "directory"
)

// Measurement names reported to the Observer.
const (
	measureLOC      = "loc"
	measureSLOC     = "sloc"
	measureComments = "comments"
	measureHalstead = "halstead"
	measureMcCabe   = "mccabe"
)

// ExtensionRunError is returned by Collector.Run when the run cannot proceed.
// Rows committed before the failure stay in the metrics table.
type ExtensionRunError struct {
	Extension string
	Err       error
}

func (e *ExtensionRunError) Error() string {
	return fmt.Sprintf("extension %s failed: %v", e.Extension, e.Err)
}

func (e *ExtensionRunError) Unwrap() error {
	return e.Err
}

// AnalyzerFactory selects the analyzer for a materialized file.
type AnalyzerFactory interface {
	ForFile(ctx context.Context, path string) analyzer.FileAnalyzer
}

// Observer receives per-item outcomes while a run is in progress.
type Observer interface {
	ItemMeasured()
	ItemSkipped(reason string)
	// ItemFailed reports an item dropped because its history lookup or
	// materialization failed.
	ItemFailed()
	BatchFlushed()
	MeasurementUnavailable(measurement, reason string)
}

type noopObserver struct{}

func (noopObserver) ItemMeasured() {}
func (noopObserver) ItemSkipped(string) {}
func (noopObserver) ItemFailed() {}
func (noopObserver) BatchFlushed() {}
func (noopObserver) MeasurementUnavailable(string, string) {}

// Deps are the collaborators of a Collector. Repo, History and Store are
// required; the rest have defaults.
type Deps struct {
	Repo     contract.Repository
	History  contract.History
	Store    contract.MetricsStore
	Runs     contract.RunStore // Optional run log
	Factory  AnalyzerFactory
	Logger   *slog.Logger
	Observer Observer
}

// Collector drives one metrics run over a repository.
type Collector struct {
	cfg      *contract.Config
	repo     contract.Repository
	history  contract.History
	store    contract.MetricsStore
	runs     contract.RunStore
	factory  AnalyzerFactory
	logger   *slog.Logger
	observer Observer
	now      func() time.Time

	noticed sync.Map // programs already reported as missing
}

// NewCollector creates a Collector from a validated config.
func NewCollector(cfg *contract.Config, deps Deps) *Collector {
	c := &Collector{
		cfg:      cfg,
		repo:     deps.Repo,
		history:  deps.History,
		store:    deps.Store,
		runs:     deps.Runs,
		factory:  deps.Factory,
		logger:   deps.Logger,
		observer: deps.Observer,
		now:      time.Now,
	}
	if c.factory == nil {
		c.factory = analyzer.NewFactory(contract.NewLocalToolRunner(cfg.ToolPaths...))
	}
	if c.logger == nil {
		c.logger = contract.DiscardLogger()
	}
	if c.observer == nil {
		c.observer = noopObserver{}
	}
	return c
}

// Run measures every pending work item and returns the outcome counts.
// A fatal error is returned as *ExtensionRunError; cancellation returns the
// context error after pending rows are flushed.
func (c *Collector) Run(ctx context.Context) (schema.RunSummary, error) {
	var runID int64
	if c.runs != nil {
		id, err := c.runs.BeginRun(ctx, c.cfg.RepoURI, c.now())
		if err != nil {
			c.logger.Warn("run log unavailable", "error", err)
		} else {
			runID = id
			c.logger = c.logger.With("run_id", runID)
		}
	}

	summary, err := c.collect(ctx)

	if runID > 0 {
		status := schema.RunCompleted
		if err != nil {
			status = schema.RunFailed
		}
		if endErr := c.runs.EndRun(context.WithoutCancel(ctx), runID, c.now(), summary, status); endErr != nil {
			c.logger.Warn("failed to finalize run log", "error", endErr)
		}
	}
	return summary, err
}

func (c *Collector) fatal(err error) error {
	return &ExtensionRunError{Extension: MetricsExtension, Err: err}
}

func (c *Collector) collect(ctx context.Context) (schema.RunSummary, error) {
	var summary schema.RunSummary

	// --- 1. Schema and resume state ---
	firstID := int64(1)
	measured := make(map[schema.MeasuredKey]struct{})
	if err := c.store.CreateTable(ctx); err != nil {
		if !errors.Is(err, contract.ErrTableExists) {
			return summary, c.fatal(fmt.Errorf("failed to create metrics table: %w", err))
		}
		summary.Resumed = true
		if firstID, err = c.store.NextID(ctx); err != nil {
			return summary, c.fatal(err)
		}
		if measured, err = c.store.MeasuredPairs(ctx); err != nil {
			return summary, c.fatal(err)
		}
		c.logger.Info("resuming metrics run", "measured", len(measured), "next_id", firstID)
	}

	repoID, err := c.history.RepositoryID(ctx, c.cfg.RepoURI)
	if err != nil {
		return summary, c.fatal(err)
	}

	// --- 2. Workspace ---
	workspace, err := os.MkdirTemp(c.cfg.WorkspaceDir, "revmetrics-")
	if err != nil {
		return summary, c.fatal(fmt.Errorf("failed to create workspace: %w", err))
	}
	if c.cfg.KeepWorkspace {
		c.logger.Info("keeping workspace", "path", workspace)
	} else {
		defer func() {
			if err := os.RemoveAll(workspace); err != nil {
				c.logger.Warn("failed to remove workspace", "path", workspace, "error", err)
			}
		}()
	}
	mat := materialize.New(c.repo, workspace, c.cfg.Retries, c.logger)

	if c.repo.Type().IsHierarchical() {
		if err := c.checkoutTopLevel(ctx, mat, repoID); err != nil {
			return summary, c.fatal(err)
		}
	}

	// --- 3. Work items ---
	items, err := c.history.WorkItems(ctx, repoID, c.cfg.MeasureAll)
	if err != nil {
		return summary, c.fatal(err)
	}
	c.logger.Info("collecting metrics", "repository", c.cfg.RepoURI, "items", len(items), "all", c.cfg.MeasureAll)

	writer := persist.NewBatchWriter(c.store, c.cfg.BatchSize, firstID)
	if err := c.process(ctx, mat, repoID, items, measured, writer, &summary); err != nil {
		summary.Flushes = writer.Flushes()
		return summary, c.fatal(err)
	}

	// --- 4. Final flush ---
	flushes := writer.Flushes()
	if err := writer.Flush(context.WithoutCancel(ctx)); err != nil {
		summary.Flushes = flushes
		return summary, c.fatal(fmt.Errorf("failed to write metrics: %w", err))
	}
	if writer.Flushes() > flushes {
		c.observer.BatchFlushed()
	}
	summary.Flushes = writer.Flushes()

	c.logger.Info("metrics run finished",
		"measured", summary.Measured, "skipped", summary.Skipped, "failed", summary.Failed, "flushes", summary.Flushes)
	return summary, ctx.Err()
}

// checkoutTopLevel materializes every root-level directory at its oldest revision.
func (c *Collector) checkoutTopLevel(ctx context.Context, mat *materialize.Materializer, repoID int64) error {
	dirs, err := c.history.TopLevelDirs(ctx, repoID, c.cfg.MeasureAll)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		path, err := c.history.PathForRevision(ctx, repoID, dir.Name, dir.TreeID, dir.FirstRevision)
		if err != nil {
			return err
		}
		c.logger.Debug("checking out top level directory", "name", dir.Name, "path", path, "rev", dir.FirstRevision)
		if err := mat.CheckoutTopLevel(ctx, dir.Name, path, dir.FirstRevision); err != nil {
			return err
		}
	}
	return nil
}

// process measures the work items in order. Per-item problems are counted in
// summary; only persistence errors are returned.
func (c *Collector) process(
	ctx context.Context,
	mat *materialize.Materializer,
	repoID int64,
	items []schema.WorkItem,
	measured map[schema.MeasuredKey]struct{},
	writer *persist.BatchWriter,
	summary *schema.RunSummary,
) error {
	vcs := c.repo.Type()
	var currentRev, currentPath string

	skip := func(reason string) {
		summary.Skipped++
		c.observer.ItemSkipped(reason)
	}
	fail := func() {
		summary.Failed++
		c.observer.ItemFailed()
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return nil
		}
		if _, ok := measured[item.Key()]; ok {
			skip(SkipMeasured)
			continue
		}

		rev := item.CheckoutRevision()
		relPath := strings.Trim(item.Path, "/")
		if vcs.TracksPathHistory() {
			deleted, err := c.history.PathIsDeleted(ctx, repoID, item.Path, item.FileID, rev)
			if err != nil {
				c.logger.Error("failed to resolve file history", "file_id", item.FileID, "rev", rev, "error", err)
				fail()
				continue
			}
			if deleted {
				c.logger.Debug("skipping deleted file", "path", item.Path, "rev", rev)
				skip(SkipDeleted)
				continue
			}
			if relPath, err = c.history.PathForRevision(ctx, repoID, item.Path, item.FileID, rev); err != nil {
				c.logger.Error("failed to resolve file path", "file_id", item.FileID, "rev", rev, "error", err)
				fail()
				continue
			}
		}

		if vcs.IsHierarchical() || rev != currentRev || relPath != currentPath {
			if err := mat.Advance(ctx, relPath, rev); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error("failed to materialize file", "path", relPath, "rev", rev, "error", err)
				currentRev, currentPath = "", ""
				fail()
				continue
			}
			currentRev, currentPath = rev, relPath
		}

		fullPath := mat.Path(relPath)
		info, err := os.Stat(fullPath)
		if err != nil {
			c.logger.Error("file not found in workspace", "path", relPath, "rev", rev)
			skip(SkipMissing)
			continue
		}
		if info.IsDir() {
			skip(SkipDirectory)
			continue
		}

		m := c.measure(ctx, fullPath)
		flushes := writer.Flushes()
		if _, err := writer.Add(ctx, item.FileID, item.CommitID, m); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		if writer.Flushes() > flushes {
			c.observer.BatchFlushed()
		}
		measured[item.Key()] = struct{}{}
		summary.Measured++
		c.observer.ItemMeasured()
		c.logger.Debug("measured file", "path", relPath, "rev", rev, "lang", schema.FormatOptionalString(m.Lang))
	}
	return nil
}

// measure runs every measurement the analyzer supports. A measurement that
// fails leaves its fields unset.
func (c *Collector) measure(ctx context.Context, path string) schema.Measures {
	fa := c.factory.ForFile(ctx, path)
	var m schema.Measures

	if loc, err := fa.LineCount(ctx); c.available(measureLOC, path, err) {
		m.LOC = schema.Ptr(loc)
	}

	if sloc, lang, err := fa.SizeAndLanguage(ctx); c.available(measureSLOC, path, err) {
		m.SLOC = schema.Ptr(sloc)
		m.Lang = schema.Ptr(string(lang))
	} else {
		m.Lang = schema.Ptr(string(fa.Language()))
	}

	if counts, err := fa.CommentsAndBlanks(ctx); c.available(measureComments, path, err) {
		m.ApplyComments(counts)
	}

	if h, err := fa.InformationalComplexity(ctx); c.available(measureHalstead, path, err) {
		m.ApplyHalstead(h)
	}

	if values, units, err := fa.StructuralComplexity(ctx); c.available(measureMcCabe, path, err) {
		// A file with no measurable functions keeps NFunctions NULL.
		if len(values) > 0 {
			m.NFunctions = schema.Ptr(units)
		}
		m.ApplyMcCabe(agg.McCabe(values, units))
	}
	return m
}

// available reports whether err is nil, logging and counting the failure otherwise.
func (c *Collector) available(measurement, path string, err error) bool {
	if err == nil {
		return true
	}

	var notFound *analyzer.ToolNotFoundError
	switch {
	case errors.Is(err, analyzer.ErrUnsupported):
		c.observer.MeasurementUnavailable(measurement, "unsupported")
	case errors.As(err, &notFound):
		c.observer.MeasurementUnavailable(measurement, "tool_missing")
		if _, seen := c.noticed.LoadOrStore(notFound.Program, struct{}{}); !seen {
			c.logger.Warn("measurement tool not available, values will be left unset", "program", notFound.Program)
		}
	default:
		c.observer.MeasurementUnavailable(measurement, "error")
		c.logger.Error("measurement failed", "measurement", measurement, "path", path, "error", err)
	}
	return false
}
