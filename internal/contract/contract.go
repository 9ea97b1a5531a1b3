// Package contract provides interfaces and shared utilities for the revmetrics internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/revmetrics/schema"
)

// ErrProgramNotFound is returned by ToolRunner.LookPath when an executable
// cannot be located in any search path.
var ErrProgramNotFound = errors.New("program not found")

// ErrTableExists is returned by MetricsStore.CreateTable when the metrics table
// is already present. Callers treat it as a request to resume.
var ErrTableExists = errors.New("metrics table already exists")

// ToolRunner locates and executes the external measurement programs.
// This allows analyzers to be tested without the real tools installed.
type ToolRunner interface {
	// LookPath resolves a program name to an executable path.
	// It returns an error wrapping ErrProgramNotFound when the program is missing.
	LookPath(name string) (string, error)

	// Run executes the program at path and returns its standard output.
	Run(ctx context.Context, path string, args ...string) ([]byte, error)
}

// Repository is the VCS backend that materializes historical content on disk.
type Repository interface {
	// Type returns the kind of version control system.
	Type() schema.VCSType

	// URI returns the repository location as recorded in the repositories table.
	URI() string

	// Checkout writes path as of rev to dest. For hierarchical systems path is a
	// directory and dest becomes a working copy; otherwise dest is a single file.
	Checkout(ctx context.Context, path, dest, rev string) error

	// Update advances an existing working copy at dest to rev.
	Update(ctx context.Context, dest, rev string) error

	// LastRevision reports the revision the content at dest currently reflects.
	LastRevision(ctx context.Context, dest string) (string, error)
}

// History reads the revision history that was ingested into the database
// and resolves paths as they existed at a given revision.
type History interface {
	// RepositoryID returns the repositories.id for a URI.
	RepositoryID(ctx context.Context, uri string) (int64, error)

	// TopLevelDirs lists root-level directories with their oldest revision.
	// Unless all is set, directories deleted at the branch head are excluded.
	TopLevelDirs(ctx context.Context, repoID int64, all bool) ([]schema.TopLevelDir, error)

	// WorkItems lists added or modified source files, newest commit first.
	// Unless all is set, only actions on the branch head are returned.
	WorkItems(ctx context.Context, repoID int64, all bool) ([]schema.WorkItem, error)

	// PathForRevision returns the repository-relative path of fileID as of rev.
	PathForRevision(ctx context.Context, repoID int64, path string, fileID int64, rev string) (string, error)

	// PathIsDeleted reports whether fileID had been deleted as of rev.
	PathIsDeleted(ctx context.Context, repoID int64, path string, fileID int64, rev string) (bool, error)
}

// MetricsStore persists measurement rows in the metrics table.
type MetricsStore interface {
	// CreateTable creates the metrics table. It returns an error matching
	// ErrTableExists when the table is already present.
	CreateTable(ctx context.Context) error

	// NextID returns max(id)+1, or 1 for an empty table.
	NextID(ctx context.Context) (int64, error)

	// MeasuredPairs returns every (file_id, commit_id) pair that already has a row.
	MeasuredPairs(ctx context.Context) (map[schema.MeasuredKey]struct{}, error)

	// InsertMetrics writes rows in a single transaction and commits it.
	InsertMetrics(ctx context.Context, rows []schema.MetricRow) error

	// ListMetrics returns the rows for a file ordered by id. A zero fileID lists every row.
	ListMetrics(ctx context.Context, fileID int64, limit int) ([]schema.MetricRow, error)

	// GetStatus returns status information about the metrics store.
	GetStatus(ctx context.Context) (schema.MetricsStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// RunStore records extension runs.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID.
	BeginRun(ctx context.Context, repositoryURI string, startedAt time.Time) (int64, error)

	// EndRun stores the outcome of a run.
	EndRun(ctx context.Context, runID int64, endedAt time.Time, summary schema.RunSummary, status schema.RunStatus) error

	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]schema.RunRecord, error)
}
