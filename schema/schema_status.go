package schema

import "time"

// MetricsStatus represents the status of the metrics store.
type MetricsStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TableExists   bool             `json:"table_exists"`
	TotalRows     int64            `json:"total_rows"`
	DistinctFiles int64            `json:"distinct_files"`
	MaxID         int64            `json:"max_id"`
	Languages     map[string]int64 `json:"languages"`
	TotalRuns     int64            `json:"total_runs"`
	LastRun       *RunRecord       `json:"last_run,omitempty"`
}

// RunRecord represents a row from the metrics_runs table.
type RunRecord struct {
	ID            int64      `json:"id"`
	RepositoryURI string     `json:"repository_uri"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	Measured      int64      `json:"measured"`
	Skipped       int64      `json:"skipped"`
	Failed        int64      `json:"failed"`
	Status        RunStatus  `json:"status"`
}

// RunSummary counts the outcomes of one extension run.
type RunSummary struct {
	Resumed  bool  // Metrics table existed before the run
	Measured int64 // Rows written
	Skipped  int64 // Already measured, deleted, or not present on disk
	Failed   int64 // Materialization failures
	Flushes  int   // Batch flushes performed
}
