package persist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
)

// RunStoreImpl implements the RunStore interface on the metrics_runs table.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a RunStore on an open database.
func NewRunStore(db *sql.DB, backend schema.DatabaseBackend) *RunStoreImpl {
	return &RunStoreImpl{db: db, backend: backend}
}

// getCreateRunsQuery returns the CREATE TABLE query for metrics_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				repository_uri VARCHAR(1024) NOT NULL,
				started_at DATETIME(6) NOT NULL,
				ended_at DATETIME(6),
				measured BIGINT NOT NULL DEFAULT 0,
				skipped BIGINT NOT NULL DEFAULT 0,
				failed BIGINT NOT NULL DEFAULT 0,
				status VARCHAR(32) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				repository_uri TEXT NOT NULL,
				started_at TIMESTAMPTZ NOT NULL,
				ended_at TIMESTAMPTZ,
				measured BIGINT NOT NULL DEFAULT 0,
				skipped BIGINT NOT NULL DEFAULT 0,
				failed BIGINT NOT NULL DEFAULT 0,
				status TEXT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				repository_uri TEXT NOT NULL,
				started_at TEXT NOT NULL,
				ended_at TEXT,
				measured INTEGER NOT NULL DEFAULT 0,
				skipped INTEGER NOT NULL DEFAULT 0,
				failed INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// BeginRun implements the RunStore interface.
func (rs *RunStoreImpl) BeginRun(ctx context.Context, repositoryURI string, startedAt time.Time) (int64, error) {
	if _, err := rs.db.ExecContext(ctx, getCreateRunsQuery(rs.backend)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", runsTable, err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (repository_uri, started_at, status) VALUES ($1, $2, $3) RETURNING id`, quotedTableName)
		if err := rs.db.QueryRowContext(ctx, query, repositoryURI, startedAt, string(schema.RunRunning)).Scan(&runID); err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (repository_uri, started_at, status) VALUES (?, ?, ?)`, quotedTableName)
		result, err := rs.db.ExecContext(ctx, query, repositoryURI, formatTime(startedAt, rs.backend), string(schema.RunRunning))
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		if runID, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("failed to read run id: %w", err)
		}
	}
	return runID, nil
}

// EndRun implements the RunStore interface.
func (rs *RunStoreImpl) EndRun(ctx context.Context, runID int64, endedAt time.Time, summary schema.RunSummary, status schema.RunStatus) error {
	query := rebind(fmt.Sprintf(`UPDATE %s SET ended_at = ?, measured = ?, skipped = ?, failed = ?, status = ? WHERE id = ?`,
		quoteTableName(runsTable, rs.backend)), rs.backend)
	result, err := rs.db.ExecContext(ctx, query,
		formatTime(endedAt, rs.backend), summary.Measured, summary.Skipped, summary.Failed, string(status), runID)
	if err != nil {
		return fmt.Errorf("failed to update run %d: %w", runID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %d not found", runID)
	}
	return nil
}

// ListRuns implements the RunStore interface.
func (rs *RunStoreImpl) ListRuns(ctx context.Context, limit int) ([]schema.RunRecord, error) {
	query := fmt.Sprintf(`SELECT id, repository_uri, started_at, ended_at, measured, skipped, failed, status FROM %s ORDER BY id DESC`,
		quoteTableName(runsTable, rs.backend))
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := rs.db.QueryContext(ctx, rebind(query, rs.backend), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var status string

		switch rs.backend {
		case schema.SQLiteBackend:
			var startedStr string
			var endedStr sql.NullString
			if err := rows.Scan(&record.ID, &record.RepositoryURI, &startedStr, &endedStr,
				&record.Measured, &record.Skipped, &record.Failed, &status); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			startedAt, err := time.Parse(time.RFC3339Nano, startedStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse started_at: %w", err)
			}
			record.StartedAt = startedAt
			if endedStr.Valid {
				endedAt, err := time.Parse(time.RFC3339Nano, endedStr.String)
				if err != nil {
					return nil, fmt.Errorf("failed to parse ended_at: %w", err)
				}
				record.EndedAt = &endedAt
			}
		default: // MySQL and PostgreSQL store as native datetime
			var endedAt sql.NullTime
			if err := rows.Scan(&record.ID, &record.RepositoryURI, &record.StartedAt, &endedAt,
				&record.Measured, &record.Skipped, &record.Failed, &status); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if endedAt.Valid {
				record.EndedAt = &endedAt.Time
			}
		}

		record.Status = schema.RunStatus(status)
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}
