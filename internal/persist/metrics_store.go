package persist

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
)

// metricsColumns lists the metrics columns in insert and select order.
var metricsColumns = []string{
	"id", "file_id", "commit_id", "lang",
	"sloc", "loc", "ncomment", "lcomment", "lblank", "nfunctions",
	"mccabe_max", "mccabe_min", "mccabe_sum", "mccabe_mean", "mccabe_median",
	"halstead_length", "halstead_vol", "halstead_level", "halstead_md",
}

// MetricsStoreImpl implements the MetricsStore interface on a SQL database.
type MetricsStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.MetricsStore = &MetricsStoreImpl{} // Compile-time check

// NewMetricsStore creates a MetricsStore on an open database.
func NewMetricsStore(db *sql.DB, backend schema.DatabaseBackend) *MetricsStoreImpl {
	return &MetricsStoreImpl{db: db, backend: backend}
}

// getCreateMetricsQuery returns the CREATE TABLE query for the metrics table.
// History tables are referenced where the backend enforces foreign keys.
func getCreateMetricsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(metricsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE %s (
				id INTEGER PRIMARY KEY,
				file_id INTEGER,
				commit_id INTEGER,
				lang TEXT,
				sloc INTEGER,
				loc INTEGER,
				ncomment INTEGER,
				lcomment INTEGER,
				lblank INTEGER,
				nfunctions INTEGER,
				mccabe_max INTEGER,
				mccabe_min INTEGER,
				mccabe_sum INTEGER,
				mccabe_mean INTEGER,
				mccabe_median INTEGER,
				halstead_length INTEGER,
				halstead_vol INTEGER,
				halstead_level DOUBLE,
				halstead_md INTEGER,
				FOREIGN KEY (file_id) REFERENCES tree(id),
				FOREIGN KEY (commit_id) REFERENCES scmlog(id)
			) ENGINE=InnoDB CHARACTER SET=utf8mb4;
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE %s (
				id INTEGER PRIMARY KEY,
				file_id INTEGER REFERENCES tree(id),
				commit_id INTEGER REFERENCES scmlog(id),
				lang TEXT,
				sloc INTEGER,
				loc INTEGER,
				ncomment INTEGER,
				lcomment INTEGER,
				lblank INTEGER,
				nfunctions INTEGER,
				mccabe_max INTEGER,
				mccabe_min INTEGER,
				mccabe_sum INTEGER,
				mccabe_mean INTEGER,
				mccabe_median INTEGER,
				halstead_length INTEGER,
				halstead_vol INTEGER,
				halstead_level DOUBLE PRECISION,
				halstead_md INTEGER
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE %s (
				id INTEGER PRIMARY KEY,
				file_id INTEGER,
				commit_id INTEGER,
				lang TEXT,
				sloc INTEGER,
				loc INTEGER,
				ncomment INTEGER,
				lcomment INTEGER,
				lblank INTEGER,
				nfunctions INTEGER,
				mccabe_max INTEGER,
				mccabe_min INTEGER,
				mccabe_sum INTEGER,
				mccabe_mean INTEGER,
				mccabe_median INTEGER,
				halstead_length INTEGER,
				halstead_vol INTEGER,
				halstead_level REAL,
				halstead_md INTEGER
			);
		`, quotedTableName)
	}
}

// CreateTable implements the MetricsStore interface.
func (ms *MetricsStoreImpl) CreateTable(ctx context.Context) error {
	if _, err := ms.db.ExecContext(ctx, getCreateMetricsQuery(ms.backend)); err != nil {
		if isTableExists(err) {
			return ErrTableExists
		}
		return fmt.Errorf("failed to create table %s: %w", metricsTable, err)
	}
	return nil
}

// NextID implements the MetricsStore interface.
func (ms *MetricsStoreImpl) NextID(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("SELECT MAX(id) FROM %s", quoteTableName(metricsTable, ms.backend))
	var maxID sql.NullInt64
	if err := ms.db.QueryRowContext(ctx, query).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("failed to read max metrics id: %w", err)
	}
	if !maxID.Valid {
		return 1, nil
	}
	return maxID.Int64 + 1, nil
}

// MeasuredPairs implements the MetricsStore interface.
func (ms *MetricsStoreImpl) MeasuredPairs(ctx context.Context) (map[schema.MeasuredKey]struct{}, error) {
	query := fmt.Sprintf("SELECT file_id, commit_id FROM %s", quoteTableName(metricsTable, ms.backend))
	rows, err := ms.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query measured pairs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	pairs := make(map[schema.MeasuredKey]struct{})
	for rows.Next() {
		var key schema.MeasuredKey
		if err := rows.Scan(&key.FileID, &key.CommitID); err != nil {
			return nil, fmt.Errorf("failed to scan measured pair: %w", err)
		}
		pairs[key] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measured pairs: %w", err)
	}
	return pairs, nil
}

// InsertMetrics implements the MetricsStore interface.
func (ms *MetricsStoreImpl) InsertMetrics(ctx context.Context, rows []schema.MetricRow) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(metricsColumns)), ", ")
	query := rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteTableName(metricsTable, ms.backend), strings.Join(metricsColumns, ", "), placeholders), ms.backend)

	tx, err := ms.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare metrics insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		m := row.Measures
		_, err := stmt.ExecContext(ctx,
			row.ID, row.FileID, row.CommitID, nullable(m.Lang),
			nullable(m.SLOC), nullable(m.LOC), nullable(m.NComment), nullable(m.LComment), nullable(m.LBlank), nullable(m.NFunctions),
			nullable(m.McCabeMax), nullable(m.McCabeMin), nullable(m.McCabeSum), nullable(m.McCabeMean), nullable(m.McCabeMedian),
			nullable(m.HalsteadLength), nullable(m.HalsteadVol), nullable(m.HalsteadLevel), nullable(m.HalsteadMD),
		)
		if err != nil {
			return fmt.Errorf("failed to insert metrics row %d: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metrics batch: %w", err)
	}
	return nil
}

// ListMetrics implements the MetricsStore interface.
func (ms *MetricsStoreImpl) ListMetrics(ctx context.Context, fileID int64, limit int) ([]schema.MetricRow, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(metricsColumns, ", "), quoteTableName(metricsTable, ms.backend))
	var args []any
	if fileID > 0 {
		query += " WHERE file_id = ?"
		args = append(args, fileID)
	}
	query += " ORDER BY id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := ms.db.QueryContext(ctx, rebind(query, ms.backend), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.MetricRow
	for rows.Next() {
		row, err := scanMetricRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metrics: %w", err)
	}
	return results, nil
}

func scanMetricRow(rows *sql.Rows) (schema.MetricRow, error) {
	var row schema.MetricRow
	var lang sql.NullString
	var ints [14]sql.NullInt64
	var level sql.NullFloat64

	err := rows.Scan(&row.ID, &row.FileID, &row.CommitID, &lang,
		&ints[0], &ints[1], &ints[2], &ints[3], &ints[4], &ints[5],
		&ints[6], &ints[7], &ints[8], &ints[9], &ints[10],
		&ints[11], &ints[12], &level, &ints[13])
	if err != nil {
		return row, fmt.Errorf("failed to scan metrics row: %w", err)
	}

	m := &row.Measures
	m.Lang = stringPtr(lang)
	m.SLOC, m.LOC = intPtr(ints[0]), intPtr(ints[1])
	m.NComment, m.LComment, m.LBlank = intPtr(ints[2]), intPtr(ints[3]), intPtr(ints[4])
	m.NFunctions = intPtr(ints[5])
	m.McCabeMax, m.McCabeMin, m.McCabeSum = intPtr(ints[6]), intPtr(ints[7]), intPtr(ints[8])
	m.McCabeMean, m.McCabeMedian = intPtr(ints[9]), intPtr(ints[10])
	m.HalsteadLength, m.HalsteadVol = intPtr(ints[11]), intPtr(ints[12])
	m.HalsteadLevel = floatPtr(level)
	m.HalsteadMD = intPtr(ints[13])
	return row, nil
}

// GetStatus implements the MetricsStore interface.
func (ms *MetricsStoreImpl) GetStatus(ctx context.Context) (schema.MetricsStatus, error) {
	status := schema.MetricsStatus{
		Backend:   string(ms.backend),
		Connected: ms.db != nil,
		Languages: make(map[string]int64),
	}
	if ms.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(metricsTable, ms.backend)

	// A failing count means the table has not been created yet
	countQuery := fmt.Sprintf("SELECT COUNT(*), COUNT(DISTINCT file_id), COALESCE(MAX(id), 0) FROM %s", quotedTableName)
	if err := ms.db.QueryRowContext(ctx, countQuery).Scan(&status.TotalRows, &status.DistinctFiles, &status.MaxID); err == nil {
		status.TableExists = true
	}

	if status.TableExists && status.TotalRows > 0 {
		langQuery := fmt.Sprintf("SELECT COALESCE(lang, '%s'), COUNT(*) FROM %s GROUP BY lang", schema.LangUnknown, quotedTableName)
		rows, err := ms.db.QueryContext(ctx, langQuery)
		if err != nil {
			return status, fmt.Errorf("failed to get language breakdown: %w", err)
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var lang string
			var count int64
			if err := rows.Scan(&lang, &count); err != nil {
				return status, fmt.Errorf("failed to scan language breakdown: %w", err)
			}
			status.Languages[lang] += count
		}
		if err := rows.Err(); err != nil {
			return status, fmt.Errorf("error iterating language breakdown: %w", err)
		}
	}

	runs := NewRunStore(ms.db, ms.backend)
	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(runsTable, ms.backend))
	if err := ms.db.QueryRowContext(ctx, runsQuery).Scan(&status.TotalRuns); err != nil {
		// The run log is optional
		return status, nil
	}
	if status.TotalRuns > 0 {
		last, err := runs.ListRuns(ctx, 1)
		if err != nil {
			return status, err
		}
		if len(last) > 0 {
			status.LastRun = &last[0]
		}
	}
	return status, nil
}

// Close implements the MetricsStore interface.
func (ms *MetricsStoreImpl) Close() error {
	if ms.db != nil {
		return ms.db.Close()
	}
	return nil
}
