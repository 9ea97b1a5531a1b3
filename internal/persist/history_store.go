package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
)

// HistoryStoreImpl implements the History interface over the tables written
// by history ingestion: repositories, scmlog, actions, tree, file_paths and file_types.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.History = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a History reader on an open database.
func NewHistoryStore(db *sql.DB, backend schema.DatabaseBackend) *HistoryStoreImpl {
	return &HistoryStoreImpl{db: db, backend: backend}
}

// RepositoryID implements the History interface.
func (hs *HistoryStoreImpl) RepositoryID(ctx context.Context, uri string) (int64, error) {
	var id int64
	err := hs.db.QueryRowContext(ctx, rebind("SELECT id FROM repositories WHERE uri = ?", hs.backend), uri).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("repository %s not found in history", uri)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up repository %s: %w", uri, err)
	}
	return id, nil
}

// TopLevelDirs implements the History interface. Rows are read oldest commit
// first so the first revision seen per directory is its earliest.
func (hs *HistoryStoreImpl) TopLevelDirs(ctx context.Context, repoID int64, all bool) ([]schema.TopLevelDir, error) {
	query := `SELECT tree.file_name, tree.id, scmlog.rev
		FROM scmlog, actions, tree
		WHERE actions.commit_id = scmlog.id
		AND actions.file_id = tree.id
		AND tree.parent = -1 `
	if !all {
		query += `AND tree.id NOT IN (SELECT file_id FROM actions WHERE type = 'D' AND head) `
	}
	query += `AND scmlog.repository_id = ?
		ORDER BY scmlog.date ASC, scmlog.id ASC`

	rows, err := hs.db.QueryContext(ctx, rebind(query, hs.backend), repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query top level directories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	seen := make(map[int64]struct{})
	var dirs []schema.TopLevelDir
	for rows.Next() {
		var dir schema.TopLevelDir
		if err := rows.Scan(&dir.Name, &dir.TreeID, &dir.FirstRevision); err != nil {
			return nil, fmt.Errorf("failed to scan top level directory: %w", err)
		}
		if _, ok := seen[dir.TreeID]; ok {
			continue
		}
		seen[dir.TreeID] = struct{}{}
		dirs = append(dirs, dir)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top level directories: %w", err)
	}
	return dirs, nil
}

// WorkItems implements the History interface.
func (hs *HistoryStoreImpl) WorkItems(ctx context.Context, repoID int64, all bool) ([]schema.WorkItem, error) {
	query := `SELECT s.rev, f.path, a.commit_id, a.file_id, s.composed_rev
		FROM scmlog s, actions a, file_paths f, file_types t
		WHERE a.commit_id = s.id
		AND a.file_id = f.id
		AND a.file_id = t.file_id
		AND a.type IN ('M', 'A')
		AND t.type IN ('code', 'unknown') `
	if !all {
		query += `AND a.head `
	}
	query += `AND s.repository_id = ?
		ORDER BY s.date DESC`

	rows, err := hs.db.QueryContext(ctx, rebind(query, hs.backend), repoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query work items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []schema.WorkItem
	for rows.Next() {
		var item schema.WorkItem
		var composed sql.NullBool
		if err := rows.Scan(&item.Revision, &item.Path, &item.CommitID, &item.FileID, &composed); err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		item.Composed = composed.Valid && composed.Bool
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work items: %w", err)
	}
	return items, nil
}

// PathForRevision implements the History interface. file_paths keeps one
// path per file, so the stored path is returned unchanged.
func (hs *HistoryStoreImpl) PathForRevision(_ context.Context, _ int64, path string, _ int64, _ string) (string, error) {
	return strings.Trim(path, "/"), nil
}

// PathIsDeleted implements the History interface. A file is deleted as of
// rev when its most recent action up to that commit is a deletion.
func (hs *HistoryStoreImpl) PathIsDeleted(ctx context.Context, repoID int64, _ string, fileID int64, rev string) (bool, error) {
	query := `SELECT a.type
		FROM actions a, scmlog s
		WHERE a.commit_id = s.id
		AND a.file_id = ?
		AND s.repository_id = ?
		AND s.date <= (SELECT MAX(date) FROM scmlog WHERE rev = ? AND repository_id = ?)
		ORDER BY s.date DESC, s.id DESC
		LIMIT 1`

	var actionType string
	err := hs.db.QueryRowContext(ctx, rebind(query, hs.backend), fileID, repoID, rev, repoID).Scan(&actionType)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check deletion of file %d at %s: %w", fileID, rev, err)
	}
	return actionType == "D", nil
}
