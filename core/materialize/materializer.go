// Package materialize makes historical file content available on disk by
// checking out and advancing a temporary workspace.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/cenkalti/backoff/v5"

	"github.com/huangsam/revmetrics/internal/contract"
)

// ErrMaterialization matches every MaterializationError.
var ErrMaterialization = errors.New("materialization failed")

// MaterializationError reports a checkout or update that did not converge
// to the requested revision.
type MaterializationError struct {
	Op       string // checkout or update
	Path     string
	Rev      string
	Observed string // Revision reported by the backend after the last attempt
	Attempts int
	Err      error // Backend failure, if that is what stopped the attempts
}

func (e *MaterializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s@%s failed in try %d: %v", e.Op, e.Path, e.Rev, e.Attempts, e.Err)
	}
	return fmt.Sprintf("%s %s@%s failed after %d tries: got %s", e.Op, e.Path, e.Rev, e.Attempts, e.Observed)
}

// Is matches ErrMaterialization.
func (e *MaterializationError) Is(target error) bool {
	return target == ErrMaterialization
}

// Unwrap returns the backend failure, if any.
func (e *MaterializationError) Unwrap() error {
	return e.Err
}

// Subtree is a top-level directory checked out into the workspace.
type Subtree struct {
	Name            string
	FirstRevision   string
	CurrentRevision string
}

// Materializer owns the workspace of one collection run.
type Materializer struct {
	repo      contract.Repository
	workspace string
	retries   int
	logger    *slog.Logger
	subtrees  []*Subtree
}

// New creates a Materializer that writes below workspace and retries each
// checkout retries extra times.
func New(repo contract.Repository, workspace string, retries int, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	return &Materializer{repo: repo, workspace: workspace, retries: retries, logger: logger}
}

// Workspace returns the workspace root.
func (m *Materializer) Workspace() string { return m.workspace }

// Path maps a repository-relative path into the workspace.
func (m *Materializer) Path(relPath string) string {
	return filepath.Join(m.workspace, filepath.FromSlash(strings.TrimLeft(relPath, "/")))
}

// Subtrees returns a snapshot of the checked out top-level directories.
func (m *Materializer) Subtrees() []Subtree {
	out := make([]Subtree, len(m.subtrees))
	for i, s := range m.subtrees {
		out[i] = *s
	}
	return out
}

// CheckoutTopLevel performs the initial checkout of a top-level directory.
// The directory is checked out from path, its location as of rev, into a
// workspace directory called name.
func (m *Materializer) CheckoutTopLevel(ctx context.Context, name, path, rev string) error {
	name = strings.Trim(name, "/")
	path = strings.Trim(path, "/")
	if path == "" {
		path = name
	}
	dest := m.Path(name)
	err := m.converge(ctx, "checkout", path, dest, rev, func(ctx context.Context) error {
		return m.repo.Checkout(ctx, path, dest, rev)
	})
	if err != nil {
		return err
	}
	m.subtrees = append(m.subtrees, &Subtree{Name: name, FirstRevision: rev, CurrentRevision: rev})
	return nil
}

// Advance brings relPath to rev. Hierarchical repositories update every
// subtree that owns relPath and is not already at rev; the others check out
// the single file.
func (m *Materializer) Advance(ctx context.Context, relPath, rev string) error {
	relPath = strings.TrimLeft(relPath, "/")
	if !m.repo.Type().IsHierarchical() {
		dest := m.Path(relPath)
		return m.converge(ctx, "checkout", relPath, dest, rev, func(ctx context.Context) error {
			return m.repo.Checkout(ctx, relPath, dest, rev)
		})
	}

	var firstErr error
	for _, s := range m.subtrees {
		if !owns(s.Name, relPath) || s.CurrentRevision == rev {
			continue
		}
		dest := m.Path(s.Name)
		err := m.converge(ctx, "update", s.Name, dest, rev, func(ctx context.Context) error {
			return m.repo.Update(ctx, dest, rev)
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.CurrentRevision = rev
	}
	return firstErr
}

// owns reports whether the subtree named name contains relPath.
func owns(name, relPath string) bool {
	return relPath == name || strings.HasPrefix(relPath, name+"/")
}

// converge runs do and verifies the result until dest reports rev.
func (m *Materializer) converge(ctx context.Context, op, path, dest, rev string, do func(ctx context.Context) error) error {
	var observed string
	var backendErr error
	attempts, err := Retry(ctx, m.retries, func(attempt int) error {
		if err := do(ctx); err != nil {
			backendErr = err
			return backoff.Permanent(err)
		}
		got, err := m.repo.LastRevision(ctx, dest)
		if err != nil {
			backendErr = err
			return backoff.Permanent(err)
		}
		if got != rev {
			observed = got
			m.logger.Warn(fmt.Sprintf("%s %s@%s failed in try %d: got %s", op, path, rev, attempt, got))
			return fmt.Errorf("revision mismatch: got %s", got)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &MaterializationError{Op: op, Path: path, Rev: rev, Observed: observed, Attempts: attempts, Err: backendErr}
}
