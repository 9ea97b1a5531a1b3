package contract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/huangsam/revmetrics/schema"
)

// fetchFunc returns the content of path as of rev.
type fetchFunc func(ctx context.Context, path, rev string) ([]byte, error)

// FileRepository implements the Repository interface for systems that
// materialize one file at a time. It remembers which revision was written
// to each destination so that LastRevision can verify a checkout.
type FileRepository struct {
	vcs   schema.VCSType
	uri   string
	fetch fetchFunc

	mu      sync.Mutex
	written map[string]fileCheckout
}

// fileCheckout records what was last written to a destination.
type fileCheckout struct {
	path string
	rev  string
}

var _ Repository = &FileRepository{} // Compile-time check

// NewGitRepository creates a per-file backend over a local Git clone.
func NewGitRepository(repoPath string) *FileRepository {
	return &FileRepository{
		vcs: schema.Git,
		uri: repoPath,
		fetch: func(ctx context.Context, path, rev string) ([]byte, error) {
			return runVCS(ctx, "git", "-C", repoPath, "show", rev+":"+strings.TrimLeft(path, "/"))
		},
		written: make(map[string]fileCheckout),
	}
}

// NewCVSRepository creates a per-file backend over a CVS root.
func NewCVSRepository(root string) *FileRepository {
	return &FileRepository{
		vcs: schema.CVS,
		uri: root,
		fetch: func(ctx context.Context, path, rev string) ([]byte, error) {
			return runVCS(ctx, "cvs", "-Q", "-d", root, "checkout", "-p", "-r", rev, strings.TrimLeft(path, "/"))
		},
		written: make(map[string]fileCheckout),
	}
}

// Type implements the Repository interface.
func (r *FileRepository) Type() schema.VCSType { return r.vcs }

// URI implements the Repository interface.
func (r *FileRepository) URI() string { return r.uri }

// Checkout implements the Repository interface.
func (r *FileRepository) Checkout(ctx context.Context, path, dest, rev string) error {
	content, err := r.fetch(ctx, path, rev)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create checkout directory: %w", err)
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	r.mu.Lock()
	r.written[dest] = fileCheckout{path: path, rev: rev}
	r.mu.Unlock()
	return nil
}

// Update implements the Repository interface. A per-file destination is
// checked out again from the path that was last written to it.
func (r *FileRepository) Update(ctx context.Context, dest, rev string) error {
	r.mu.Lock()
	prev, ok := r.written[dest]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("no checkout recorded at %s", dest)
	}
	return r.Checkout(ctx, prev.path, dest, rev)
}

// LastRevision implements the Repository interface.
func (r *FileRepository) LastRevision(_ context.Context, dest string) (string, error) {
	if _, err := os.Stat(dest); err != nil {
		return "", fmt.Errorf("no content at %s: %w", dest, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.written[dest]
	if !ok {
		return "", fmt.Errorf("no checkout recorded at %s", dest)
	}
	return prev.rev, nil
}

func runVCS(ctx context.Context, program string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("%s command failed: %s", program, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("%s command failed: %w. Ensure it is installed and available on your PATH", program, err)
	}
	return out, nil
}
