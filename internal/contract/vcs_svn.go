package contract

import (
	"context"
	"strings"

	"github.com/huangsam/revmetrics/schema"
)

// SVNRepository implements the Repository interface by executing the
// local 'svn' binary. Checkouts are whole working copies.
type SVNRepository struct {
	uri string
}

var _ Repository = &SVNRepository{} // Compile-time check

// NewSVNRepository creates a Subversion backend rooted at uri.
func NewSVNRepository(uri string) *SVNRepository {
	return &SVNRepository{uri: strings.TrimRight(uri, "/")}
}

// Type implements the Repository interface.
func (r *SVNRepository) Type() schema.VCSType { return schema.SVN }

// URI implements the Repository interface.
func (r *SVNRepository) URI() string { return r.uri }

// Checkout implements the Repository interface.
func (r *SVNRepository) Checkout(ctx context.Context, path, dest, rev string) error {
	target := r.uri + "/" + strings.TrimLeft(path, "/")
	_, err := r.run(ctx, "checkout", "--quiet", "--non-interactive", "-r", rev, target+"@"+rev, dest)
	return err
}

// Update implements the Repository interface.
func (r *SVNRepository) Update(ctx context.Context, dest, rev string) error {
	_, err := r.run(ctx, "update", "--quiet", "--non-interactive", "-r", rev, dest)
	return err
}

// LastRevision implements the Repository interface.
func (r *SVNRepository) LastRevision(ctx context.Context, dest string) (string, error) {
	out, err := r.run(ctx, "info", "--show-item", "revision", dest)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (r *SVNRepository) run(ctx context.Context, args ...string) ([]byte, error) {
	return runVCS(ctx, "svn", args...)
}
