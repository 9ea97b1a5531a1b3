package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/revmetrics/schema"
)

// NewRepository creates the backend for the given version control system.
// For Git, location is a local clone; for SVN and CVS it is the repository root.
func NewRepository(vcs schema.VCSType, location string) (Repository, error) {
	switch vcs {
	case schema.SVN:
		return NewSVNRepository(location), nil
	case schema.Git:
		return NewGitRepository(location), nil
	case schema.CVS:
		return NewCVSRepository(location), nil
	default:
		return nil, fmt.Errorf("unsupported version control system: %s", vcs)
	}
}

// DetectVCS guesses the version control system from a repository location.
func DetectVCS(location string) (schema.VCSType, error) {
	switch {
	case strings.HasPrefix(location, "svn://"), strings.HasPrefix(location, "svn+ssh://"):
		return schema.SVN, nil
	case strings.HasPrefix(location, ":pserver:"), strings.HasPrefix(location, ":ext:"):
		return schema.CVS, nil
	case strings.HasSuffix(location, ".git"):
		return schema.Git, nil
	}

	markers := []struct {
		name string
		vcs  schema.VCSType
	}{
		{".git", schema.Git},
		{".svn", schema.SVN},
		{"CVS", schema.CVS},
		{"CVSROOT", schema.CVS},
	}
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(location, m.name)); err == nil {
			return m.vcs, nil
		}
	}
	return "", fmt.Errorf("cannot detect version control system for %q; set --vcs explicitly", location)
}
