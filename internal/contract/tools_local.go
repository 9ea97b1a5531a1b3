package contract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// LocalToolRunner implements the ToolRunner interface by executing
// programs installed on the local machine.
type LocalToolRunner struct {
	searchPaths []string
}

var _ ToolRunner = &LocalToolRunner{} // Compile-time check

// NewLocalToolRunner creates a runner that looks in searchPaths before $PATH.
func NewLocalToolRunner(searchPaths ...string) *LocalToolRunner {
	var paths []string
	for _, p := range searchPaths {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return &LocalToolRunner{searchPaths: paths}
}

// LookPath implements the ToolRunner interface.
func (r *LocalToolRunner) LookPath(name string) (string, error) {
	for _, dir := range r.searchPaths {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrProgramNotFound, name)
	}
	return path, nil
}

// Run implements the ToolRunner interface.
func (r *LocalToolRunner) Run(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return out, fmt.Errorf("%s exited with code %d: %s", filepath.Base(path), exitErr.ExitCode(), stderr)
	} else if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
