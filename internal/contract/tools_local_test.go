package contract

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalToolRunner_LookPath(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "kdsi")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\necho 1 2 3 4 5\n"), 0o755))
	plain := filepath.Join(dir, "halstead")
	require.NoError(t, os.WriteFile(plain, []byte("not executable"), 0o644))

	runner := NewLocalToolRunner("", dir)

	t.Run("search path wins", func(t *testing.T) {
		path, err := runner.LookPath("kdsi")
		require.NoError(t, err)
		assert.Equal(t, tool, path)
	})

	t.Run("non-executable file is ignored", func(t *testing.T) {
		assert.False(t, isExecutable(plain))
		assert.False(t, isExecutable(dir))
	})

	t.Run("missing program", func(t *testing.T) {
		_, err := runner.LookPath("revmetrics-missing-tool")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrProgramNotFound)
	})
}

func TestLocalToolRunner_Run(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("sh not found in PATH: %v", err)
	}
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok")
	require.NoError(t, os.WriteFile(ok, []byte("#!/bin/sh\necho \"$1\"\n"), 0o755))
	fail := filepath.Join(dir, "fail")
	require.NoError(t, os.WriteFile(fail, []byte("#!/bin/sh\necho broken >&2\nexit 3\n"), 0o755))

	runner := NewLocalToolRunner(dir)
	ctx := context.Background()

	out, err := runner.Run(ctx, ok, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))

	_, err = runner.Run(ctx, fail)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with code 3")
	assert.Contains(t, err.Error(), "broken")
}
