package cmd

import (
	"bytes"
	"testing"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryLocation(t *testing.T) {
	tests := []struct {
		name string
		cfg  contract.Config
		want string
	}{
		{"git uses the clone", contract.Config{VCS: schema.Git, RepoPath: "/src/clone", RepoURI: "https://example.com/repo.git"}, "/src/clone"},
		{"svn uses the uri", contract.Config{VCS: schema.SVN, RepoPath: "/tmp", RepoURI: "svn://host/repo"}, "svn://host/repo"},
		{"cvs uses the root", contract.Config{VCS: schema.CVS, RepoPath: "/tmp", RepoURI: ":pserver:anon@host:/cvsroot"}, ":pserver:anon@host:/cvsroot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repositoryLocation(&tt.cfg))
		})
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute())
	assert.Contains(t, out.String(), "revmetrics CLI")
	assert.Contains(t, out.String(), "Version: dev")
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "status", "show", "runs", "export", "migrate", "mcp", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
