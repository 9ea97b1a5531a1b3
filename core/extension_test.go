package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/revmetrics/internal/persist"
	"github.com/huangsam/revmetrics/schema"
)

func TestMetricsExtensionRegistered(t *testing.T) {
	ext, err := GetExtension(MetricsExtension)
	require.NoError(t, err)
	assert.Equal(t, "Metrics", ext.Name)
	assert.Equal(t, []string{"FilePaths", "FileTypes"}, ext.Deps)
	assert.Contains(t, ExtensionNames(), MetricsExtension)
}

func TestRegisterExtension(t *testing.T) {
	assert.Error(t, RegisterExtension(Extension{}))
	assert.Error(t, RegisterExtension(Extension{Name: MetricsExtension}))

	require.NoError(t, RegisterExtension(Extension{Name: "TestOnlyExtension"}))
	t.Cleanup(func() {
		extensionsMu.Lock()
		delete(extensions, "TestOnlyExtension")
		extensionsMu.Unlock()
	})
	assert.Contains(t, ExtensionNames(), "TestOnlyExtension")
}

func TestGetExtensionUnknown(t *testing.T) {
	_, err := GetExtension("Blame")
	assert.ErrorContains(t, err, "unknown extension")
}

func TestMetricsExtensionRun(t *testing.T) {
	repo := newFakeRepo(schema.Git)
	repo.add("a.py", 1, lines(2))
	store := &persist.MockMetricsStore{}
	store.On("CreateTable", mock.Anything).Return(nil)
	store.On("InsertMetrics", mock.Anything, mock.Anything).Return(nil)

	ext, err := GetExtension(MetricsExtension)
	require.NoError(t, err)

	summary, err := ext.Run(context.Background(), testConfig(t), Deps{
		Repo:    repo,
		History: &fakeHistory{repoID: 1, items: []schema.WorkItem{{Revision: "1", Path: "a.py", CommitID: 1, FileID: 1}}},
		Store:   store,
		Factory: &stubFactory{},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Measured)
}
