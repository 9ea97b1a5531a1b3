package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/revmetrics/schema"
)

func readBack[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestMetricStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Metric))
	for _, col := range []string{
		"id", "file_id", "commit_id", "lang", "sloc", "loc", "ncomment", "lcomment", "lblank", "nfunctions",
		"mccabe_max", "mccabe_min", "mccabe_sum", "mccabe_mean", "mccabe_median",
		"halstead_length", "halstead_vol", "halstead_level", "halstead_md",
	} {
		_, ok := s.Lookup(col)
		assert.True(t, ok, "column %s should exist", col)
	}
}

func TestRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Run))
	for _, col := range []string{"id", "repository_uri", "started_at", "ended_at", "duration_ms", "measured", "skipped", "failed", "status"} {
		_, ok := s.Lookup(col)
		assert.True(t, ok, "column %s should exist", col)
	}
}

func TestWriteMetricsParquet(t *testing.T) {
	rows := []schema.MetricRow{
		{ID: 1, FileID: 3, CommitID: 2, Measures: schema.Measures{
			Lang: schema.Ptr("python"), SLOC: schema.Ptr(12), LOC: schema.Ptr(15),
			NFunctions: schema.Ptr(2), McCabeMax: schema.Ptr(4), HalsteadLevel: schema.Ptr(0.25),
		}},
		{ID: 2, FileID: 3, CommitID: 1, Measures: schema.Measures{Lang: schema.Ptr("unknown")}},
	}
	outputPath := filepath.Join(t.TempDir(), "metrics.parquet")
	require.NoError(t, WriteMetricsParquet(ConvertMetricRows(rows), outputPath))

	got := readBack[Metric](t, outputPath)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, "python", *got[0].Lang)
	assert.Equal(t, int32(12), *got[0].SLOC)
	assert.Equal(t, int32(4), *got[0].McCabeMax)
	assert.InDelta(t, 0.25, *got[0].HalsteadLevel, 1e-9)
	assert.Nil(t, got[0].McCabeMin)

	assert.Equal(t, int64(1), got[1].CommitID)
	assert.Nil(t, got[1].SLOC)
	assert.Nil(t, got[1].HalsteadLevel)
}

func TestWriteRunsParquet(t *testing.T) {
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ended := started.Add(2 * time.Second)
	records := []schema.RunRecord{
		{ID: 1, RepositoryURI: "svn://example.org/repo", StartedAt: started, EndedAt: &ended, Measured: 10, Status: schema.RunCompleted},
		{ID: 2, RepositoryURI: "svn://example.org/repo", StartedAt: started, Status: schema.RunRunning},
	}
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteRunsParquet(ConvertRunRecords(records), outputPath))

	got := readBack[Run](t, outputPath)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].DurationMs)
	assert.Equal(t, int64(2000), *got[0].DurationMs)
	require.NotNil(t, got[0].EndedAt)
	assert.WithinDuration(t, ended, *got[0].EndedAt, time.Nanosecond)
	assert.Equal(t, "completed", got[0].Status)
	assert.Nil(t, got[1].EndedAt)
	assert.Nil(t, got[1].DurationMs)
}

func TestWriteParquetEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteMetricsParquet(nil, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Empty(t, readBack[Metric](t, outputPath))
}

func TestWriteParquetInvalidPath(t *testing.T) {
	err := WriteRunsParquet(nil, "/nonexistent/dir/runs.parquet")
	assert.ErrorContains(t, err, "failed to create output file")
}
