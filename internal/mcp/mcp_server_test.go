package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/huangsam/revmetrics/internal/contract"
	mcp_internal "github.com/huangsam/revmetrics/internal/mcp"
	"github.com/huangsam/revmetrics/internal/persist"
	"github.com/huangsam/revmetrics/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, metrics *persist.MockMetricsStore, runs *persist.MockRunStore, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(&contract.Config{Limit: contract.DefaultLimit}, metrics, runs)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestGetMetricsStatus(t *testing.T) {
	metrics := &persist.MockMetricsStore{}
	metrics.On("GetStatus", mock.Anything).Return(schema.MetricsStatus{Backend: "sqlite", Connected: true, TotalRows: 42}, nil)

	res := callTool(t, metrics, &persist.MockRunStore{}, "get_metrics_status", nil)
	require.False(t, res.IsError)

	var status schema.MetricsStatus
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &status))
	assert.Equal(t, int64(42), status.TotalRows)
}

func TestGetFileMetrics(t *testing.T) {
	metrics := &persist.MockMetricsStore{}
	metrics.On("ListMetrics", mock.Anything, int64(3), 5).Return([]schema.MetricRow{
		{ID: 1, FileID: 3, CommitID: 2, Measures: schema.Measures{SLOC: schema.Ptr(12)}},
	}, nil)

	res := callTool(t, metrics, &persist.MockRunStore{}, "get_file_metrics", map[string]any{"file_id": 3.0, "limit": 5.0})
	require.False(t, res.IsError)

	var rows []schema.MetricRow
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 12, *rows[0].SLOC)
}

func TestGetFileMetricsValidation(t *testing.T) {
	t.Run("missing file_id", func(t *testing.T) {
		res := callTool(t, &persist.MockMetricsStore{}, &persist.MockRunStore{}, "get_file_metrics", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "file_id must be a positive tree id")
	})

	t.Run("limit too large", func(t *testing.T) {
		res := callTool(t, &persist.MockMetricsStore{}, &persist.MockRunStore{}, "get_file_metrics", map[string]any{"file_id": 1.0, "limit": 1e9})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "limit must be between")
	})
}

func TestListRuns(t *testing.T) {
	runs := &persist.MockRunStore{}
	runs.On("ListRuns", mock.Anything, contract.DefaultLimit).Return(nil, nil)

	res := callTool(t, &persist.MockMetricsStore{}, runs, "list_runs", nil)
	require.False(t, res.IsError)
	assert.Equal(t, "[]", resultText(res))
}

func TestListRunsStoreError(t *testing.T) {
	runs := &persist.MockRunStore{}
	runs.On("ListRuns", mock.Anything, 2).Return(nil, errors.New("no such table: metrics_runs"))

	res := callTool(t, &persist.MockMetricsStore{}, runs, "list_runs", map[string]any{"limit": 2.0})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "no such table")
}
