// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the revmetrics MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, metrics contract.MetricsStore, runs contract.RunStore) *server.MCPServer {
	s := server.NewMCPServer(
		"Revision Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		metrics: metrics,
		runs:    runs,
	}

	// --- 1. Tool: get_metrics_status ---
	s.AddTool(mcp.NewTool("get_metrics_status",
		mcp.WithDescription("Summarize the metrics table: row counts, languages and the latest collection run."),
	), h.handleGetMetricsStatus)

	// --- 2. Tool: get_file_metrics ---
	s.AddTool(mcp.NewTool("get_file_metrics",
		mcp.WithDescription("List the measurements of one file across revisions (size, comments, McCabe and Halstead values)."),
		mcp.WithNumber("file_id", mcp.Description("The file's tree id in the history database."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of rows returned (0 for all).")),
	), h.handleGetFileMetrics)

	// --- 3. Tool: list_runs ---
	s.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List recent metric collection runs, newest first."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of runs returned.")),
	), h.handleListRuns)

	return s
}

// StartMCPServer starts the revmetrics MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, metrics contract.MetricsStore, runs contract.RunStore) error {
	s := NewMCPServer(baseCfg, metrics, runs)
	return server.ServeStdio(s)
}
