package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	metrics contract.MetricsStore
	runs    contract.RunStore
}

// limitFrom reads the limit argument, falling back to the configured limit.
func (h *toolHandler) limitFrom(request mcp.CallToolRequest) (int, error) {
	limit := request.GetInt("limit", h.baseCfg.Limit)
	if limit < 0 || limit > contract.MaxLimit {
		return 0, fmt.Errorf("limit must be between 0 and %d", contract.MaxLimit)
	}
	return limit, nil
}

func (h *toolHandler) handleGetMetricsStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.metrics.GetStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}
	return jsonResult(status)
}

func (h *toolHandler) handleGetFileMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileID := int64(request.GetInt("file_id", 0))
	if fileID <= 0 {
		return mcp.NewToolResultError("file_id must be a positive tree id"), nil
	}
	limit, err := h.limitFrom(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rows, err := h.metrics.ListMetrics(ctx, fileID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	if rows == nil {
		rows = []schema.MetricRow{}
	}
	return jsonResult(rows)
}

func (h *toolHandler) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := h.limitFrom(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	runs, err := h.runs.ListRuns(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	if runs == nil {
		runs = []schema.RunRecord{}
	}
	return jsonResult(runs)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
