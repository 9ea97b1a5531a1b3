package cmd

import (
	"github.com/huangsam/revmetrics/internal/mcp"
	"github.com/huangsam/revmetrics/internal/persist"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the revmetrics MCP server",
	Long:    `Launch an MCP server on stdio that lets AI agents query collected measurements and run history via standard tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, persist.Manager.Metrics(), persist.Manager.Runs())
	},
}
