package cmd

import (
	"github.com/buffos/revenue-timeline/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [data-file]",
	Short: "Start the Revenue Timeline MCP server",
	Long:  `Launch an MCP server that lets AI agents query the yearly series and render the chart via standard tools.`,
	Args:  cobra.MaximumNArgs(1),
	// Status lines go to stderr; stdout carries the protocol.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		records, err := loadRecords(rootCtx)
		if err != nil {
			return err
		}
		return mcp.StartMCPServer(rootCtx, cfg, records)
	},
}
