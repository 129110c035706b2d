package cmd

import (
	"github.com/buffos/revenue-timeline/internal/contract"
	"github.com/buffos/revenue-timeline/internal/export"
	"github.com/buffos/revenue-timeline/timeline"
	"github.com/spf13/cobra"
)

const fallbackTerminalWidth = 100

// summaryCmd prints the yearly averages as a table.
var summaryCmd = &cobra.Command{
	Use:     "summary [data-file]",
	Short:   "Print the yearly averages as a table with a share bar per year.",
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		records, err := loadRecords(rootCtx)
		if err != nil {
			return err
		}
		points := timeline.Aggregate(records)

		if contract.IsTerminal() {
			_, _ = contract.TitleColor.Fprintln(cmd.OutOrStdout(), "Average Movie Revenue by Year")
		}
		return export.WriteSummary(cmd.OutOrStdout(), points, export.SummaryOptions{
			Width:     contract.TerminalWidth(fallbackTerminalWidth),
			Selection: cfg.Selection,
		})
	},
}
