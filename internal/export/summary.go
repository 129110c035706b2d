package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/buffos/revenue-timeline/timeline"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// SummaryOptions configures WriteSummary.
type SummaryOptions struct {
	// Width is the terminal width used to size the bar column.
	Width int
	// Selection marks the whole years it covers, see SelectionRange.Years.
	Selection *timeline.SelectionRange
}

const (
	minBarWidth = 10
	maxBarWidth = 60
	// Columns other than the bar take roughly this many cells.
	summaryFixedWidth = 50
)

// WriteSummary prints one row per year: average revenue, share of the
// best year and a proportional bar.
func WriteSummary(w io.Writer, points []timeline.YearPoint, opts SummaryOptions) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Year", "Average Revenue", "Share", "Trend"}
	if opts.Selection != nil {
		headers = append(headers, "Selected")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	maxRev := 0.0
	for _, p := range points {
		maxRev = max(maxRev, p.AverageRevenue)
	}
	barWidth := min(max(opts.Width-summaryFixedWidth, minBarWidth), maxBarWidth)

	first, last := 0, -1
	if opts.Selection != nil {
		first, last, _ = opts.Selection.Years()
	}

	var data [][]string
	for _, p := range points {
		share := 0.0
		if maxRev > 0 {
			share = p.AverageRevenue / maxRev
		}
		row := []string{
			fmt.Sprintf("%d", p.Year),
			fmt.Sprintf("$%.2fM", p.AverageRevenue/1e6),
			fmt.Sprintf("%.1f%%", share*100),
			bar(share, barWidth),
		}
		if opts.Selection != nil {
			mark := ""
			if p.Year >= first && p.Year <= last {
				mark = "●"
			}
			row = append(row, mark)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func bar(share float64, width int) string {
	n := int(share*float64(width) + 0.5)
	return strings.Repeat("█", n) + strings.Repeat(" ", width-n)
}
