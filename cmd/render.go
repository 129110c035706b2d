package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/buffos/revenue-timeline/internal/contract"
	"github.com/buffos/revenue-timeline/internal/export"
	"github.com/buffos/revenue-timeline/timeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// renderCmd writes the chart in one of the export formats.
var renderCmd = &cobra.Command{
	Use:   "render [data-file]",
	Short: "Render the revenue timeline to svg, html, png, jpeg, parquet or json.",
	Long: `Aggregate the records into yearly averages and write the chart.

The --select, --hover and --highlight flags replay those interactions before
the chart is written, so the output shows the brushed range, the hairline
and the pulse marker.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		records, err := loadRecords(rootCtx)
		if err != nil {
			return err
		}
		opts := export.StaticOptions{
			Width:     cfg.Width,
			Selection: cfg.Selection,
			Highlight: cfg.Highlight,
		}
		if y := viper.GetInt("hover"); y != 0 {
			opts.HoverYear = &y
		}
		return writeOutput(cfg.OutputFile, func(w io.Writer) error {
			return render(rootCtx, w, export.StaticChart(records, opts), cfg)
		})
	},
}

// render writes c to w in conf.Format.
func render(ctx context.Context, w io.Writer, c *timeline.Chart, conf *contract.Config) error {
	log.Printf("Generating output for format: %s", conf.Format)

	switch conf.Format {
	case contract.SVGFormat:
		if _, err := io.WriteString(w, c.SVG()); err != nil {
			return fmt.Errorf("failed to write SVG output: %w", err)
		}
	case contract.HTMLFormat:
		if err := export.GenerateHTML(w, c, export.HTMLOptions{}); err != nil {
			return fmt.Errorf("HTML generation failed: %w", err)
		}
	case contract.PNGFormat, contract.JPEGFormat:
		opts := export.ImageOptions{Format: string(conf.Format), Quality: conf.Quality}
		if err := export.GenerateImage(ctx, c.SVG(), opts, w); err != nil {
			return err
		}
	case contract.ParquetFormat:
		if err := export.WriteSeriesParquet(w, c.Points()); err != nil {
			return fmt.Errorf("parquet generation failed: %w", err)
		}
	case contract.JSONFormat:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(c.State()); err != nil {
			return fmt.Errorf("failed to write JSON output: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format '%s'", conf.Format)
	}

	log.Printf("Successfully generated %s output.", strings.ToUpper(string(conf.Format)))
	return nil
}

// writeOutput runs gen against the output file, or stdout when path is
// empty. A file left behind by a failed generation is removed.
func writeOutput(path string, gen func(io.Writer) error) error {
	if path == "" {
		log.Println("Output directed to stdout.")
		return gen(os.Stdout)
	}

	log.Printf("Output directed to file: %s", path)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file '%s': %w", path, err)
	}

	genErr := gen(f)
	if closeErr := f.Close(); closeErr != nil && genErr == nil {
		genErr = fmt.Errorf("error closing output file '%s': %w", path, closeErr)
	}
	if genErr != nil {
		log.Printf("Attempting to remove potentially incomplete file: %s", path)
		if removeErr := os.Remove(path); removeErr != nil {
			log.Printf("Warning: Could not remove output file '%s' after error: %v", path, removeErr)
		}
		return genErr
	}

	log.Printf("Output saved to: %s", path)
	return nil
}
