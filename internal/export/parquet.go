package export

import (
	"fmt"
	"io"

	"github.com/buffos/revenue-timeline/timeline"
	"github.com/parquet-go/parquet-go"
)

// WriteSeriesParquet writes the aggregated year series (year,
// average_revenue) as a Parquet file.
func WriteSeriesParquet(w io.Writer, points []timeline.YearPoint) error {
	writer := parquet.NewGenericWriter[timeline.YearPoint](w)
	if _, err := writer.Write(points); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write series to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
