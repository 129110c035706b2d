package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/buffos/revenue-timeline/timeline"
	"github.com/parquet-go/parquet-go"
)

// ReadParquetFile reads timeline.Record rows (title, release_year, gross).
func ReadParquetFile(path string) ([]timeline.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[timeline.Record](file)
	defer func() { _ = reader.Close() }()

	records := make([]timeline.Record, reader.NumRows())
	n, err := reader.Read(records)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return records[:n], nil
}

// WriteParquetFile writes records with the same schema ReadParquetFile
// expects.
func WriteParquetFile(records []timeline.Record, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[timeline.Record](file)
	if _, err := writer.Write(records); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return writer.Close()
}
