package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/buffos/revenue-timeline/timeline"
)

// ReadCSV reads a header row followed by data rows. The year and revenue
// columns are required; the title column is optional. Cells that do not
// parse as numbers become NaN and are later dropped by aggregation.
func ReadCSV(r io.Reader, cols Columns) ([]timeline.Record, error) {
	cols = cols.withDefaults()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	idx, err := columnIndexes(header, cols)
	if err != nil {
		return nil, err
	}

	var records []timeline.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}
		records = append(records, recordFromRow(row, idx))
	}
	return records, nil
}

// ReadCSVFile is ReadCSV over a file path.
func ReadCSVFile(path string, cols Columns) ([]timeline.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f, cols)
}

// rowIndexes holds header positions; title is -1 when absent.
type rowIndexes struct {
	year, revenue, title int
}

func columnIndexes(header []string, cols Columns) (rowIndexes, error) {
	idx := rowIndexes{year: -1, revenue: -1, title: -1}
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case cols.Year:
			idx.year = i
		case cols.Revenue:
			idx.revenue = i
		case cols.Title:
			idx.title = i
		}
	}
	if idx.year < 0 {
		return idx, fmt.Errorf("%w: %q", ErrMissingColumn, cols.Year)
	}
	if idx.revenue < 0 {
		return idx, fmt.Errorf("%w: %q", ErrMissingColumn, cols.Revenue)
	}
	return idx, nil
}

func recordFromRow(row []string, idx rowIndexes) timeline.Record {
	rec := timeline.Record{
		ReleaseYear: parseNumber(cell(row, idx.year)),
		Gross:       parseNumber(cell(row, idx.revenue)),
	}
	if idx.title >= 0 {
		rec.Title = strings.TrimSpace(cell(row, idx.title))
	}
	return rec
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseNumber accepts plain numbers and currency strings like "$1,234.5".
// Anything else is NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
