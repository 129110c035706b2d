package dataset

import (
	"fmt"

	"github.com/buffos/revenue-timeline/timeline"
	"github.com/xuri/excelize/v2"
)

// ReadXLSXFile reads a worksheet laid out like the CSV export: a header row
// then one movie per row. An empty sheet name selects the first sheet.
func ReadXLSXFile(path, sheet string, cols Columns) ([]timeline.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx, err := columnIndexes(rows[0], cols.withDefaults())
	if err != nil {
		return nil, err
	}
	records := make([]timeline.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, recordFromRow(row, idx))
	}
	return records, nil
}
