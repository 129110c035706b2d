package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/buffos/revenue-timeline/timeline"
)

// recordsDocument is the wrapped form {"records": [...]}.
type recordsDocument struct {
	Records []timeline.Record `json:"records"`
}

// ReadJSON decodes either {"records": [...]} or a bare array of records.
func ReadJSON(r io.Reader) ([]timeline.Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading JSON: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	if raw[0] == '[' {
		var records []timeline.Record
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("error unmarshalling record array: %w", err)
		}
		return records, nil
	}

	var doc recordsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("error unmarshalling records document: %w", err)
	}
	return doc.Records, nil
}

// ReadJSONFile is ReadJSON over a file path.
func ReadJSONFile(path string) ([]timeline.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadJSON(f)
}
