// Package dataset loads movie records for the timeline from files and
// SQL databases.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/buffos/revenue-timeline/timeline"
)

// Kind identifies the format of a data source.
type Kind string

// Supported source kinds.
const (
	JSONKind    Kind = "json"
	CSVKind     Kind = "csv"
	ParquetKind Kind = "parquet"
	XLSXKind    Kind = "xlsx"
	SQLKind     Kind = "sql"
)

// ValidKinds lists every kind Load understands.
var ValidKinds = map[Kind]struct{}{
	JSONKind:    {},
	CSVKind:     {},
	ParquetKind: {},
	XLSXKind:    {},
	SQLKind:     {},
}

var (
	// ErrUnsupportedSource is returned when a source kind, extension or
	// driver is not recognised.
	ErrUnsupportedSource = errors.New("unsupported data source")
	// ErrInvalidTable is returned for table names that are not plain SQL
	// identifiers.
	ErrInvalidTable = errors.New("invalid table name")
	// ErrMissingColumn is returned when a tabular file lacks the year or
	// revenue column.
	ErrMissingColumn = errors.New("missing column")
)

// Columns names the header cells of tabular sources.
type Columns struct {
	Year    string
	Revenue string
	Title   string
}

// DefaultColumns matches the IMDB top-1000 export the dashboard ships with.
var DefaultColumns = Columns{
	Year:    "Released_Year",
	Revenue: "Gross",
	Title:   "Series_Title",
}

func (c Columns) withDefaults() Columns {
	if c.Year == "" {
		c.Year = DefaultColumns.Year
	}
	if c.Revenue == "" {
		c.Revenue = DefaultColumns.Revenue
	}
	if c.Title == "" {
		c.Title = DefaultColumns.Title
	}
	return c
}

// Source describes where records come from. File sources use Path; SQL
// sources use Driver, DSN and Table.
type Source struct {
	Kind    Kind
	Path    string
	Columns Columns
	Sheet   string // xlsx only; empty means the first sheet

	Driver Driver
	DSN    string
	Table  string
}

// DetectKind maps a file extension to a Kind.
func DetectKind(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSONKind, nil
	case ".csv":
		return CSVKind, nil
	case ".parquet":
		return ParquetKind, nil
	case ".xlsx", ".xlsm":
		return XLSXKind, nil
	case ".db", ".sqlite", ".sqlite3":
		return SQLKind, nil
	}
	return "", fmt.Errorf("%w: cannot infer format of %q", ErrUnsupportedSource, path)
}

// Resolve fills in the kind from the path extension when it is not set.
// A bare SQLite file path becomes a SQL source with the sqlite driver.
func (s Source) Resolve() (Source, error) {
	if s.Kind == "" {
		if s.Driver != "" {
			s.Kind = SQLKind
		} else {
			k, err := DetectKind(s.Path)
			if err != nil {
				return s, err
			}
			s.Kind = k
		}
	}
	if _, ok := ValidKinds[s.Kind]; !ok {
		return s, fmt.Errorf("%w: kind %q", ErrUnsupportedSource, s.Kind)
	}
	if s.Kind == SQLKind {
		if s.Driver == "" {
			s.Driver = SQLiteDriver
		}
		if s.DSN == "" {
			s.DSN = s.Path
		}
		if s.Table == "" {
			s.Table = DefaultTable
		}
	}
	s.Columns = s.Columns.withDefaults()
	return s, nil
}

// Load reads every record from src.
func Load(ctx context.Context, src Source) ([]timeline.Record, error) {
	src, err := src.Resolve()
	if err != nil {
		return nil, err
	}

	var records []timeline.Record
	switch src.Kind {
	case JSONKind:
		records, err = ReadJSONFile(src.Path)
	case CSVKind:
		records, err = ReadCSVFile(src.Path, src.Columns)
	case ParquetKind:
		records, err = ReadParquetFile(src.Path)
	case XLSXKind:
		records, err = ReadXLSXFile(src.Path, src.Sheet, src.Columns)
	case SQLKind:
		records, err = LoadSQL(ctx, src.Driver, src.DSN, src.Table)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s source: %w", src.Kind, err)
	}
	return records, nil
}
