// Package contract holds the validated runtime configuration shared by the
// CLI commands, the HTTP host and the MCP server.
package contract

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/buffos/revenue-timeline/internal/dataset"
	"github.com/buffos/revenue-timeline/timeline"
)

// Default values for configuration.
const (
	DefaultWidth            = 1400
	DefaultQuality          = 90
	DefaultListenAddr       = ":8080"
	DefaultSessionCacheSize = 64
	MaxSessionCacheSize     = 4096
	DefaultPointerRate      = 60
	DefaultPointerBurst     = 10
)

// OutputFormat is what the render command writes.
type OutputFormat string

// Output formats.
const (
	SVGFormat     OutputFormat = "svg"
	HTMLFormat    OutputFormat = "html"
	PNGFormat     OutputFormat = "png"
	JPEGFormat    OutputFormat = "jpeg"
	ParquetFormat OutputFormat = "parquet"
	JSONFormat    OutputFormat = "json"
)

// ValidOutputFormats lists every accepted OutputFormat.
var ValidOutputFormats = map[OutputFormat]struct{}{
	SVGFormat:     {},
	HTMLFormat:    {},
	PNGFormat:     {},
	JPEGFormat:    {},
	ParquetFormat: {},
	JSONFormat:    {},
}

// Config holds the final, validated configuration.
type Config struct {
	Source dataset.Source

	Width      float64
	Format     OutputFormat
	OutputFile string
	Quality    int // JPEG only
	Highlight  *int
	Selection  *timeline.SelectionRange

	ListenAddr       string
	SessionCacheSize int
	CORSOrigins      []string
	PointerRate      float64 // events per second per session
	PointerBurst     int

	UseColors bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// Set from positional args, so no tag.
	DataPath string

	Kind          string `mapstructure:"kind"`
	Sheet         string `mapstructure:"sheet"`
	YearColumn    string `mapstructure:"year-column"`
	RevenueColumn string `mapstructure:"revenue-column"`
	TitleColumn   string `mapstructure:"title-column"`

	DBDriver  string `mapstructure:"db-driver"`
	DBConnect string `mapstructure:"db-connect"`
	Table     string `mapstructure:"table"`

	Width      float64 `mapstructure:"width"`
	Format     string  `mapstructure:"format"`
	OutputFile string  `mapstructure:"output-file"`
	Quality    int     `mapstructure:"quality"`
	Highlight  int     `mapstructure:"highlight"`
	Select     string  `mapstructure:"select"`

	Listen           string  `mapstructure:"listen"`
	SessionCacheSize int     `mapstructure:"session-cache-size"`
	CORSOrigins      string  `mapstructure:"cors-origins"`
	PointerRate      float64 `mapstructure:"pointer-rate"`
	PointerBurst     int     `mapstructure:"pointer-burst"`

	Color string `mapstructure:"color"`
}

// ProcessAndValidate reads input and populates cfg.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateRenderInputs(cfg, input); err != nil {
		return err
	}
	if err := processSource(cfg, input); err != nil {
		return err
	}
	if err := validateServerInputs(cfg, input); err != nil {
		return err
	}

	colors, err := ParseColorMode(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors
	return nil
}

func validateRenderInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile

	if math.IsNaN(input.Width) || input.Width <= 0 {
		return fmt.Errorf("width must be greater than 0 (received %v)", input.Width)
	}
	cfg.Width = input.Width

	cfg.Format = OutputFormat(strings.ToLower(input.Format))
	if cfg.Format == "jpg" {
		cfg.Format = JPEGFormat
	}
	if cfg.Format == "" {
		cfg.Format = SVGFormat
	}
	if _, ok := ValidOutputFormats[cfg.Format]; !ok {
		return fmt.Errorf("invalid format '%s'. must be svg, html, png, jpeg, parquet, json", input.Format)
	}

	if input.Quality < 1 || input.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100 (received %d)", input.Quality)
	}
	cfg.Quality = input.Quality

	cfg.Highlight = nil
	if input.Highlight != 0 {
		y := input.Highlight
		cfg.Highlight = &y
	}

	sel, err := ParseSelection(input.Select)
	if err != nil {
		return err
	}
	cfg.Selection = sel
	return nil
}

// ParseSelection parses "START:END" year ranges. Empty input means no
// selection. The bounds may be given in either order.
func ParseSelection(s string) (*timeline.SelectionRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("invalid selection %q: expected START:END", s)
	}
	start, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid selection start %q: %w", lo, err)
	}
	end, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid selection end %q: %w", hi, err)
	}
	if start == end {
		return nil, fmt.Errorf("invalid selection %q: range is empty", s)
	}
	if start > end {
		start, end = end, start
	}
	return &timeline.SelectionRange{Start: start, End: end}, nil
}

func processSource(cfg *Config, input *ConfigRawInput) error {
	src := dataset.Source{
		Kind:  dataset.Kind(strings.ToLower(input.Kind)),
		Path:  input.DataPath,
		Sheet: input.Sheet,
		Columns: dataset.Columns{
			Year:    input.YearColumn,
			Revenue: input.RevenueColumn,
			Title:   input.TitleColumn,
		},
		DSN:   input.DBConnect,
		Table: input.Table,
	}

	if input.DBDriver != "" {
		driver, err := dataset.ParseDriver(input.DBDriver)
		if err != nil {
			return err
		}
		src.Driver = driver
	}

	if src.Path == "" && src.Driver == "" {
		return fmt.Errorf("a data file or --db-driver is required")
	}

	resolved, err := src.Resolve()
	if err != nil {
		return err
	}
	if resolved.Kind == dataset.SQLKind {
		if err := dataset.ValidateTableName(resolved.Table); err != nil {
			return err
		}
		if err := ValidateDatabaseConnectionString(resolved.Driver, resolved.DSN); err != nil {
			return err
		}
	}
	cfg.Source = resolved
	return nil
}

// ValidateDatabaseConnectionString performs shallow checks on a DSN so
// configuration mistakes surface before a connection attempt.
func ValidateDatabaseConnectionString(driver dataset.Driver, connStr string) error {
	if connStr == "" {
		return fmt.Errorf("db-connect is required when using %s driver", driver)
	}
	switch driver {
	case dataset.MySQLDriver:
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case dataset.PostgresDriver:
		if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
			return nil
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter or be a postgres:// URL")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

func validateServerInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.ListenAddr = input.Listen
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	if input.SessionCacheSize <= 0 || input.SessionCacheSize > MaxSessionCacheSize {
		return fmt.Errorf("session-cache-size must be greater than 0 and cannot exceed %d (received %d)", MaxSessionCacheSize, input.SessionCacheSize)
	}
	cfg.SessionCacheSize = input.SessionCacheSize

	if input.PointerRate <= 0 {
		return fmt.Errorf("pointer-rate must be greater than 0 (received %v)", input.PointerRate)
	}
	cfg.PointerRate = input.PointerRate
	if input.PointerBurst <= 0 {
		return fmt.Errorf("pointer-burst must be greater than 0 (received %d)", input.PointerBurst)
	}
	cfg.PointerBurst = input.PointerBurst

	cfg.CORSOrigins = nil
	for o := range strings.SplitSeq(input.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Highlight != nil {
		h := *c.Highlight
		clone.Highlight = &h
	}
	if c.Selection != nil {
		s := *c.Selection
		clone.Selection = &s
	}
	clone.CORSOrigins = append([]string(nil), c.CORSOrigins...)
	return &clone
}
