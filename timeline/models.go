package timeline

import "math"

// --- Data Structs ---

// Record is a single movie entry as produced by the loading pipeline.
// ReleaseYear is a float so unparsable input can be carried as NaN and
// dropped by Aggregate.
type Record struct {
	Title       string  `json:"title,omitempty" parquet:"title,optional,snappy"`
	ReleaseYear float64 `json:"release_year" parquet:"release_year,snappy"`
	Gross       float64 `json:"gross" parquet:"gross,snappy"`
}

// YearPoint is one aggregated point of the trend line.
type YearPoint struct {
	Year           int     `json:"year" parquet:"year,snappy"`
	AverageRevenue float64 `json:"average_revenue" parquet:"average_revenue,snappy"`
}

// SelectionRange is the year interval under the brush. Both ends are
// inclusive and come straight from pixel inversion, so they are usually
// fractional.
type SelectionRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Years returns the whole years fully covered by the selection: Start is
// rounded up and End rounded down. ok is false when no whole year fits.
func (r SelectionRange) Years() (first, last int, ok bool) {
	first = int(math.Ceil(r.Start - yearEpsilon))
	last = int(math.Floor(r.End + yearEpsilon))
	return first, last, first <= last
}

// yearEpsilon absorbs float noise from pixel round trips (2000 coming back
// as 1999.9999999).
const yearEpsilon = 1e-6

// --- Layout Structs ---

// Margins are the fixed gutters around the plot area, in logical pixels.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Style holds the handful of colours and fonts the chart uses. Zero
// fields fall back to DefaultStyle.
type Style struct {
	FontFamily   string `json:"font_family,omitempty"`
	TextColor    string `json:"text_color,omitempty"`
	AxisColor    string `json:"axis_color,omitempty"`
	LineColor    string `json:"line_color,omitempty"`
	AccentColor  string `json:"accent_color,omitempty"`
	Background   string `json:"background,omitempty"`
	BrushFill    string `json:"brush_fill,omitempty"`
	BrushStroke  string `json:"brush_stroke,omitempty"`
	TitleText    string `json:"title_text,omitempty"`
	XAxisLabel   string `json:"x_axis_label,omitempty"`
	LineWidth    int    `json:"line_width,omitempty"`
	HairlineType string `json:"hairline_type,omitempty"` // "solid", "dashed", "dotted"
}

// DefaultStyle is the dashboard's dark theme.
var DefaultStyle = Style{
	FontFamily:   "Arial, sans-serif",
	TextColor:    "#cccccc",
	AxisColor:    "#888888",
	LineColor:    "#e50914",
	AccentColor:  "#e50914",
	Background:   "#141414",
	BrushFill:    "#777777",
	BrushStroke:  "#ffffff",
	TitleText:    "Average Movie Revenue by Year",
	XAxisLabel:   "Year",
	LineWidth:    2,
	HairlineType: "dashed",
}

// --- Snapshot Structs ---

// Hairline is the hover indicator as currently drawn.
type Hairline struct {
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Label   string  `json:"label"`
	Length  float64 `json:"length"`
}

// Marker is a transient pulse drawn by HighlightYear.
type Marker struct {
	Year int     `json:"year"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// State is a serializable view of a chart, used by hosts that cannot hold
// the chart itself (HTTP sessions, MCP tools) and by tests.
type State struct {
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	XDomain     [2]float64      `json:"x_domain"`
	YDomain     [2]float64      `json:"y_domain"`
	Points      []YearPoint     `json:"points"`
	Brush       BrushState      `json:"brush_state"`
	Selection   *SelectionRange `json:"selection,omitempty"`
	HoveredYear *int            `json:"hovered_year,omitempty"`
	Hairline    Hairline        `json:"hairline"`
	Marker      *Marker         `json:"marker,omitempty"`
}
