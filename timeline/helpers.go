package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --- Helper Functions for Effective Styles ---

func getString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// effectiveStyle fills every unset field of s from DefaultStyle.
func effectiveStyle(s Style) Style {
	d := DefaultStyle
	return Style{
		FontFamily:   getString(s.FontFamily, d.FontFamily),
		TextColor:    getString(s.TextColor, d.TextColor),
		AxisColor:    getString(s.AxisColor, d.AxisColor),
		LineColor:    getString(s.LineColor, d.LineColor),
		AccentColor:  getString(s.AccentColor, d.AccentColor),
		Background:   getString(s.Background, d.Background),
		BrushFill:    getString(s.BrushFill, d.BrushFill),
		BrushStroke:  getString(s.BrushStroke, d.BrushStroke),
		TitleText:    getString(s.TitleText, d.TitleText),
		XAxisLabel:   getString(s.XAxisLabel, d.XAxisLabel),
		LineWidth:    getInt(s.LineWidth, d.LineWidth),
		HairlineType: getString(s.HairlineType, d.HairlineType),
	}
}

func getStrokeDashArray(styleType string, width int) string {
	if width <= 0 {
		width = 1
	}
	switch styleType {
	case "dotted":
		return fmt.Sprintf(` stroke-dasharray="%d %d"`, width, width*2)
	case "dashed":
		return fmt.Sprintf(` stroke-dasharray="%d %d"`, width*3, width*3)
	}
	return ""
}

// --- XML Escaping ---

func escapeXML(s string) string {
	var buf strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// --- Number Formatting ---

// fmtCoord prints a pixel coordinate with at most two decimals and no
// trailing zeros, keeping the SVG output stable across platforms.
func fmtCoord(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	s := strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return s
}

// formatYear prints an x-axis tick.
func formatYear(v float64) string {
	return strconv.Itoa(int(math.Round(v)))
}

// formatRevenue prints a y-axis tick in millions of dollars. Whole millions
// print without decimals, anything else with one.
func formatRevenue(v float64) string {
	m := v / 1e6
	if m == math.Trunc(m) {
		return fmt.Sprintf("$%.0fM", m)
	}
	return fmt.Sprintf("$%.1fM", m)
}

// estimateTextSVGWidth is a rough width estimate for centred labels:
// about 0.6em per character for proportional fonts.
func estimateTextSVGWidth(text string, fontSize int) float64 {
	if fontSize <= 0 || text == "" {
		return 0
	}
	return float64(len([]rune(text))) * float64(fontSize) * 0.6
}
