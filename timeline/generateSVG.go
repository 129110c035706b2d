package timeline

import (
	"bytes"
	"fmt"
	"math"
)

// Axis and font constants
const (
	xTickCount     = 10
	yTickCount     = 5
	tickSize       = 6.0
	tickPadding    = 3.0
	axisFontSize   = 10
	titleFontSize  = 14
	labelFontSize  = 12
	hairlineFont   = 11
	pulseFontSize  = 12
	pulseMaxRadius = 15.0
)

// tick is one axis tick in plot pixels.
type tick struct {
	Pos   float64
	Label string
}

// scene is everything Render derives from data and scales. Overlays
// (brush, hairline, pulse) are read from live interaction state when
// serializing, so they never go stale between renders.
type scene struct {
	XTicks    []tick
	YTicks    []tick
	TrendPath string
}

func (s scene) empty() bool {
	return s.TrendPath == ""
}

func buildScene(points []YearPoint, x, y LinearScale) scene {
	var s scene
	for _, v := range x.Ticks(xTickCount, 1) {
		s.XTicks = append(s.XTicks, tick{Pos: x.Apply(v), Label: formatYear(v)})
	}
	for _, v := range y.Ticks(yTickCount, 0) {
		s.YTicks = append(s.YTicks, tick{Pos: y.Apply(v), Label: formatRevenue(v)})
	}
	pts := make([]point, len(points))
	for i, p := range points {
		pts[i] = point{X: x.Apply(float64(p.Year)), Y: y.Apply(p.AverageRevenue)}
	}
	s.TrendPath = pathData(pts)
	return s
}

// svgParams is everything needed to serialize a chart.
type svgParams struct {
	Layout   chartLayout
	Style    Style
	Scene    scene
	Brush    brush
	Hairline Hairline
	Marker   *Marker
}

type axisParams struct {
	Ticks  []tick
	Length float64
	Offset float64 // translate along the cross axis
	Color  string
	Style  Style
}

type brushParams struct {
	Brush  brush
	Height float64
	Style  Style
}

type hairlineParams struct {
	Hairline  Hairline
	PlotWidth float64
	Height    float64
	Style     Style
}

type pulseParams struct {
	Marker Marker
	Style  Style
}

// generateSVG writes the chart as a standalone SVG document.
func generateSVG(p svgParams) string {
	var svgBody bytes.Buffer
	l := p.Layout
	style := effectiveStyle(p.Style)

	drawTitle(&svgBody, l, style)

	if !p.Scene.empty() {
		drawXAxis(&svgBody, axisParams{Ticks: p.Scene.XTicks, Length: l.width, Offset: l.height, Color: style.AxisColor, Style: style})
		drawYAxis(&svgBody, axisParams{Ticks: p.Scene.YTicks, Length: l.height, Color: style.AxisColor, Style: style})
		drawTrendLine(&svgBody, p.Scene.TrendPath, style)
	}

	drawBrush(&svgBody, brushParams{Brush: p.Brush, Height: l.height, Style: style})
	drawHairline(&svgBody, hairlineParams{Hairline: p.Hairline, PlotWidth: l.width, Height: l.height, Style: style})
	fmt.Fprintf(&svgBody, `<rect class="timeline-hover-area" x="0" y="0" width="%s" height="%s" fill="transparent" pointer-events="all"/>`+"\n",
		fmtCoord(l.width), fmtCoord(l.height))

	if p.Marker != nil {
		drawPulse(&svgBody, pulseParams{Marker: *p.Marker, Style: style})
	}

	return assembleFinalSVG(svgBody, l, style)
}

func drawTitle(svg *bytes.Buffer, l chartLayout, style Style) {
	fmt.Fprintf(svg, `<text class="slider-title" x="%s" y="5" text-anchor="middle" font-size="%d" font-weight="500" fill="%s">%s</text>`+"\n",
		fmtCoord(l.width/2), titleFontSize, escapeXML(style.TextColor), escapeXML(style.TitleText))
	// The axis label sits in the left gutter, level with the year ticks.
	fmt.Fprintf(svg, `<text class="axis-label" x="%s" y="%s" text-anchor="end" font-size="%d" font-weight="500" fill="%s">%s</text>`+"\n",
		fmtCoord(-tickSize-tickPadding), fmtCoord(l.height+tickSize+tickPadding+labelFontSize*0.71),
		labelFontSize, escapeXML(style.TextColor), escapeXML(style.XAxisLabel))
}

func drawXAxis(svg *bytes.Buffer, params axisParams) {
	color := escapeXML(params.Color)
	fmt.Fprintf(svg, `<g class="axis x-axis" transform="translate(0,%s)" font-size="%d" text-anchor="middle">`+"\n",
		fmtCoord(params.Offset), axisFontSize)
	fmt.Fprintf(svg, `  <path class="domain" stroke="%s" fill="none" d="M0,%sV0H%sV%s"/>`+"\n",
		color, fmtCoord(tickSize), fmtCoord(params.Length), fmtCoord(tickSize))
	for _, t := range params.Ticks {
		fmt.Fprintf(svg, `  <g class="tick" transform="translate(%s,0)"><line stroke="%s" y2="%s"/><text fill="%s" y="%s" dy="0.71em">%s</text></g>`+"\n",
			fmtCoord(t.Pos), color, fmtCoord(tickSize), escapeXML(params.Style.TextColor), fmtCoord(tickSize+tickPadding), escapeXML(t.Label))
	}
	svg.WriteString("</g>\n")
}

func drawYAxis(svg *bytes.Buffer, params axisParams) {
	color := escapeXML(params.Color)
	fmt.Fprintf(svg, `<g class="axis y-axis" font-size="%d" text-anchor="end">`+"\n", axisFontSize)
	fmt.Fprintf(svg, `  <path class="domain" stroke="%s" fill="none" d="M-%s,%sH0V0H-%s"/>`+"\n",
		color, fmtCoord(tickSize), fmtCoord(params.Length), fmtCoord(tickSize))
	for _, t := range params.Ticks {
		fmt.Fprintf(svg, `  <g class="tick" transform="translate(0,%s)"><line stroke="%s" x2="-%s"/><text fill="%s" x="-%s" dy="0.32em">%s</text></g>`+"\n",
			fmtCoord(t.Pos), color, fmtCoord(tickSize), escapeXML(params.Style.TextColor), fmtCoord(tickSize+tickPadding), escapeXML(t.Label))
	}
	svg.WriteString("</g>\n")
}

func drawTrendLine(svg *bytes.Buffer, d string, style Style) {
	fmt.Fprintf(svg, `<path class="trend-line" d="%s" fill="none" stroke="%s" stroke-width="%d" stroke-linejoin="round"/>`+"\n",
		d, escapeXML(style.LineColor), style.LineWidth)
}

func drawBrush(svg *bytes.Buffer, params brushParams) {
	b := params.Brush
	h := params.Height - brushTop
	svg.WriteString(`<g class="brush" fill="none" pointer-events="all">` + "\n")
	fmt.Fprintf(svg, `  <rect class="overlay" x="0" y="%s" width="%s" height="%s" cursor="crosshair"/>`+"\n",
		fmtCoord(brushTop), fmtCoord(b.width), fmtCoord(h))
	if b.state != BrushIdle && !b.empty() {
		w := b.sel[1] - b.sel[0]
		fmt.Fprintf(svg, `  <rect class="selection" x="%s" y="%s" width="%s" height="%s" fill="%s" fill-opacity="0.3" stroke="%s" cursor="move"/>`+"\n",
			fmtCoord(b.sel[0]), fmtCoord(brushTop), fmtCoord(w), fmtCoord(h),
			escapeXML(params.Style.BrushFill), escapeXML(params.Style.BrushStroke))
		for _, edge := range []struct {
			name string
			x    float64
		}{{"w", b.sel[0]}, {"e", b.sel[1]}} {
			fmt.Fprintf(svg, `  <rect class="handle handle--%s" x="%s" y="%s" width="6" height="%s" cursor="ew-resize"/>`+"\n",
				edge.name, fmtCoord(edge.x-3), fmtCoord(brushTop), fmtCoord(h))
		}
	}
	svg.WriteString("</g>\n")
}

func drawHairline(svg *bytes.Buffer, params hairlineParams) {
	hl := params.Hairline
	opacity := 0
	if hl.Visible {
		opacity = 1
	}
	color := escapeXML(params.Style.AccentColor)

	// Keep the label inside the plot when hovering near either edge.
	labelX := 0.0
	half := estimateTextSVGWidth(hl.Label, hairlineFont) / 2
	if hl.X-half < 0 {
		labelX = half - hl.X
	} else if hl.X+half > params.PlotWidth {
		labelX = params.PlotWidth - half - hl.X
	}

	fmt.Fprintf(svg, `<g class="timeline-hairline" transform="translate(%s,0)" opacity="%d" pointer-events="none">`+"\n",
		fmtCoord(hl.X), opacity)
	fmt.Fprintf(svg, `  <line y1="%s" y2="%s" stroke="%s" stroke-width="1"%s/>`+"\n",
		fmtCoord(brushTop), fmtCoord(params.Height), color, getStrokeDashArray(params.Style.HairlineType, 1))
	fmt.Fprintf(svg, `  <text x="%s" y="5" text-anchor="middle" fill="%s" font-size="%d" font-weight="600">%s</text>`+"\n",
		fmtCoord(labelX), color, hairlineFont, escapeXML(hl.Label))
	svg.WriteString("</g>\n")
}

// drawPulse draws the highlight marker with SMIL animations: the ring grows
// for 400ms then fades for 200ms, the label fades over 600ms. The chart
// drops the marker itself once the animation is over.
func drawPulse(svg *bytes.Buffer, params pulseParams) {
	m := params.Marker
	color := escapeXML(params.Style.AccentColor)
	fmt.Fprintf(svg, `<circle class="year-pulse" cx="%s" cy="%s" r="0" fill="none" stroke="%s" stroke-width="2" pointer-events="none">`+"\n",
		fmtCoord(m.X), fmtCoord(m.Y), color)
	fmt.Fprintf(svg, `  <animate attributeName="r" from="0" to="%s" dur="400ms" calcMode="spline" keyTimes="0;1" keySplines="0 0.55 0.45 1" fill="freeze"/>`+"\n",
		fmtCoord(pulseMaxRadius))
	svg.WriteString(`  <animate attributeName="stroke-width" from="2" to="1" dur="400ms" fill="freeze"/>` + "\n")
	svg.WriteString(`  <animate attributeName="opacity" values="1;0.8;0" keyTimes="0;0.6667;1" dur="600ms" fill="freeze"/>` + "\n")
	svg.WriteString("</circle>\n")
	fmt.Fprintf(svg, `<text class="year-pulse" x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" fill="%s" font-size="%d" font-weight="700" pointer-events="none">%d`+"\n",
		fmtCoord(m.X), fmtCoord(m.Y), color, pulseFontSize, m.Year)
	svg.WriteString(`  <animate attributeName="opacity" from="1" to="0" dur="600ms" fill="freeze"/>` + "\n")
	svg.WriteString("</text>\n")
}

func assembleFinalSVG(svgBody bytes.Buffer, l chartLayout, style Style) string {
	finalWidth := math.Max(l.outerWidth(), 10)
	finalHeight := math.Max(l.outerHeight(), 10)

	var finalSVG bytes.Buffer
	fmt.Fprintf(&finalSVG, `<svg class="revenue-timeline" width="%s" height="%s" xmlns="http://www.w3.org/2000/svg">`,
		fmtCoord(finalWidth), fmtCoord(finalHeight))
	finalSVG.WriteString("\n")

	fmt.Fprintf(&finalSVG, `  <rect width="%s" height="%s" fill="%s"/>`+"\n",
		fmtCoord(finalWidth), fmtCoord(finalHeight), escapeXML(style.Background))

	finalSVG.WriteString("  <style>\n")
	fmt.Fprintf(&finalSVG, "    .revenue-timeline text { font-family: %s; }\n", escapeXML(style.FontFamily))
	finalSVG.WriteString("  </style>\n")

	fmt.Fprintf(&finalSVG, `<g transform="translate(%s,%s)">`, fmtCoord(l.margins.Left), fmtCoord(l.margins.Top))
	finalSVG.WriteString("\n")
	finalSVG.Write(svgBody.Bytes())
	finalSVG.WriteString("</g>\n")
	finalSVG.WriteString("</svg>")

	return finalSVG.String()
}
