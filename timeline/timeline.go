// Package timeline renders the average-revenue-per-year timeline used by the
// movie dashboard and implements its brush, hover and highlight interactions.
//
// A Chart is single-threaded: construct it and call every method from the
// goroutine that runs its Scheduler (see Loop.Do for hosts with several
// goroutines).
package timeline

import (
	"log"
	"strconv"
	"time"
)

// pulseDuration is how long a HighlightYear marker stays on screen.
const pulseDuration = 600 * time.Millisecond

// Options configures a Chart.
type Options struct {
	// Container is measured at construction and on every resize signal.
	// A nil container uses the fallback width.
	Container Container
	Records   []Record

	// OnRangeSelected receives the brushed year range, or nil when the
	// selection is cleared.
	OnRangeSelected func(sel *SelectionRange)
	// OnYearHovered receives the year under the pointer, or nil when the
	// pointer leaves the plot.
	OnYearHovered func(year *int)

	// Scheduler defaults to a ManualScheduler owned by the chart.
	Scheduler Scheduler
	// Resize is optional; the chart unsubscribes on Dispose.
	Resize ResizeSource
	Style  Style
	Logger *log.Logger
}

// Chart is the interactive revenue timeline.
type Chart struct {
	container       Container
	onRangeSelected func(*SelectionRange)
	onYearHovered   func(*int)
	sched           Scheduler
	style           Style
	logger          *log.Logger

	layout chartLayout
	x, y   LinearScale
	points []YearPoint
	scene  scene

	brush    brush
	hover    hoverTracker
	hairline Hairline
	marker   *pulse

	unsubscribeResize func()
	disposed          bool
}

type pulse struct {
	Marker
	cancel func()
}

// New builds a chart, aggregates the initial records and renders.
func New(opts Options) *Chart {
	c := &Chart{
		container:       opts.Container,
		onRangeSelected: opts.OnRangeSelected,
		onYearHovered:   opts.OnYearHovered,
		sched:           opts.Scheduler,
		style:           effectiveStyle(opts.Style),
		logger:          opts.Logger,
		x:               NewLinearScale(),
		y:               NewLinearScale(),
	}
	if c.sched == nil {
		c.sched = NewManualScheduler()
	}
	if c.logger == nil {
		c.logger = log.Default()
	}

	c.applyLayout(computeLayout(c.measure()))

	if opts.Resize != nil {
		c.unsubscribeResize = opts.Resize.Subscribe(func() {
			c.sched.Post(c.handleResize)
		})
	}

	c.SetData(opts.Records)
	return c
}

func (c *Chart) measure() (float64, bool) {
	if c.container == nil {
		return 0, false
	}
	return c.container.Width()
}

// --- Layout/Scale Manager ---

// Configure resizes the chart for a container of the given width. Scale
// ranges, the brush extent, the hover area and the hairline follow; the
// scale domains do not change. Unusable widths fall back to 1400.
func (c *Chart) Configure(containerWidth float64) {
	c.applyLayout(computeLayout(containerWidth, true))
	c.Render()
}

func (c *Chart) handleResize() {
	if c.disposed {
		return
	}
	w, ok := c.measure()
	if !ok {
		return
	}
	c.Configure(w)
}

func (c *Chart) applyLayout(l chartLayout) {
	old := c.x
	c.layout = l
	c.x.Range = [2]float64{0, l.width}
	c.y.Range = [2]float64{l.height, 0}

	c.brush.setWidth(l.width)
	if c.brush.state != BrushIdle {
		// Same domain, new range: the selection keeps its years.
		reproject := func(px float64) float64 { return c.brush.clamp(c.x.Apply(old.Invert(px))) }
		c.brush.sel = [2]float64{reproject(c.brush.sel[0]), reproject(c.brush.sel[1])}
		c.brush.anchor = reproject(c.brush.anchor)
		c.brush.origin = [2]float64{reproject(c.brush.origin[0]), reproject(c.brush.origin[1])}
	}

	c.hairline.Length = l.height - brushTop
	c.projectOverlays()
}

// projectOverlays places the hairline and the pulse marker on their years
// under the current scales.
func (c *Chart) projectOverlays() {
	if c.hover.state.active {
		c.hairline.X = c.x.Apply(float64(c.hover.state.year))
		c.hairline.Label = strconv.Itoa(c.hover.state.year)
	}
	if c.marker != nil {
		c.marker.X = c.x.Apply(float64(c.marker.Year))
		c.marker.Y = c.layout.height / 2
	}
}

// --- Data Aggregator ---

// SetData replaces the records, re-aggregates and renders. An active brush
// selection is re-reported against the new x domain.
func (c *Chart) SetData(records []Record) {
	c.points = Aggregate(records)
	c.logger.Printf("Timeline data points: %d", len(c.points))
	c.Render()

	if c.brush.state == BrushActive {
		c.postRange(c.brush.selection(c.x))
	}
}

// Points returns a copy of the aggregated series.
func (c *Chart) Points() []YearPoint {
	return append([]YearPoint(nil), c.points...)
}

// XScale returns the year scale.
func (c *Chart) XScale() LinearScale { return c.x }

// YScale returns the revenue scale.
func (c *Chart) YScale() LinearScale { return c.y }

// Size returns the plot area in pixels.
func (c *Chart) Size() (width, height float64) { return c.layout.width, c.layout.height }

// --- Renderer ---

// Render rebuilds axes and trend line from the current series and scales
// and moves the hairline and pulse marker onto the new x domain. With no
// data it clears the scene, logs a warning and returns.
func (c *Chart) Render() {
	if len(c.points) == 0 {
		c.scene = scene{}
		c.logger.Printf("Warning: no data to display in timeline")
		return
	}

	minYear, maxYear := yearExtent(c.points)
	c.x.Domain = [2]float64{float64(minYear - 1), float64(maxYear + 1)}
	c.y.Domain = [2]float64{0, maxRevenue(c.points) * 1.1}
	c.logger.Printf("Timeline year range: %d - %d", minYear, maxYear)

	c.scene = buildScene(c.points, c.x, c.y)
	c.projectOverlays()
}

// SVG serializes the current scene and overlays as a standalone document.
func (c *Chart) SVG() string {
	return generateSVG(svgParams{
		Layout:   c.layout,
		Style:    c.style,
		Scene:    c.scene,
		Brush:    c.brush,
		Hairline: c.hairline,
		Marker:   c.markerSnapshot(),
	})
}

// --- Interaction Controller: brush ---

// BrushStart begins a drag at plot x coordinate px.
func (c *Chart) BrushStart(px float64) {
	if c.disposed {
		return
	}
	c.brush.start(px)
}

// BrushMove extends the drag and reports the new range when it is not
// empty.
func (c *Chart) BrushMove(px float64) {
	if c.disposed || !c.brush.move(px) {
		return
	}
	if !c.brush.empty() {
		c.postRange(c.brush.selection(c.x))
	}
}

// BrushEnd finishes the drag. An empty drag clears the selection.
func (c *Chart) BrushEnd(px float64) {
	if c.disposed || !c.brush.end(px) {
		return
	}
	c.postRange(c.brush.selection(c.x))
}

// DoubleClick clears any selection and always reports nil.
func (c *Chart) DoubleClick() {
	if c.disposed {
		return
	}
	c.brush.clear()
	c.postRange(nil)
}

// SelectYears moves the brush to cover [start, end] and reports the range.
func (c *Chart) SelectYears(start, end float64) {
	if c.disposed {
		return
	}
	c.brush.set(c.x.Apply(start), c.x.Apply(end))
	c.postRange(c.brush.selection(c.x))
}

// Selection returns the current brushed range, or nil.
func (c *Chart) Selection() *SelectionRange {
	return c.brush.selection(c.x)
}

func (c *Chart) postRange(sel *SelectionRange) {
	cb := c.onRangeSelected
	if cb == nil {
		return
	}
	c.sched.Post(func() {
		if !c.disposed {
			cb(sel)
		}
	})
}

// --- Interaction Controller: hover ---

// PointerMove records the pointer at plot x coordinate px. The hairline
// and OnYearHovered are updated on the next frame; moves arriving before
// that frame only replace the pending position. Positions outside the
// plot are ignored.
func (c *Chart) PointerMove(px float64) {
	if c.disposed || px < 0 || px > c.layout.width {
		return
	}
	c.hover.pendingX = px
	if c.hover.pending() {
		return
	}
	c.hover.cancelFrame = c.sched.RequestFrame(c.hoverFrame)
}

func (c *Chart) hoverFrame() {
	c.hover.cancelFrame = nil
	if c.disposed {
		return
	}
	year := yearAt(c.x, c.hover.pendingX)
	c.hairline = Hairline{
		Visible: true,
		X:       c.x.Apply(float64(year)),
		Label:   strconv.Itoa(year),
		Length:  c.layout.height - brushTop,
	}
	if c.hover.state.same(year) {
		return
	}
	c.hover.state = hoverState{year: year, active: true}
	if c.onYearHovered != nil {
		c.onYearHovered(c.hover.state.ptr())
	}
}

// PointerLeave cancels any pending hover frame, hides the hairline and
// always reports nil.
func (c *Chart) PointerLeave() {
	if c.disposed {
		return
	}
	c.hover.cancel()
	c.hairline.Visible = false
	c.hover.state = hoverState{}

	if cb := c.onYearHovered; cb != nil {
		c.sched.Post(func() {
			if !c.disposed {
				cb(nil)
			}
		})
	}
}

// HoveredYear returns the last reported hover year, or nil.
func (c *Chart) HoveredYear() *int {
	return c.hover.state.ptr()
}

// --- Interaction Controller: external highlight ---

// HighlightYear pulses a marker at year. Any previous marker is removed
// first and the new one removes itself after a short animation. It never
// calls OnYearHovered.
func (c *Chart) HighlightYear(year int) {
	if c.disposed {
		return
	}
	c.ClearHighlight()

	p := &pulse{Marker: Marker{
		Year: year,
		X:    c.x.Apply(float64(year)),
		Y:    c.layout.height / 2,
	}}
	p.cancel = c.sched.AfterFunc(pulseDuration, func() {
		if c.marker == p {
			c.marker = nil
		}
	})
	c.marker = p
}

// ClearHighlight removes the pulse marker, if any.
func (c *Chart) ClearHighlight() {
	if c.marker == nil {
		return
	}
	c.marker.cancel()
	c.marker = nil
}

func (c *Chart) markerSnapshot() *Marker {
	if c.marker == nil {
		return nil
	}
	m := c.marker.Marker
	return &m
}

// --- Lifecycle ---

// Dispose detaches the chart from the resize signal and cancels pending
// frames, timers and notifications. The chart can still be serialized but
// ignores further input.
func (c *Chart) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	if c.unsubscribeResize != nil {
		c.unsubscribeResize()
		c.unsubscribeResize = nil
	}
	c.hover.cancel()
	c.ClearHighlight()
}

// Disposed reports whether Dispose has been called.
func (c *Chart) Disposed() bool { return c.disposed }

// Style returns the effective style, defaults filled in.
func (c *Chart) Style() Style { return c.style }

// Scheduler returns the scheduler the chart runs on.
func (c *Chart) Scheduler() Scheduler { return c.sched }

// State returns a serializable snapshot.
func (c *Chart) State() State {
	return State{
		Width:       c.layout.width,
		Height:      c.layout.height,
		XDomain:     c.x.Domain,
		YDomain:     c.y.Domain,
		Points:      c.Points(),
		Brush:       c.brush.state,
		Selection:   c.Selection(),
		HoveredYear: c.HoveredYear(),
		Hairline:    c.hairline,
		Marker:      c.markerSnapshot(),
	}
}
