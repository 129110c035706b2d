package export

import (
	"log"

	"github.com/buffos/revenue-timeline/timeline"
)

// StaticOptions describes a chart frozen after a fixed set of interactions.
type StaticOptions struct {
	Width     float64
	Selection *timeline.SelectionRange
	Highlight *int
	HoverYear *int
	Style     timeline.Style
	Logger    *log.Logger
}

// StaticChart builds a chart on a manual scheduler, replays the selection,
// hover and highlight, and flushes every pending notification. The pulse
// marker is left in place.
func StaticChart(records []timeline.Record, opts StaticOptions) *timeline.Chart {
	sched := timeline.NewManualScheduler()
	c := timeline.New(timeline.Options{
		Container: timeline.FixedContainer(opts.Width),
		Records:   records,
		Scheduler: sched,
		Style:     opts.Style,
		Logger:    opts.Logger,
	})
	if opts.Selection != nil {
		c.SelectYears(opts.Selection.Start, opts.Selection.End)
	}
	if opts.HoverYear != nil {
		c.PointerMove(c.XScale().Apply(float64(*opts.HoverYear)))
	}
	if opts.Highlight != nil {
		c.HighlightYear(*opts.Highlight)
	}
	sched.Flush()
	return c
}
