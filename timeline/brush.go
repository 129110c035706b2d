package timeline

import (
	"fmt"
	"math"
)

// BrushState is the range-select gesture state.
type BrushState int

const (
	BrushIdle      BrushState = iota // no selection
	BrushSelecting                   // drag in progress
	BrushActive                      // non-empty selection held
)

func (s BrushState) String() string {
	switch s {
	case BrushIdle:
		return "idle"
	case BrushSelecting:
		return "selecting"
	case BrushActive:
		return "active"
	}
	return fmt.Sprintf("BrushState(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s BrushState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *BrushState) UnmarshalText(text []byte) error {
	for _, st := range []BrushState{BrushIdle, BrushSelecting, BrushActive} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown brush state %q", text)
}

// brush tracks a one-dimensional pixel selection along the x axis.
//
// A drag that starts inside an active selection moves it; any other drag
// draws a new one from the press point.
type brush struct {
	state  BrushState
	width  float64    // selectable extent is [0, width]
	sel    [2]float64 // lo, hi in plot pixels
	anchor float64    // press position
	origin [2]float64 // selection at press time, for moves
	moving bool
}

func (b *brush) setWidth(w float64) {
	b.width = w
}

func (b *brush) clamp(px float64) float64 {
	if math.IsNaN(px) {
		return 0
	}
	return math.Max(0, math.Min(px, b.width))
}

func (b *brush) empty() bool {
	return b.sel[1]-b.sel[0] <= 0
}

func (b *brush) start(px float64) {
	px = b.clamp(px)
	b.anchor = px
	b.moving = b.state == BrushActive && px >= b.sel[0] && px <= b.sel[1]
	b.origin = b.sel
	if !b.moving {
		b.sel = [2]float64{px, px}
	}
	b.state = BrushSelecting
}

// move updates the selection and reports whether a drag is in progress.
func (b *brush) move(px float64) bool {
	if b.state != BrushSelecting {
		return false
	}
	px = b.clamp(px)
	if b.moving {
		span := b.origin[1] - b.origin[0]
		lo := math.Max(0, math.Min(b.origin[0]+px-b.anchor, b.width-span))
		b.sel = [2]float64{lo, lo + span}
		return true
	}
	b.sel = [2]float64{math.Min(b.anchor, px), math.Max(b.anchor, px)}
	return true
}

// end finishes the drag. It reports false when there was no drag to end.
func (b *brush) end(px float64) bool {
	if !b.move(px) {
		return false
	}
	b.moving = false
	if b.empty() {
		b.clear()
	} else {
		b.state = BrushActive
	}
	return true
}

func (b *brush) set(lo, hi float64) {
	lo, hi = b.clamp(math.Min(lo, hi)), b.clamp(math.Max(lo, hi))
	b.sel = [2]float64{lo, hi}
	b.moving = false
	if b.empty() {
		b.clear()
		return
	}
	b.state = BrushActive
}

func (b *brush) clear() {
	b.state = BrushIdle
	b.sel = [2]float64{}
	b.moving = false
}

// selection inverts the pixel selection through x. It returns nil when
// nothing is selected.
func (b *brush) selection(x LinearScale) *SelectionRange {
	if b.state == BrushIdle || b.empty() {
		return nil
	}
	return &SelectionRange{Start: x.Invert(b.sel[0]), End: x.Invert(b.sel[1])}
}
