package timeline

import "math"

// hoverState is the last year reported through OnYearHovered.
type hoverState struct {
	year   int
	active bool
}

func (h hoverState) same(year int) bool {
	return h.active && h.year == year
}

func (h hoverState) ptr() *int {
	if !h.active {
		return nil
	}
	y := h.year
	return &y
}

// hoverTracker coalesces pointer moves into at most one pending frame.
// Moves that arrive while a frame is pending only overwrite pendingX.
type hoverTracker struct {
	state       hoverState
	pendingX    float64
	cancelFrame func()
}

func (h *hoverTracker) pending() bool {
	return h.cancelFrame != nil
}

func (h *hoverTracker) cancel() {
	if h.cancelFrame != nil {
		h.cancelFrame()
		h.cancelFrame = nil
	}
}

// yearAt rounds the inverted pointer position to the nearest year.
func yearAt(x LinearScale, px float64) int {
	return int(math.Round(x.Invert(px)))
}
