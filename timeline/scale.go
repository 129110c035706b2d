package timeline

import (
	"math"
)

// Layout constants, in logical pixels.
const (
	defaultContainerWidth = 1400.0 // used when the container cannot be measured
	totalHeight           = 120.0
	minPlotWidth          = 1.0
	brushTop              = 10.0 // brush and hairline start below the hairline label
)

var defaultMargins = Margins{Top: 20, Right: 20, Bottom: 15, Left: 65}

// LinearScale maps a continuous domain onto a pixel range.
type LinearScale struct {
	Domain [2]float64
	Range  [2]float64
}

// NewLinearScale returns the identity scale over [0, 1].
func NewLinearScale() LinearScale {
	return LinearScale{Domain: [2]float64{0, 1}, Range: [2]float64{0, 1}}
}

// Apply maps a domain value to the range. A degenerate domain maps every
// value to the middle of the range.
func (s LinearScale) Apply(v float64) float64 {
	d0, d1 := s.Domain[0], s.Domain[1]
	r0, r1 := s.Range[0], s.Range[1]
	if d1 == d0 {
		return (r0 + r1) / 2
	}
	return r0 + (v-d0)/(d1-d0)*(r1-r0)
}

// Invert maps a range value back to the domain.
func (s LinearScale) Invert(px float64) float64 {
	d0, d1 := s.Domain[0], s.Domain[1]
	r0, r1 := s.Range[0], s.Range[1]
	if r1 == r0 {
		return (d0 + d1) / 2
	}
	return d0 + (px-r0)/(r1-r0)*(d1-d0)
}

// Ticks returns at most count evenly spaced values inside the domain. The
// step is a 1, 2 or 5 multiple of a power of ten and never smaller than
// minStep (pass 1 for integer axes, 0 for no floor).
func (s LinearScale) Ticks(count int, minStep float64) []float64 {
	lo, hi := math.Min(s.Domain[0], s.Domain[1]), math.Max(s.Domain[0], s.Domain[1])
	if count <= 0 || math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	if lo == hi {
		return []float64{lo}
	}

	power := math.Pow(10, math.Floor(math.Log10((hi-lo)/float64(count))))
	for i := 0; i < 32; i++ {
		for _, m := range []float64{1, 2, 5} {
			step := m * power
			if step < minStep {
				continue
			}
			start, stop := math.Ceil(lo/step), math.Floor(hi/step)
			n := int(stop-start) + 1
			if n > count {
				continue
			}
			ticks := make([]float64, 0, n)
			for k := start; k <= stop; k++ {
				if step < 1 {
					// Dividing by the inverse keeps 0.3 from printing as 0.30000000000000004.
					ticks = append(ticks, k/(1/step))
				} else {
					ticks = append(ticks, k*step)
				}
			}
			return ticks
		}
		power *= 10
	}
	return nil
}

// chartLayout is the pixel geometry derived from a container width.
type chartLayout struct {
	margins Margins
	width   float64 // plot area
	height  float64 // plot area
}

func (l chartLayout) outerWidth() float64  { return l.width + l.margins.Left + l.margins.Right }
func (l chartLayout) outerHeight() float64 { return l.height + l.margins.Top + l.margins.Bottom }

// computeLayout derives the plot size from a measured container width.
// Anything unmeasurable falls back to the default width.
func computeLayout(containerWidth float64, measured bool) chartLayout {
	if !measured || math.IsNaN(containerWidth) || math.IsInf(containerWidth, 0) || containerWidth <= 0 {
		containerWidth = defaultContainerWidth
	}
	m := defaultMargins
	return chartLayout{
		margins: m,
		width:   math.Max(containerWidth-m.Left-m.Right, minPlotWidth),
		height:  totalHeight - m.Top - m.Bottom,
	}
}

// Container is the host element the chart is mounted in. Width reports
// false when the element is missing or cannot be measured.
type Container interface {
	Width() (float64, bool)
}

// FixedContainer is a container with a constant width.
type FixedContainer float64

// Width implements Container.
func (c FixedContainer) Width() (float64, bool) { return float64(c), true }

// ContainerFunc adapts a function to Container.
type ContainerFunc func() (float64, bool)

// Width implements Container.
func (f ContainerFunc) Width() (float64, bool) { return f() }
