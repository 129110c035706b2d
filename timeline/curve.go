package timeline

import (
	"fmt"
	"math"
	"strings"
)

// point is a pixel-space vertex of the trend line.
type point struct {
	X, Y float64
}

// bezier is one cubic segment: start, two control points, end.
type bezier struct {
	P0, C1, C2, P1 point
}

// monotoneSegments fits a monotone cubic through pts (ascending x). The
// tangents are limited so no segment leaves the y-interval of its two end
// points. Fewer than three points degrade to straight segments.
func monotoneSegments(pts []point) []bezier {
	n := len(pts)
	if n < 2 {
		return nil
	}
	if n == 2 {
		return []bezier{straight(pts[0], pts[1])}
	}

	tangents := make([]float64, n)
	for i := 1; i < n-1; i++ {
		tangents[i] = interiorTangent(pts[i-1], pts[i], pts[i+1])
	}
	tangents[0] = endTangent(pts[0], pts[1], tangents[1])
	tangents[n-1] = endTangent(pts[n-2], pts[n-1], tangents[n-2])

	segs := make([]bezier, 0, n-1)
	for i := 0; i < n-1; i++ {
		p0, p1 := pts[i], pts[i+1]
		dx := (p1.X - p0.X) / 3
		segs = append(segs, bezier{
			P0: p0,
			C1: point{p0.X + dx, p0.Y + dx*tangents[i]},
			C2: point{p1.X - dx, p1.Y - dx*tangents[i+1]},
			P1: p1,
		})
	}
	return segs
}

func straight(a, b point) bezier {
	dx, dy := (b.X-a.X)/3, (b.Y-a.Y)/3
	return bezier{P0: a, C1: point{a.X + dx, a.Y + dy}, C2: point{b.X - dx, b.Y - dy}, P1: b}
}

// interiorTangent is the Steffen-limited slope at b: zero at local extrema,
// otherwise no steeper than twice the shallower neighbouring secant.
func interiorTangent(a, b, c point) float64 {
	h0, h1 := b.X-a.X, c.X-b.X
	if h0 == 0 || h1 == 0 {
		return 0
	}
	s0, s1 := (b.Y-a.Y)/h0, (c.Y-b.Y)/h1
	p := (s0*h1 + s1*h0) / (h0 + h1)
	t := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	if math.IsNaN(t) {
		return 0
	}
	return t
}

// endTangent derives the slope at an end point from the secant and the
// neighbouring tangent t.
func endTangent(a, b point, t float64) float64 {
	h := b.X - a.X
	if h == 0 {
		return t
	}
	return (3*(b.Y-a.Y)/h - t) / 2
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// pathData renders segments as an SVG path "d" attribute.
func pathData(pts []point) string {
	if len(pts) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M%s,%s", fmtCoord(pts[0].X), fmtCoord(pts[0].Y))
	for _, s := range monotoneSegments(pts) {
		fmt.Fprintf(&b, "C%s,%s,%s,%s,%s,%s",
			fmtCoord(s.C1.X), fmtCoord(s.C1.Y),
			fmtCoord(s.C2.X), fmtCoord(s.C2.Y),
			fmtCoord(s.P1.X), fmtCoord(s.P1.Y))
	}
	return b.String()
}
