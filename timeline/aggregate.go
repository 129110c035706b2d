package timeline

import (
	"math"
	"sort"
)

// Exclusive bounds for a plausible release year.
const (
	minValidYear = 1900
	maxValidYear = 2030
)

// Aggregate reduces raw records to one averaged point per release year.
//
// A record is dropped when its gross is not a positive finite number, its
// year is not a finite integer, or the year falls outside (1900, 2030).
// Surviving records are grouped by year and averaged; the result is sorted
// by year and never contains a non-positive mean.
func Aggregate(records []Record) []YearPoint {
	type acc struct {
		sum   float64
		count int
	}
	groups := make(map[int]*acc)

	for _, r := range records {
		if !validRecord(r) {
			continue
		}
		year := int(r.ReleaseYear)
		g, ok := groups[year]
		if !ok {
			g = &acc{}
			groups[year] = g
		}
		g.sum += r.Gross
		g.count++
	}

	points := make([]YearPoint, 0, len(groups))
	for year, g := range groups {
		mean := g.sum / float64(g.count)
		// Overflow to +Inf is the only way this can trip.
		if math.IsNaN(mean) || math.IsInf(mean, 0) || mean <= 0 {
			continue
		}
		points = append(points, YearPoint{Year: year, AverageRevenue: mean})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })
	return points
}

func validRecord(r Record) bool {
	if math.IsNaN(r.Gross) || math.IsInf(r.Gross, 0) || r.Gross <= 0 {
		return false
	}
	y := r.ReleaseYear
	if math.IsNaN(y) || math.IsInf(y, 0) || y != math.Trunc(y) {
		return false
	}
	return y > minValidYear && y < maxValidYear
}

// yearExtent returns the first and last year of an ascending series.
func yearExtent(points []YearPoint) (int, int) {
	return points[0].Year, points[len(points)-1].Year
}

// maxRevenue returns the largest average revenue in points.
func maxRevenue(points []YearPoint) float64 {
	m := 0.0
	for _, p := range points {
		m = math.Max(m, p.AverageRevenue)
	}
	return m
}
