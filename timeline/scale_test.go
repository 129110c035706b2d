package timeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearScaleApplyInvert(t *testing.T) {
	s := LinearScale{Domain: [2]float64{1994, 2006}, Range: [2]float64{0, 1200}}

	assert.InDelta(t, 0, s.Apply(1994), 1e-9)
	assert.InDelta(t, 1200, s.Apply(2006), 1e-9)
	assert.InDelta(t, 600, s.Apply(2000), 1e-9)
	assert.InDelta(t, 2000, s.Invert(600), 1e-9)

	inverted := LinearScale{Domain: [2]float64{0, 100}, Range: [2]float64{85, 0}}
	assert.InDelta(t, 85, inverted.Apply(0), 1e-9)
	assert.InDelta(t, 0, inverted.Apply(100), 1e-9)
	assert.InDelta(t, 50, inverted.Invert(42.5), 1e-9)
}

func TestLinearScaleDegenerate(t *testing.T) {
	s := LinearScale{Domain: [2]float64{5, 5}, Range: [2]float64{0, 10}}
	assert.Equal(t, 5.0, s.Apply(123))

	flat := LinearScale{Domain: [2]float64{0, 10}, Range: [2]float64{3, 3}}
	assert.Equal(t, 5.0, flat.Invert(3))
}

func TestLinearScaleTicks(t *testing.T) {
	tests := []struct {
		name    string
		domain  [2]float64
		count   int
		minStep float64
		want    []float64
	}{
		{
			name:    "years capped at ten",
			domain:  [2]float64{1994, 2006},
			count:   10,
			minStep: 1,
			want:    []float64{1994, 1996, 1998, 2000, 2002, 2004, 2006},
		},
		{
			name:    "narrow year span keeps integer step",
			domain:  [2]float64{1998, 2002},
			count:   10,
			minStep: 1,
			want:    []float64{1998, 1999, 2000, 2001, 2002},
		},
		{
			name:    "revenue five ticks",
			domain:  [2]float64{0, 2.2e6},
			count:   5,
			minStep: 0,
			want:    []float64{0, 5e5, 1e6, 1.5e6, 2e6},
		},
		{
			name:    "fractions",
			domain:  [2]float64{0, 1},
			count:   5,
			minStep: 0,
			want:    []float64{0, 0.5, 1},
		},
		{
			name:    "single value",
			domain:  [2]float64{3, 3},
			count:   5,
			minStep: 0,
			want:    []float64{3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := LinearScale{Domain: tt.domain, Range: [2]float64{0, 100}}
			got := s.Ticks(tt.count, tt.minStep)
			assert.LessOrEqual(t, len(got), tt.count)
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}
}

func TestLinearScaleTicksBounded(t *testing.T) {
	for span := 1.0; span < 500; span += 7 {
		s := LinearScale{Domain: [2]float64{1901, 1901 + span}, Range: [2]float64{0, 100}}
		ticks := s.Ticks(xTickCount, 1)
		assert.NotEmpty(t, ticks, "span %v", span)
		assert.LessOrEqual(t, len(ticks), xTickCount, "span %v", span)
		for _, v := range ticks {
			assert.Equal(t, math.Trunc(v), v, "tick %v should be a whole year", v)
		}
	}
}

func TestLinearScaleTicksInvalid(t *testing.T) {
	s := LinearScale{Domain: [2]float64{math.NaN(), 1}, Range: [2]float64{0, 1}}
	assert.Nil(t, s.Ticks(5, 0))
	assert.Nil(t, NewLinearScale().Ticks(0, 0))
}

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name     string
		width    float64
		measured bool
		want     float64
	}{
		{name: "measured", width: 800, measured: true, want: 715},
		{name: "unmeasured falls back", width: 800, measured: false, want: 1315},
		{name: "zero falls back", width: 0, measured: true, want: 1315},
		{name: "negative falls back", width: -10, measured: true, want: 1315},
		{name: "NaN falls back", width: math.NaN(), measured: true, want: 1315},
		{name: "narrower than margins clamps", width: 50, measured: true, want: minPlotWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := computeLayout(tt.width, tt.measured)
			assert.Equal(t, tt.want, l.width)
			assert.Equal(t, 85.0, l.height)
			assert.Equal(t, totalHeight, l.outerHeight())
		})
	}
}
