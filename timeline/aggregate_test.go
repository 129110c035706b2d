package timeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAggregate tests grouping, averaging and ordering.
func TestAggregate(t *testing.T) {
	records := []Record{
		{Title: "c", ReleaseYear: 2003, Gross: 30},
		{Title: "a", ReleaseYear: 1999, Gross: 100},
		{Title: "b", ReleaseYear: 1999, Gross: 300},
		{Title: "d", ReleaseYear: 2003, Gross: 10},
		{Title: "e", ReleaseYear: 2001, Gross: 7},
	}

	got := Aggregate(records)

	assert.Equal(t, []YearPoint{
		{Year: 1999, AverageRevenue: 200},
		{Year: 2001, AverageRevenue: 7},
		{Year: 2003, AverageRevenue: 20},
	}, got)
}

// TestAggregateFilter tests the record validity boundaries.
func TestAggregateFilter(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		kept   bool
	}{
		{name: "year 1900 excluded", record: Record{ReleaseYear: 1900, Gross: 100}},
		{name: "year 1901 included", record: Record{ReleaseYear: 1901, Gross: 100}, kept: true},
		{name: "year 2029 included", record: Record{ReleaseYear: 2029, Gross: 100}, kept: true},
		{name: "year 2030 excluded", record: Record{ReleaseYear: 2030, Gross: 100}},
		{name: "zero revenue excluded", record: Record{ReleaseYear: 2000, Gross: 0}},
		{name: "negative revenue excluded", record: Record{ReleaseYear: 2000, Gross: -5}},
		{name: "NaN revenue excluded", record: Record{ReleaseYear: 2000, Gross: math.NaN()}},
		{name: "infinite revenue excluded", record: Record{ReleaseYear: 2000, Gross: math.Inf(1)}},
		{name: "NaN year excluded", record: Record{ReleaseYear: math.NaN(), Gross: 100}},
		{name: "infinite year excluded", record: Record{ReleaseYear: math.Inf(1), Gross: 100}},
		{name: "fractional year excluded", record: Record{ReleaseYear: 2000.5, Gross: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate([]Record{tt.record})
			if tt.kept {
				require.Len(t, got, 1)
				assert.Equal(t, int(tt.record.ReleaseYear), got[0].Year)
				assert.Equal(t, tt.record.Gross, got[0].AverageRevenue)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

// TestAggregateOverflow tests that a mean overflowing to +Inf is dropped.
func TestAggregateOverflow(t *testing.T) {
	got := Aggregate([]Record{
		{ReleaseYear: 2000, Gross: math.MaxFloat64},
		{ReleaseYear: 2000, Gross: math.MaxFloat64},
		{ReleaseYear: 2001, Gross: 1},
	})
	assert.Equal(t, []YearPoint{{Year: 2001, AverageRevenue: 1}}, got)
}

// TestAggregateEmpty tests nil and fully filtered input.
func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.Empty(t, Aggregate([]Record{{ReleaseYear: 1800, Gross: 1}}))
}

// TestAggregateSortedUnique checks one ascending point per distinct year.
func TestAggregateSortedUnique(t *testing.T) {
	var records []Record
	for i := 0; i < 200; i++ {
		records = append(records, Record{ReleaseYear: float64(1950 + (i*37)%60), Gross: float64(i + 1)})
	}
	got := Aggregate(records)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Year, got[i].Year)
	}
}
