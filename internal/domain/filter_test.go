package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterRecords(t *testing.T) {
	geom := "POINT (982593 198980)"
	records := []RawRecord{
		{Year: IntPtr(2016), Hour: IntPtr(5), WktGeom: geom, Line: 2},
		{Year: IntPtr(2017), Hour: IntPtr(5), WktGeom: geom, Line: 3},
		{Year: IntPtr(2020), Hour: IntPtr(0), WktGeom: geom, Volume: FloatPtr(12), Line: 4},
		{Year: IntPtr(2022), Hour: IntPtr(23), WktGeom: geom, Line: 5},
		{Year: IntPtr(2023), Hour: IntPtr(1), WktGeom: geom, Line: 6},
		{Year: nil, Hour: IntPtr(1), WktGeom: geom, Line: 7},
		{Year: IntPtr(2019), Hour: nil, WktGeom: geom, Line: 8},
		{Year: IntPtr(2019), Hour: IntPtr(1), WktGeom: "", Line: 9},
		{Year: IntPtr(2019), Hour: IntPtr(1), WktGeom: geom, Volume: nil, Line: 10},
	}

	got := FilterRecords(records, 2017, 2022)

	lines := make([]int, 0, len(got))
	for _, r := range got {
		lines = append(lines, r.Line)
	}
	assert.Equal(t, []int{3, 4, 5, 10}, lines)
}

func TestFilterRecords_InvariantHoldsForAllBounds(t *testing.T) {
	var records []RawRecord
	for year := 2010; year <= 2025; year++ {
		records = append(records,
			RawRecord{Year: IntPtr(year), Hour: IntPtr(year % 24), WktGeom: "POINT (1 2)"},
			RawRecord{Year: IntPtr(year), Hour: nil, WktGeom: "POINT (1 2)"},
			RawRecord{Year: IntPtr(year), Hour: IntPtr(3)},
		)
	}

	for lo := 2010; lo <= 2025; lo++ {
		for hi := lo; hi <= 2025; hi++ {
			for _, r := range FilterRecords(records, lo, hi) {
				assert.True(t, r.Usable())
				assert.GreaterOrEqual(t, *r.Year, lo)
				assert.LessOrEqual(t, *r.Year, hi)
			}
			assert.Len(t, FilterRecords(records, lo, hi), hi-lo+1)
		}
	}
}

func TestFilterRecords_InvertedBounds(t *testing.T) {
	records := []RawRecord{{Year: IntPtr(2020), Hour: IntPtr(1), WktGeom: "POINT (1 2)"}}
	assert.Empty(t, FilterRecords(records, 2022, 2017))
}

func TestFilterRecords_DoesNotModifyInput(t *testing.T) {
	records := []RawRecord{
		{Year: IntPtr(2016), Hour: IntPtr(1), WktGeom: "POINT (1 2)"},
		{Year: IntPtr(2020), Hour: IntPtr(1), WktGeom: "POINT (1 2)"},
	}
	_ = FilterRecords(records, 2017, 2022)
	assert.Equal(t, 2016, *records[0].Year)
	assert.Len(t, records, 2)
}
