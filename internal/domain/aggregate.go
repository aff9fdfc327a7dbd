package domain

import (
	"cmp"
	"slices"
)

type volumeSum struct {
	sum   float64
	count int
}

// Aggregate groups observations by (year, hour, lat, lon) and returns one
// cell per group holding the mean of the present volumes. Groups with no
// volume at all are omitted. Cells are returned in key order.
func Aggregate(observations []Observation) []Cell {
	groups := make(map[CellKey]*volumeSum)
	for _, o := range observations {
		key := CellKey{Year: o.Year, Hour: o.Hour, Lat: o.Point.Lat, Lon: o.Point.Lon}
		g, ok := groups[key]
		if !ok {
			g = &volumeSum{}
			groups[key] = g
		}
		if o.Volume != nil {
			g.sum += *o.Volume
			g.count++
		}
	}

	cells := make([]Cell, 0, len(groups))
	for key, g := range groups {
		if g.count == 0 {
			continue
		}
		cells = append(cells, Cell{
			Year:   key.Year,
			Hour:   key.Hour,
			Lat:    key.Lat,
			Lon:    key.Lon,
			Volume: g.sum / float64(g.count),
		})
	}
	slices.SortFunc(cells, compareCells)
	return cells
}

func compareCells(a, b Cell) int {
	return cmp.Or(
		cmp.Compare(a.Year, b.Year),
		cmp.Compare(a.Hour, b.Hour),
		cmp.Compare(a.Lat, b.Lat),
		cmp.Compare(a.Lon, b.Lon),
	)
}
