package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// buildClock stamps each Dataset with its construction time.
var buildClock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the build clock; nil restores the real one.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	buildClock = c
}

type slot struct {
	year int
	hour int
}

// Dataset is the read-only query surface over the aggregated cells.
// It is safe for concurrent use.
type Dataset struct {
	buildID string
	builtAt time.Time
	bySlot  map[slot][]Cell
	years   []int
	hours   []int
	volumes VolumeRange
	total   int
}

// NewDataset indexes cells by (year, hour) and computes the global volume
// range. Duplicate keys keep the last cell seen.
func NewDataset(cells []Cell) *Dataset {
	unique := make(map[CellKey]Cell, len(cells))
	for _, c := range cells {
		unique[c.Key()] = c
	}

	d := &Dataset{
		buildID: uuid.NewString(),
		builtAt: buildClock.Now().UTC(),
		bySlot:  make(map[slot][]Cell),
		total:   len(unique),
	}

	years := make(map[int]struct{})
	hours := make(map[int]struct{})
	first := true
	for _, c := range unique {
		s := slot{year: c.Year, hour: c.Hour}
		d.bySlot[s] = append(d.bySlot[s], c)
		years[c.Year] = struct{}{}
		hours[c.Hour] = struct{}{}

		if first {
			d.volumes = VolumeRange{Min: c.Volume, Max: c.Volume}
			first = false
			continue
		}
		d.volumes.Min = min(d.volumes.Min, c.Volume)
		d.volumes.Max = max(d.volumes.Max, c.Volume)
	}
	for s := range d.bySlot {
		slices.SortFunc(d.bySlot[s], compareCells)
	}

	d.years = sortedKeys(years)
	d.hours = sortedKeys(hours)
	return d
}

// CellsFor returns the cells for an exact (year, hour) match. The result is
// empty, never nil, when nothing matches.
func (d *Dataset) CellsFor(year, hour int) []Cell {
	cells, ok := d.bySlot[slot{year: year, hour: hour}]
	if !ok {
		return []Cell{}
	}
	return slices.Clone(cells)
}

// AvailableYears returns the distinct years present, ascending.
func (d *Dataset) AvailableYears() []int { return slices.Clone(d.years) }

// AvailableHours returns the distinct hours present, ascending.
func (d *Dataset) AvailableHours() []int { return slices.Clone(d.hours) }

// VolumeRange returns the min/max mean volume over all cells. The boolean is
// false for an empty dataset.
func (d *Dataset) VolumeRange() (VolumeRange, bool) {
	return d.volumes, d.total > 0
}

// Len returns the number of cells.
func (d *Dataset) Len() int { return d.total }

// BuildID identifies this build in logs and published messages.
func (d *Dataset) BuildID() string { return d.buildID }

// BuiltAt is the UTC time the dataset was constructed.
func (d *Dataset) BuiltAt() time.Time { return d.builtAt }

// All returns every cell in key order.
func (d *Dataset) All() []Cell {
	out := make([]Cell, 0, d.total)
	for _, cells := range d.bySlot {
		out = append(out, cells...)
	}
	slices.SortFunc(out, compareCells)
	return out
}

func sortedKeys(m map[int]struct{}) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
