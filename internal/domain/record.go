package domain

// RawRecord is one traffic count row as read from the source file.
// Nil pointers and an empty WktGeom mark absent values.
type RawRecord struct {
	Year    *int
	Hour    *int
	WktGeom string
	Volume  *float64
	Line    int // 1-based line in the source file
}

// Usable reports whether year, hour and geometry are all present.
func (r RawRecord) Usable() bool {
	return r.Year != nil && r.Hour != nil && r.WktGeom != ""
}

// Point is a WGS-84 latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Observation is a filtered record whose geometry has been reprojected.
type Observation struct {
	Year   int
	Hour   int
	Point  Point
	Volume *float64
}

// CellKey identifies one aggregated cell.
type CellKey struct {
	Year int
	Hour int
	Lat  float64
	Lon  float64
}

// Cell is the mean traffic volume observed at one point for a year and hour.
type Cell struct {
	Year   int     `json:"year"`
	Hour   int     `json:"hour"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Volume float64 `json:"volume"`
}

// Key returns the grouping key of the cell.
func (c Cell) Key() CellKey {
	return CellKey{Year: c.Year, Hour: c.Hour, Lat: c.Lat, Lon: c.Lon}
}

// VolumeRange is the global min/max of cell volumes, used to keep colour
// scales consistent across every year/hour view.
type VolumeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range, bounds included.
func (r VolumeRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// IntPtr returns a pointer to v, for building optional record fields.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v, for building optional record fields.
func FloatPtr(v float64) *float64 { return &v }
