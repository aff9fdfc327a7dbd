package reproject

import (
	"strings"

	"github.com/paulmach/orb"
)

// Proj4 definitions for the reference systems this service deals with.
// EPSG:2263 is NAD83 / New York Long Island in US survey feet.
var knownCRS = map[string]string{
	"EPSG:2263": "+proj=lcc +lat_1=41.03333333333333 +lat_2=40.66666666666666 +lat_0=40.16666666666666 " +
		"+lon_0=-74 +x_0=300000.0000000001 +y_0=0 +ellps=GRS80 +towgs84=0,0,0 " +
		"+to_meter=0.3048006096012192 +no_defs",
	"EPSG:4326": "+proj=longlat +datum=WGS84 +no_defs",
	"EPSG:3857": "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 " +
		"+units=m +nadgrids=@null +no_defs",
}

// areaOfUse is the lon/lat extent a source CRS is defined for, padded by a
// quarter degree. Points that reproject outside it are corrupt coordinates.
var areaOfUse = map[string]orb.Bound{
	"EPSG:2263": {Min: orb.Point{-74.51, 40.22}, Max: orb.Point{-71.55, 41.55}},
}

// AreaOfUse returns the padded lon/lat extent of a known CRS identifier.
func AreaOfUse(id string) (orb.Bound, bool) {
	b, ok := areaOfUse[strings.ToUpper(strings.TrimSpace(id))]
	return b, ok
}

// ResolveCRS turns an "EPSG:nnnn" identifier into its proj4 definition.
// Anything unknown is returned unchanged and treated as a literal proj4 string.
func ResolveCRS(id string) string {
	id = strings.TrimSpace(id)
	if def, ok := knownCRS[strings.ToUpper(id)]; ok {
		return def
	}
	return id
}
