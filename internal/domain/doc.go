// Package domain models NYC Automated Traffic Volume Counts and the
// aggregated map dataset derived from them.
//
// # Data Source
//
// Records come from the NYC DOT "Automated Traffic Volume Counts" open data
// export: one row per segment, direction and 15-minute interval. Only four
// columns matter here:
//
//	Yr       count year, e.g. 2020
//	HH       hour of day, 0-23
//	WktGeom  segment location as WKT, e.g. "POINT (997750.63 151017.43)"
//	Vol      vehicles counted in the interval
//
// Geometry is expressed in EPSG:2263 (NAD83 / New York Long Island, US survey
// feet). It is reprojected to EPSG:4326 latitude/longitude before grouping.
//
// # Null handling
//
// Empty cells and values that do not parse as numbers are absent. A record
// without year, hour or geometry is unusable and is dropped by [FilterRecords].
// A record without volume survives the filter but contributes nothing to the
// mean of its cell.
//
// # Aggregation
//
// Surviving records are grouped by (year, hour, lat, lon) with exact
// coordinate equality and reduced to the mean volume. A group whose volumes
// are all absent has no mean and is left out of the output rather than
// emitted as NaN. See [Aggregate].
//
// # Dataset
//
// [Dataset] is built once and never mutated. Every accessor returns a copy,
// so concurrent readers need no locking.
package domain
