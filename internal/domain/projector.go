package domain

// Projector converts a WKT point in the configured source CRS into a
// WGS-84 latitude/longitude pair. Implementations must be deterministic and
// safe for concurrent use. Failures wrap ErrGeometry.
type Projector interface {
	Project(wkt string) (Point, error)
}
