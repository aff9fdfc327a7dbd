package reproject

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ctessum/geom/proj"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
)

// Projector implements domain.Projector for WKT points using a fixed
// source/target CRS pair. The underlying transform is a pure function, so a
// single Projector can be shared across goroutines.
type Projector struct {
	transform proj.Transformer
	area      orb.Bound
	hasArea   bool
}

// NewProjector builds a projector from sourceCRS to targetCRS. The target is
// expected to be geographic: its x is longitude and its y latitude.
func NewProjector(sourceCRS, targetCRS string) (*Projector, error) {
	t, err := NewTransform(sourceCRS, targetCRS)
	if err != nil {
		return nil, err
	}
	area, ok := AreaOfUse(sourceCRS)
	ok = ok && strings.Contains(ResolveCRS(targetCRS), "+proj=longlat")
	return &Projector{transform: t, area: area, hasArea: ok}, nil
}

// NewTransform returns the raw x/y transform between two reference systems.
func NewTransform(sourceCRS, targetCRS string) (proj.Transformer, error) {
	src, err := proj.Parse(ResolveCRS(sourceCRS))
	if err != nil {
		return nil, fmt.Errorf("parse source crs %q: %w", sourceCRS, err)
	}
	dst, err := proj.Parse(ResolveCRS(targetCRS))
	if err != nil {
		return nil, fmt.Errorf("parse target crs %q: %w", targetCRS, err)
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("build transform %s -> %s: %w", sourceCRS, targetCRS, err)
	}
	// Unsupported projections only fail when a point goes through them.
	if _, _, err := t(0, 0); err != nil {
		return nil, fmt.Errorf("build transform %s -> %s: %w", sourceCRS, targetCRS, err)
	}
	return t, nil
}

// Project parses a WKT point and returns it as (lat, lon). Every failure
// wraps domain.ErrGeometry.
func (p *Projector) Project(text string) (domain.Point, error) {
	x, y, err := parsePoint(text)
	if err != nil {
		return domain.Point{}, fmt.Errorf("%w: parse %q: %v", domain.ErrGeometry, text, err)
	}
	if !finite(x) || !finite(y) {
		return domain.Point{}, fmt.Errorf("%w: non-finite coordinates in %q", domain.ErrGeometry, text)
	}

	lon, lat, err := p.transform(x, y)
	if err != nil {
		return domain.Point{}, fmt.Errorf("%w: transform %q: %v", domain.ErrGeometry, text, err)
	}
	if !finite(lat) || !finite(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.Point{}, fmt.Errorf("%w: %q projects outside the valid domain", domain.ErrGeometry, text)
	}
	if p.hasArea && !p.area.Contains(orb.Point{lon, lat}) {
		return domain.Point{}, fmt.Errorf("%w: %q lies outside the source CRS area of use", domain.ErrGeometry, text)
	}

	// The geographic transform yields x=lon, y=lat; callers get (lat, lon).
	return domain.Point{Lat: lat, Lon: lon}, nil
}

// measuredPoint matches POINT Z/M/ZM text, which orb does not decode.
var measuredPoint = regexp.MustCompile(`(?i)^\s*POINT\s*(?:Z|M|ZM)?\s*\(\s*(\S+)\s+(\S+)(?:\s+\S+){1,2}\s*\)\s*$`)

// parsePoint returns the x and y of a WKT point. Points carrying Z or M
// values keep their first two coordinates.
func parsePoint(text string) (float64, float64, error) {
	pt, err := wkt.UnmarshalPoint(text)
	if err == nil {
		return pt.X(), pt.Y(), nil
	}
	m := measuredPoint.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, err
	}
	x, xErr := strconv.ParseFloat(m[1], 64)
	y, yErr := strconv.ParseFloat(m[2], 64)
	if xErr != nil || yErr != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
