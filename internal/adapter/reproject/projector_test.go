package reproject

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
)

// manhattanWKT sits near City Hall, roughly 40.7128N 74.0060W.
const manhattanWKT = "POINT (982593 198980)"

func newNYProjector(t *testing.T) *Projector {
	t.Helper()
	p, err := NewProjector("EPSG:2263", "EPSG:4326")
	require.NoError(t, err)
	return p
}

func TestProjector_ManhattanLandsInNYC(t *testing.T) {
	p := newNYProjector(t)

	pt, err := p.Project(manhattanWKT)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, pt.Lat, 40.4)
	assert.LessOrEqual(t, pt.Lat, 40.95)
	assert.GreaterOrEqual(t, pt.Lon, -74.3)
	assert.LessOrEqual(t, pt.Lon, -73.6)
	assert.InDelta(t, 40.7128, pt.Lat, 0.01)
	assert.InDelta(t, -74.0060, pt.Lon, 0.01)
}

func TestProjector_ReturnsLatLonOrder(t *testing.T) {
	p := newNYProjector(t)

	pt, err := p.Project(manhattanWKT)
	require.NoError(t, err)

	// Latitude is positive and longitude negative in New York; a swapped pair would fail both.
	assert.Positive(t, pt.Lat)
	assert.Negative(t, pt.Lon)
}

func TestProjector_Deterministic(t *testing.T) {
	p := newNYProjector(t)

	first, err1 := p.Project(manhattanWKT)
	second, err2 := p.Project(manhattanWKT)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)

	other := newNYProjector(t)
	third, err := other.Project(manhattanWKT)
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestProjector_RejectsBadGeometry(t *testing.T) {
	p := newNYProjector(t)

	cases := []string{
		"",
		"not wkt at all",
		"POINT (abc def)",
		"LINESTRING (0 0, 1 1)",
		"POINT (1e30 1e30)",
		"POINT (0 0)",
		"POINT Z (abc def 1)",
	}
	for _, text := range cases {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			_, err := p.Project(text)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrGeometry)
		})
	}
}

func TestProjector_RoundTrip(t *testing.T) {
	toPlane, err := NewTransform("EPSG:4326", "EPSG:2263")
	require.NoError(t, err)
	p := newNYProjector(t)

	sites := []domain.Point{
		{Lat: 40.7128, Lon: -74.0060},
		{Lat: 40.7580, Lon: -73.9855},
		{Lat: 40.6782, Lon: -73.9442},
		{Lat: 40.8448, Lon: -73.8648},
	}
	for _, site := range sites {
		x, y, err := toPlane(site.Lon, site.Lat)
		require.NoError(t, err)

		back, err := p.Project(fmt.Sprintf("POINT (%f %f)", x, y))
		require.NoError(t, err)
		assert.InDelta(t, site.Lat, back.Lat, 1e-5)
		assert.InDelta(t, site.Lon, back.Lon, 1e-5)
	}
}

func TestNewProjector_BadCRS(t *testing.T) {
	for _, pair := range [][2]string{
		{"+proj=nonsense", "EPSG:4326"},
		{"EPSG:2263", "+proj=nonsense"},
	} {
		_, err := NewProjector(pair[0], pair[1])
		require.Error(t, err, "%s -> %s", pair[0], pair[1])
		assert.False(t, errors.Is(err, domain.ErrGeometry))
	}
}

func TestProjector_AcceptsPointsWithZOrM(t *testing.T) {
	p := newNYProjector(t)
	want, err := p.Project(manhattanWKT)
	require.NoError(t, err)

	for _, text := range []string{
		"POINT Z (982593 198980 12.5)",
		"POINT M (982593 198980 3)",
		"POINT ZM (982593 198980 12.5 3)",
		"point z(982593 198980 0)",
	} {
		t.Run(text, func(t *testing.T) {
			got, err := p.Project(text)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestProjector_AreaOfUseOnlyForGeographicTarget(t *testing.T) {
	p, err := NewProjector("EPSG:2263", "EPSG:3857")
	require.NoError(t, err)
	assert.False(t, p.hasArea)

	_, ok := AreaOfUse(" epsg:2263 ")
	assert.True(t, ok)
	_, ok = AreaOfUse("EPSG:4326")
	assert.False(t, ok)
}

func TestResolveCRS(t *testing.T) {
	assert.Contains(t, ResolveCRS("EPSG:2263"), "+proj=lcc")
	assert.Contains(t, ResolveCRS(" epsg:4326 "), "+proj=longlat")
	assert.Equal(t, "+proj=longlat", ResolveCRS("+proj=longlat"))
}
