package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/csvsource"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/reproject"
)

func TestGenerate_ProducesLoadableRows(t *testing.T) {
	var buf bytes.Buffer
	opts := options{rows: 400, seed: 7, yearMin: 2015, yearMax: 2020, blankPct: 0.05, badPct: 0.05}
	require.NoError(t, generate(&buf, opts))

	records, err := csvsource.Read(context.Background(), bytes.NewReader(buf.Bytes()), csvsource.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, records, 400)

	projector, err := reproject.NewProjector("EPSG:2263", "EPSG:4326")
	require.NoError(t, err)

	var projected, blank int
	for _, r := range records {
		require.NotNil(t, r.Year)
		assert.GreaterOrEqual(t, *r.Year, 2015)
		assert.LessOrEqual(t, *r.Year, 2020)
		if r.Volume == nil {
			blank++
		}
		p, err := projector.Project(r.WktGeom)
		if err != nil {
			continue
		}
		projected++
		assert.InDelta(t, 40.7, p.Lat, 0.3)
		assert.InDelta(t, -73.95, p.Lon, 0.3)
	}
	assert.Greater(t, projected, 300)
	assert.Positive(t, blank)
	assert.Less(t, projected, 400)
}

func TestGenerate_Deterministic(t *testing.T) {
	opts := options{rows: 50, seed: 1, yearMin: 2017, yearMax: 2022}
	var a, b bytes.Buffer
	require.NoError(t, generate(&a, opts))
	require.NoError(t, generate(&b, opts))
	assert.Equal(t, a.String(), b.String())
}

func TestHourProfile_PeaksAtRushHour(t *testing.T) {
	assert.Greater(t, hourProfile(8), hourProfile(3))
	assert.Greater(t, hourProfile(17), hourProfile(12))
}
