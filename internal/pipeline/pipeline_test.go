package pipeline_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/csvsource"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/reproject"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/observability"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	records []domain.RawRecord
	err     error
}

func (m *mockExtractor) Extract(_ context.Context) ([]domain.RawRecord, error) {
	return m.records, m.err
}

// mapProjector resolves geometries from a fixed table; anything else fails.
type mapProjector struct {
	points map[string]domain.Point
	calls  atomic.Int64
}

func (m *mapProjector) Project(wkt string) (domain.Point, error) {
	m.calls.Add(1)
	pt, ok := m.points[wkt]
	if !ok {
		return domain.Point{}, fmt.Errorf("%w: unknown %q", domain.ErrGeometry, wkt)
	}
	return pt, nil
}

const (
	wktCityHall = "POINT (982593 198980)"
	wktTimesSq  = "POINT (988200 215500)"
	wktBroken   = "POINT (oops)"
)

func newMapProjector() *mapProjector {
	return &mapProjector{points: map[string]domain.Point{
		wktCityHall: {Lat: 40.7128, Lon: -74.0060},
		wktTimesSq:  {Lat: 40.7580, Lon: -73.9855},
	}}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func record(year, hour int, wkt string, vol *float64) domain.RawRecord {
	return domain.RawRecord{Year: domain.IntPtr(year), Hour: domain.IntPtr(hour), WktGeom: wkt, Volume: vol}
}

// --- tests ---

func TestPipeline_Build_MeanScenario(t *testing.T) {
	ext := &mockExtractor{records: []domain.RawRecord{
		record(2020, 5, wktCityHall, domain.FloatPtr(10)),
		record(2020, 5, wktCityHall, domain.FloatPtr(20)),
		record(2019, 5, wktCityHall, domain.FloatPtr(500)),
	}}
	p := pipeline.New(ext, newMapProjector(), discardLogger(), observability.NewMetricsForTesting(),
		pipeline.Options{YearMin: 2020, YearMax: 2020, Workers: 2})

	ds, err := p.Build(context.Background())
	require.NoError(t, err)

	want := []domain.Cell{{Year: 2020, Hour: 5, Lat: 40.7128, Lon: -74.0060, Volume: 15}}
	if diff := cmp.Diff(want, ds.All()); diff != "" {
		t.Fatalf("cells mismatch (-want +got):\n%s", diff)
	}
	assert.Same(t, ds, p.Dataset())
}

func TestPipeline_Build_DropsBadGeometry(t *testing.T) {
	ext := &mockExtractor{records: []domain.RawRecord{
		record(2020, 5, wktCityHall, domain.FloatPtr(10)),
		record(2020, 5, wktBroken, domain.FloatPtr(1000)),
		record(2020, 6, wktTimesSq, domain.FloatPtr(30)),
		{Year: domain.IntPtr(2020), Hour: nil, WktGeom: wktCityHall},
		record(2016, 6, wktTimesSq, domain.FloatPtr(30)),
	}}
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(ext, newMapProjector(), discardLogger(), metrics,
		pipeline.Options{YearMin: 2017, YearMax: 2022, Workers: 4})

	ds, err := p.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Len(t, ds.CellsFor(2020, 5), 1)
	assert.InDelta(t, 10.0, ds.CellsFor(2020, 5)[0].Volume, 0)

	assert.InDelta(t, 5.0, testutil.ToFloat64(metrics.RecordsLoaded), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.RecordsFiltered), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeometryErrors), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.Cells), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.DatasetReady), 0)
}

func TestPipeline_Build_ExtractErrorIsFatal(t *testing.T) {
	ext := &mockExtractor{err: fmt.Errorf("%w: open counts.csv", domain.ErrFileAccess)}
	p := pipeline.New(ext, newMapProjector(), discardLogger(), observability.NewMetricsForTesting(),
		pipeline.Options{YearMin: 2017, YearMax: 2022})

	ds, err := p.Build(context.Background())
	require.Error(t, err)
	assert.Nil(t, ds)
	assert.ErrorIs(t, err, domain.ErrFileAccess)
	assert.Nil(t, p.Dataset())
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_CheckReadiness(t *testing.T) {
	ext := &mockExtractor{records: []domain.RawRecord{record(2020, 1, wktCityHall, domain.FloatPtr(1))}}
	p := pipeline.New(ext, newMapProjector(), discardLogger(), observability.NewMetricsForTesting(),
		pipeline.Options{YearMin: 2017, YearMax: 2022})

	require.Error(t, p.CheckReadiness(context.Background()))

	_, err := p.Build(context.Background())
	require.NoError(t, err)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Build_Cancelled(t *testing.T) {
	records := make([]domain.RawRecord, 0, 5000)
	for i := 0; i < 5000; i++ {
		records = append(records, record(2020, i%24, wktCityHall, domain.FloatPtr(float64(i))))
	}
	p := pipeline.New(&mockExtractor{records: records}, newMapProjector(), discardLogger(),
		observability.NewMetricsForTesting(), pipeline.Options{YearMin: 2017, YearMax: 2022, Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, p.Dataset())
}

func TestPipeline_Build_WorkerCountDoesNotChangeResult(t *testing.T) {
	var records []domain.RawRecord
	for i := 0; i < 997; i++ {
		wkt := wktCityHall
		switch i % 3 {
		case 1:
			wkt = wktTimesSq
		case 2:
			wkt = wktBroken
		}
		records = append(records, record(2017+i%6, i%24, wkt, domain.FloatPtr(float64(i%50)+0.1)))
	}

	build := func(workers int) []domain.Cell {
		p := pipeline.New(&mockExtractor{records: records}, newMapProjector(), discardLogger(),
			observability.NewMetricsForTesting(), pipeline.Options{YearMin: 2017, YearMax: 2022, Workers: workers})
		ds, err := p.Build(context.Background())
		require.NoError(t, err)
		return ds.All()
	}

	sequential := build(1)
	for _, workers := range []int{2, 7, 64, 2000} {
		if diff := cmp.Diff(sequential, build(workers)); diff != "" {
			t.Fatalf("workers=%d changed result (-1 +%d):\n%s", workers, workers, diff)
		}
	}
}

func TestPipeline_Build_EmptyInput(t *testing.T) {
	p := pipeline.New(&mockExtractor{}, newMapProjector(), discardLogger(), observability.NewMetricsForTesting(),
		pipeline.Options{YearMin: 2017, YearMax: 2022, Workers: 3})

	ds, err := p.Build(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ds.Len())
	_, ok := ds.VolumeRange()
	assert.False(t, ok)
}

func TestPipeline_Build_EndToEndWithRealAdapters(t *testing.T) {
	csv := strings.Join([]string{
		"Yr,HH,WktGeom,Vol",
		"2020,5," + quote(wktCityHall) + ",10",
		"2020,5," + quote(wktCityHall) + ",20",
		"2019,5," + quote(wktCityHall) + ",7",
		"2020,5,NOT A POINT,999",
		"2023,5," + quote(wktCityHall) + ",7",
		"",
	}, "\n")
	path := filepath.Join(t.TempDir(), "counts.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	proj, err := reproject.NewProjector("EPSG:2263", "EPSG:4326")
	require.NoError(t, err)
	cached, err := reproject.NewCachedProjector(proj, 16, nil)
	require.NoError(t, err)

	p := pipeline.New(csvsource.NewLoader(path, csvsource.DefaultColumns(), discardLogger()), cached,
		discardLogger(), observability.NewMetricsForTesting(), pipeline.Options{YearMin: 2017, YearMax: 2022, Workers: 2})

	ds, err := p.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2019, 2020}, ds.AvailableYears())
	assert.Equal(t, []int{5}, ds.AvailableHours())

	cells := ds.CellsFor(2020, 5)
	require.Len(t, cells, 1)
	assert.InDelta(t, 15.0, cells[0].Volume, 1e-9)
	assert.InDelta(t, 40.7128, cells[0].Lat, 0.01)
	assert.InDelta(t, -74.0060, cells[0].Lon, 0.01)

	r, ok := ds.VolumeRange()
	require.True(t, ok)
	assert.Equal(t, domain.VolumeRange{Min: 7, Max: 15}, r)
}

func quote(s string) string {
	return `"` + s + `"`
}
