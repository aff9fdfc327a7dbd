package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/observability"
)

// Extractor reads every raw record from the source in one shot.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.RawRecord, error)
}

// Options bounds the build.
type Options struct {
	YearMin int
	YearMax int
	Workers int // parallel reprojection workers; values below 1 mean 1
}

// Pipeline builds the aggregated dataset: load, filter, reproject, aggregate.
// The result is published atomically and never changes afterwards.
type Pipeline struct {
	extractor Extractor
	projector domain.Projector
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
	dataset   atomic.Pointer[domain.Dataset]
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, p domain.Projector, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{
		extractor: e,
		projector: p,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
	}
}

// CheckReadiness returns nil once the dataset has been built.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.dataset.Load() == nil {
		return errors.New("dataset has not been built yet")
	}
	return nil
}

// Dataset returns the built dataset, or nil before Build has succeeded.
func (p *Pipeline) Dataset() *domain.Dataset {
	return p.dataset.Load()
}

// Build runs every stage once. Load failures are fatal and returned as is;
// records with bad geometry are dropped and counted.
func (p *Pipeline) Build(ctx context.Context) (*domain.Dataset, error) {
	start := time.Now()
	p.logger.Info("dataset build started",
		"year_min", p.opts.YearMin,
		"year_max", p.opts.YearMax,
		"workers", p.opts.Workers,
	)

	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract records: %w", err)
	}
	p.metrics.RecordsLoaded.Add(float64(len(raw)))

	filtered := domain.FilterRecords(raw, p.opts.YearMin, p.opts.YearMax)
	p.metrics.RecordsFiltered.Add(float64(len(raw) - len(filtered)))

	observations, dropped, err := p.reproject(ctx, filtered)
	if err != nil {
		return nil, fmt.Errorf("reproject records: %w", err)
	}
	p.metrics.GeometryErrors.Add(float64(dropped))

	cells := domain.Aggregate(observations)
	dataset := domain.NewDataset(cells)

	p.dataset.Store(dataset)
	p.metrics.Cells.Set(float64(dataset.Len()))
	p.metrics.DatasetReady.Set(1)
	p.metrics.BuildDuration.Observe(time.Since(start).Seconds())

	volumes, _ := dataset.VolumeRange()
	p.logger.Info("dataset build complete",
		"build_id", dataset.BuildID(),
		"records_loaded", len(raw),
		"records_filtered", len(raw)-len(filtered),
		"geometry_dropped", dropped,
		"cells", dataset.Len(),
		"years", dataset.AvailableYears(),
		"volume_min", volumes.Min,
		"volume_max", volumes.Max,
		"duration", time.Since(start),
	)
	return dataset, nil
}
