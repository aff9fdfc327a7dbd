// Package app assembles the pipeline and its adapters from configuration.
// Both the dashboard service and the trafficctl CLI start from here.
package app

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/csvsource"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/reproject"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/views"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/config"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/observability"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/pipeline"
)

// NewPipeline wires the CSV loader and the cached projector into a pipeline.
func NewPipeline(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Pipeline, error) {
	projector, err := reproject.NewProjector(cfg.SourceCRS, cfg.TargetCRS)
	if err != nil {
		return nil, fmt.Errorf("create projector: %w", err)
	}
	cached, err := reproject.NewCachedProjector(projector, cfg.ProjectionCacheSize, metrics)
	if err != nil {
		return nil, fmt.Errorf("create projection cache: %w", err)
	}

	loader := csvsource.NewLoader(cfg.DataPath, csvsource.Columns{
		Year:     cfg.YearColumn,
		Hour:     cfg.HourColumn,
		Geometry: cfg.GeometryColumn,
		Volume:   cfg.VolumeColumn,
	}, logger)

	logger.Info("pipeline configured",
		"data_path", cfg.DataPath,
		"years", fmt.Sprintf("%d-%d", cfg.YearMin, cfg.YearMax),
		"source_crs", cfg.SourceCRS,
		"target_crs", cfg.TargetCRS,
		"workers", cfg.TransformWorkers,
		"cache_size", cfg.ProjectionCacheSize,
	)

	return pipeline.New(loader, cached, logger, metrics, pipeline.Options{
		YearMin: cfg.YearMin,
		YearMax: cfg.YearMax,
		Workers: cfg.TransformWorkers,
	}), nil
}

// ViewSources lists the pre-rendered maps served next to the live view.
func ViewSources(cfg *config.Config) []views.Source {
	return []views.Source{
		{Name: "bus", Title: "Bus routes", Path: cfg.BusMapPath},
		{Name: "commute", Title: "Commute patterns", Path: cfg.CommuteMapPath},
	}
}
