// Command dashboard builds the traffic volume dataset from the configured CSV
// and serves the interactive map, its JSON API and the pre-rendered views.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/views"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/app"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/config"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/observability"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("dashboard failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	p, err := app.NewPipeline(cfg, logger, metrics)
	if err != nil {
		return err
	}
	store := views.Load(app.ViewSources(cfg), logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, store, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var writer *kafkaadapter.Writer
	onBuilt := func(ctx context.Context, ds *domain.Dataset) {
		if cfg.KafkaEnabled {
			writer = kafkaadapter.NewWriter(cfg, logger, metrics)
			go publish(ctx, writer, ds, cfg.BatchSize, logger)
		}
	}

	err = serve(ctx, srv, p, onBuilt, cfg.ShutdownTimeout, logger)

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err == nil {
		logger.Info("shutdown complete")
	}
	return err
}

type server interface {
	Start() error
	Shutdown(ctx context.Context) error
}

type builder interface {
	Build(ctx context.Context) (*domain.Dataset, error)
}

// serve runs the HTTP server alongside the dataset build and blocks until ctx
// is cancelled. A listener failure or a build failure is returned; only a
// cancelled ctx ends in a nil error.
func serve(ctx context.Context, srv server, b builder, onBuilt func(context.Context, *domain.Dataset), shutdownTimeout time.Duration, logger *slog.Logger) error {
	buildCtx, cancelBuild := context.WithCancel(ctx)
	defer cancelBuild()

	// Liveness is served while the dataset builds; readiness flips once it is stored.
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
			cancelBuild()
		}
	}()

	ds, err := b.Build(buildCtx)
	if err != nil {
		shutdown(srv, shutdownTimeout, logger)
		select {
		case serr := <-srvErr:
			return fmt.Errorf("http server: %w", serr)
		default:
		}
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	onBuilt(ctx, ds)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdown(srv, shutdownTimeout, logger)
		return nil
	case serr := <-srvErr:
		shutdown(srv, shutdownTimeout, logger)
		return fmt.Errorf("http server: %w", serr)
	}
}

// publish exports the dataset once. Failures are logged and never stop the
// dashboard.
func publish(ctx context.Context, w *kafkaadapter.Writer, ds *domain.Dataset, batchSize int, logger *slog.Logger) {
	if err := w.Publish(ctx, ds, batchSize); err != nil {
		logger.Error("publish cells failed", "error", err, "build_id", ds.BuildID())
	}
}

func shutdown(srv server, timeout time.Duration, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
}
