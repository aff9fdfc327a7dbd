package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/views"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
)

// DatasetSource exposes the built dataset. Dataset returns nil until the
// build has finished.
type DatasetSource interface {
	sharedobs.ReadinessChecker
	Dataset() *domain.Dataset
}

// ViewSource looks up pre-rendered map documents.
type ViewSource interface {
	Get(name string) ([]byte, bool)
	List() []views.View
}

// Server exposes the dashboard page, its JSON API, the pre-rendered views,
// and the health, readiness and metrics endpoints.
type Server struct {
	httpServer *http.Server
	data       DatasetSource
	views      ViewSource
	logger     *slog.Logger
}

// NewServer wires every route onto a chi router.
func NewServer(addr string, data DatasetSource, viewSource ViewSource, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		data:   data,
		views:  viewSource,
		logger: logger,
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", sharedobs.LivenessHandler())
	router.Get("/readyz", sharedobs.ReadinessHandler(data))
	router.Handle("/metrics", promhttp.Handler())

	router.Get("/", s.handleIndex)
	router.Route("/api", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Get("/cells", s.handleCells)
	})
	router.Get("/views/{name}", s.handleView)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
