package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/views"
)

//go:embed web/index.html
var pageFS embed.FS

var indexTemplate = template.Must(template.ParseFS(pageFS, "web/index.html"))

type indexPage struct {
	Ready   bool
	Years   []int
	Hours   []int
	Views   []views.View
	Map     mapSettings
	BuildID string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := indexPage{
		Views: s.views.List(),
		Map:   defaultMap,
	}
	if ds := s.data.Dataset(); ds != nil {
		page.Ready = true
		page.Years = ds.AvailableYears()
		page.Hours = ds.AvailableHours()
		page.BuildID = ds.BuildID()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		s.logger.Error("render index failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
	}
}
