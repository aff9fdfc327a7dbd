package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/adapter/views"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
)

type mapSettings struct {
	Center  domain.Point `json:"center"`
	Zoom    int          `json:"zoom"`
	SizeMax float64      `json:"size_max"`
}

var defaultMap = mapSettings{
	Center:  domain.Point{Lat: domain.MapCenterLat, Lon: domain.MapCenterLon},
	Zoom:    domain.MapZoom,
	SizeMax: domain.MarkerSizeMax,
}

type optionsResponse struct {
	Years       []int               `json:"years"`
	Hours       []int               `json:"hours"`
	VolumeRange *domain.VolumeRange `json:"volume_range"`
	Views       []views.View        `json:"views"`
	Map         mapSettings         `json:"map"`
	BuildID     string              `json:"build_id"`
	BuiltAt     time.Time           `json:"built_at"`
}

type cellView struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Volume float64 `json:"volume"`
	Color  string  `json:"color"`
	Size   float64 `json:"size"`
}

type cellsResponse struct {
	Year        int                 `json:"year"`
	Hour        int                 `json:"hour"`
	Count       int                 `json:"count"`
	VolumeRange *domain.VolumeRange `json:"volume_range"`
	Cells       []cellView          `json:"cells"`
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	ds := s.data.Dataset()
	if ds == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset is still loading")
		return
	}

	resp := optionsResponse{
		Years:   ds.AvailableYears(),
		Hours:   ds.AvailableHours(),
		Views:   s.views.List(),
		Map:     defaultMap,
		BuildID: ds.BuildID(),
		BuiltAt: ds.BuiltAt(),
	}
	if r, ok := ds.VolumeRange(); ok {
		resp.VolumeRange = &r
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	hour, err := strconv.Atoi(r.URL.Query().Get("hour"))
	if err != nil || hour < 0 || hour > 23 {
		writeError(w, http.StatusBadRequest, "hour must be an integer between 0 and 23")
		return
	}

	ds := s.data.Dataset()
	if ds == nil {
		writeError(w, http.StatusServiceUnavailable, "dataset is still loading")
		return
	}

	cells := ds.CellsFor(year, hour)
	resp := cellsResponse{
		Year:  year,
		Hour:  hour,
		Count: len(cells),
		Cells: make([]cellView, 0, len(cells)),
	}

	// Colour and size use the global range so every year/hour view shares one scale.
	volumes, ok := ds.VolumeRange()
	if ok {
		resp.VolumeRange = &volumes
	}
	for _, c := range cells {
		resp.Cells = append(resp.Cells, cellView{
			Lat:    c.Lat,
			Lon:    c.Lon,
			Volume: c.Volume,
			Color:  domain.VolumeColors.Hex(domain.Normalize(c.Volume, volumes)),
			Size:   domain.MarkerSize(c.Volume, volumes.Max, domain.MarkerSizeMax),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, ok := s.views.Get(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("write view failed", "view", name, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
