package views

import (
	"log/slog"
	"os"
)

// Source names a pre-rendered HTML document on disk.
type Source struct {
	Name  string
	Title string
	Path  string
}

// View is a document held in memory.
type View struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Available bool   `json:"available"`
	body      []byte
}

// Store serves pre-rendered map documents verbatim. Documents are read once
// at construction; the store is immutable afterwards.
type Store struct {
	views map[string]View
	order []string
}

// Load reads every source. An unreadable file is logged and its view is
// marked unavailable; it never fails the caller.
func Load(sources []Source, logger *slog.Logger) *Store {
	s := &Store{views: make(map[string]View, len(sources))}
	for _, src := range sources {
		v := View{Name: src.Name, Title: src.Title}
		body, err := os.ReadFile(src.Path)
		if err != nil {
			logger.Warn("pre-rendered view unavailable", "view", src.Name, "path", src.Path, "error", err)
		} else {
			v.body = body
			v.Available = true
			logger.Info("pre-rendered view loaded", "view", src.Name, "path", src.Path, "bytes", len(body))
		}
		if _, dup := s.views[src.Name]; !dup {
			s.order = append(s.order, src.Name)
		}
		s.views[src.Name] = v
	}
	return s
}

// Get returns the document for name. The boolean is false when the view is
// unknown or its file could not be read.
func (s *Store) Get(name string) ([]byte, bool) {
	v, ok := s.views[name]
	if !ok || !v.Available {
		return nil, false
	}
	return v.body, true
}

// List returns every configured view in configuration order.
func (s *Store) List() []View {
	out := make([]View, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.views[name])
	}
	return out
}
