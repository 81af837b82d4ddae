// Package web serves the dashboard JSON API. It is the presentation
// boundary: handlers translate query parameters into filter criteria, run
// the analytics pipeline against the shared read-only table, and emit
// render-ready structures.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/staysight/staysight/internal/ai"
	"github.com/staysight/staysight/internal/listing"
	"github.com/staysight/staysight/internal/logging"
)

//go:embed static/*
var staticFS embed.FS

// Server is the dashboard HTTP server.
type Server struct {
	table    *listing.Table
	narrator *ai.Narrator
	mux      *http.ServeMux
}

// NewServer creates a dashboard server over the canonical table. The
// narrator may be disabled; every endpoint except /api/narrative works
// without it.
func NewServer(table *listing.Table, narrator *ai.Narrator) (*Server, error) {
	s := &Server{
		table:    table,
		narrator: narrator,
		mux:      http.NewServeMux(),
	}

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("creating static sub-fs: %w", err)
	}

	s.mux.Handle("/", http.FileServer(http.FS(staticContent)))
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/meta", s.handleMeta)
	s.mux.HandleFunc("/api/dashboard", s.handleDashboard)
	s.mux.HandleFunc("/api/narrative", s.handleNarrative)

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server with request logging.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, logging.RequestLogger(s))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
