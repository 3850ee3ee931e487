// Package server provides the debug HTTP server of the pinch cursor: cursor
// state, a live state stream, the tracker preview and the selection history.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/pinchcursor/internal/app"
	"github.com/ayusman/pinchcursor/internal/server/api"
	"github.com/ayusman/pinchcursor/internal/store"
)

// DefaultStreamInterval is the push rate of /api/stream and /api/preview.
const DefaultStreamInterval = time.Second / 15

// StateSource returns the result of the last display tick. *app.App
// implements it.
type StateSource interface {
	State() app.State
}

// PreviewSource returns the newest annotated camera frame. *tracker.Preview
// implements it.
type PreviewSource interface {
	Latest() (jpeg []byte, seq uint64)
}

// Config holds the server configuration. Routes are registered only for
// the collaborators that are set.
type Config struct {
	StaticDir      string
	State          StateSource
	Preview        PreviewSource
	Store          *store.Store
	StreamInterval time.Duration
}

// Server is the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a Server with the given configuration.
func New(config Config) *Server {
	if config.StreamInterval <= 0 {
		config.StreamInterval = DefaultStreamInterval
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.State != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.Handle("/api/stream", NewStateStreamHandler(s.config.State, s.config.StreamInterval))
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/preview", NewPreviewHandler(s.config.Preview, s.config.StreamInterval))
	}

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	writeJSON(w, response)
}

// handleState handles GET /api/state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.config.State.State())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// HTTPServer returns an *http.Server for addr that can be shut down.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
