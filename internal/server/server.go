// Package server provides the HTTP server for the Drishti analysis engine.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/drishti/internal/app"
	"github.com/ayusman/drishti/internal/report"
	"github.com/ayusman/drishti/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *report.Store
	App       *app.App
}

// Server represents the HTTP server for the Drishti application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Session and question control, plus the live score feed
	if s.config.App != nil {
		sessionHandler := api.NewSessionHandler(s.config.App)
		s.mux.Handle("/api/session", sessionHandler)
		s.mux.Handle("/api/session/", sessionHandler)

		scoresHandler := NewScoresHandler(s.config.App.Manager())
		s.mux.Handle("/api/scores", scoresHandler)

		streamHandler := NewStreamHandler(s.config.App.Camera())
		s.mux.Handle("/api/stream", streamHandler)
	}

	// Stored results need the local store
	if s.config.Store != nil {
		resultsHandler := api.NewResultsHandler(s.config.Store)
		s.mux.Handle("/api/results", resultsHandler)
		s.mux.Handle("/api/results/", resultsHandler)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
