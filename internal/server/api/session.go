// Package api provides HTTP API handlers for the Drishti analysis engine.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ayusman/drishti/internal/analysis"
)

// SessionController is the subset of the application the session handlers
// drive. *app.App satisfies it.
type SessionController interface {
	StartSession() *analysis.Session
	StopSession()
	Manager() *analysis.Manager
}

// SessionHandler handles HTTP requests for the live analysis session.
type SessionHandler struct {
	app SessionController
}

// NewSessionHandler creates a new SessionHandler driving the given controller.
func NewSessionHandler(app SessionController) *SessionHandler {
	return &SessionHandler{app: app}
}

// ServeHTTP routes session requests.
// Expected paths: /api/session, /api/session/question, /api/session/aggregate
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/session":
		switch r.Method {
		case http.MethodPost:
			h.start(w, r)
		case http.MethodGet:
			h.get(w, r)
		case http.MethodDelete:
			h.stop(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "/api/session/question":
		switch r.Method {
		case http.MethodPost:
			h.startQuestion(w, r)
		case http.MethodDelete:
			h.stopQuestion(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "/api/session/aggregate":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.runningAggregate(w, r)
	default:
		http.NotFound(w, r)
	}
}

// Request and response types

type startQuestionRequest struct {
	Index int `json:"index"`
}

type sessionResponse struct {
	ID        string `json:"id"`
	StartedAt string `json:"started_at"`
}

type stopQuestionResponse struct {
	Aggregate *analysis.Aggregate `json:"aggregate"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func toSessionResponse(s *analysis.Session) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		StartedAt: s.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// start handles POST /api/session and begins a session. Starting twice
// returns the existing session.
func (h *SessionHandler) start(w http.ResponseWriter, r *http.Request) {
	s := h.app.StartSession()
	writeJSON(w, http.StatusCreated, toSessionResponse(s))
}

// get handles GET /api/session and returns the live session, if any.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	s := h.app.Manager().Current()
	if s == nil {
		writeError(w, http.StatusNotFound, "No active session")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

// stop handles DELETE /api/session and ends the live session. Stopping with
// no session is a no-op.
func (h *SessionHandler) stop(w http.ResponseWriter, r *http.Request) {
	h.app.StopSession()
	w.WriteHeader(http.StatusNoContent)
}

// startQuestion handles POST /api/session/question and begins per-question
// sampling.
func (h *SessionHandler) startQuestion(w http.ResponseWriter, r *http.Request) {
	var req startQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Index < 0 {
		writeError(w, http.StatusBadRequest, "Question index must not be negative")
		return
	}

	if err := h.app.Manager().StartQuestion(req.Index); err != nil {
		if errors.Is(err, analysis.ErrNoSession) {
			writeError(w, http.StatusConflict, "No active session")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to start question")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// stopQuestion handles DELETE /api/session/question, stops sampling and
// returns the flushed aggregate. The aggregate is null when no valid samples
// were collected.
func (h *SessionHandler) stopQuestion(w http.ResponseWriter, r *http.Request) {
	agg, err := h.app.Manager().StopQuestion()
	if err != nil {
		if errors.Is(err, analysis.ErrNoSession) {
			writeError(w, http.StatusConflict, "No active session")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to stop question")
		return
	}

	writeJSON(w, http.StatusOK, stopQuestionResponse{Aggregate: agg})
}

// runningAggregate handles GET /api/session/aggregate and returns the live
// in-progress aggregate for display.
func (h *SessionHandler) runningAggregate(w http.ResponseWriter, r *http.Request) {
	s := h.app.Manager().Current()
	if s == nil {
		writeError(w, http.StatusNotFound, "No active session")
		return
	}

	agg := s.RunningAggregate(time.Now())
	if agg == nil {
		writeError(w, http.StatusNotFound, "No question being sampled")
		return
	}
	writeJSON(w, http.StatusOK, agg)
}
