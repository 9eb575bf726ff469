package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/drishti/internal/report"
)

// ResultsHandler serves stored per-question results.
type ResultsHandler struct {
	store *report.Store
}

// NewResultsHandler creates a new ResultsHandler with the given store.
func NewResultsHandler(s *report.Store) *ResultsHandler {
	return &ResultsHandler{store: s}
}

type listResultsResponse struct {
	Session *report.SessionRecord `json:"session"`
	Results []report.Result       `json:"results"`
}

// ServeHTTP routes result requests.
// Expected path: /api/results/{sessionID}
func (h *ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := strings.TrimPrefix(r.URL.Path, "/api/results")
	sessionID = strings.TrimPrefix(sessionID, "/")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	session, err := h.store.Sessions().Get(sessionID)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	results, err := h.store.Results().ListBySession(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list results")
		return
	}
	if results == nil {
		results = []report.Result{}
	}

	writeJSON(w, http.StatusOK, listResultsResponse{Session: session, Results: results})
}
