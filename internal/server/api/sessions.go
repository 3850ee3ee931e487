package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/pinchcursor/internal/store"
)

// DefaultSessionLimit caps GET /api/sessions without a limit parameter.
const DefaultSessionLimit = 50

// SessionHandler serves the selection history.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a SessionHandler over s.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// ServeHTTP routes /api/sessions and /api/sessions/{id}.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, path)
	case http.MethodDelete:
		h.delete(w, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type sessionResponse struct {
	ID            string  `json:"id"`
	StartedAt     string  `json:"started_at"`
	EndedAt       *string `json:"ended_at,omitempty"`
	DisplayWidth  int     `json:"display_width"`
	DisplayHeight int     `json:"display_height"`
	Style         string  `json:"style"`
	Correct       int     `json:"correct"`
	Wrong         int     `json:"wrong"`
}

type selectionResponse struct {
	ID        string  `json:"id"`
	Correct   bool    `json:"correct"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	ChargeMs  int64   `json:"charge_ms"`
	CreatedAt string  `json:"created_at"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type sessionDetailResponse struct {
	Session    sessionResponse     `json:"session"`
	Selections []selectionResponse `json:"selections"`
}

func toSessionResponse(s *store.SessionSummary) sessionResponse {
	resp := sessionResponse{
		ID:            s.ID,
		StartedAt:     s.StartedAt.Format(time.RFC3339),
		DisplayWidth:  s.DisplayWidth,
		DisplayHeight: s.DisplayHeight,
		Style:         s.Style,
		Correct:       s.Correct,
		Wrong:         s.Wrong,
	}
	if s.EndedAt != nil {
		ended := s.EndedAt.Format(time.RFC3339)
		resp.EndedAt = &ended
	}
	return resp
}

func toSelectionResponse(s *store.Selection) selectionResponse {
	return selectionResponse{
		ID:        s.ID,
		Correct:   s.Correct,
		X:         s.X,
		Y:         s.Y,
		ChargeMs:  s.ChargeTime.Milliseconds(),
		CreatedAt: s.CreatedAt.Format(time.RFC3339Nano),
	}
}

// list handles GET /api/sessions?limit=N.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultSessionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id}.
func (h *SessionHandler) get(w http.ResponseWriter, id string) {
	session, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	selections, err := h.store.Selections().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list selections")
		return
	}

	response := sessionDetailResponse{
		Session:    toSessionResponse(session),
		Selections: make([]selectionResponse, 0, len(selections)),
	}
	for _, s := range selections {
		response.Selections = append(response.Selections, toSelectionResponse(s))
	}
	writeJSON(w, http.StatusOK, response)
}

// delete handles DELETE /api/sessions/{id}.
func (h *SessionHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
