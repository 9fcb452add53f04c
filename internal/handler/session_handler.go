package handler

import (
	"net/http"
	"strconv"

	"github.com/freeeve/hexraider/api/internal/repository"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// SessionHandler serves recorded sessions, their turns and the live snapshot.
type SessionHandler struct {
	sessions repository.SessionRepository
	turns    repository.TurnRepository
	cache    repository.SnapshotCache
}

// NewSessionHandler creates a SessionHandler. cache may be nil.
func NewSessionHandler(sessions repository.SessionRepository, turns repository.TurnRepository, cache repository.SnapshotCache) *SessionHandler {
	return &SessionHandler{sessions: sessions, turns: turns, cache: cache}
}

// ListSessions handles GET /api/v1/sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	sessions, err := h.sessions.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// GetSession handles GET /api/v1/sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListTurns handles GET /api/v1/sessions/{id}/turns
func (h *SessionHandler) ListTurns(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	turns, err := h.turns.ListBySession(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if turns == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

// LatestSnapshot handles GET /api/v1/sessions/{id}/snapshot
func (h *SessionHandler) LatestSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshot cache disabled")
		return
	}
	snap, err := h.cache.GetSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "no snapshot")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(snap)
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return 0, false
	}
	return min(n, maxListLimit), true
}
