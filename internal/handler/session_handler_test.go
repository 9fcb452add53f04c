package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/freeeve/hexraider/api/internal/model"
)

// --- Mock Repositories ---

type mockSessionRepo struct {
	sessions map[string]*model.Session
	err      error
}

func (m *mockSessionRepo) Create(_ context.Context, s *model.Session) (*model.Session, error) {
	m.sessions[s.ID] = s
	return s, nil
}

func (m *mockSessionRepo) FindByID(_ context.Context, id string) (*model.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sessions[id], nil
}

func (m *mockSessionRepo) ListRecent(_ context.Context, limit int) ([]model.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Session
	for _, s := range m.sessions {
		if len(out) == limit {
			break
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockSessionRepo) Finish(_ context.Context, id, status string, turns int) error {
	return nil
}

type mockTurnRepo struct {
	turns     []model.Turn
	lastLimit int
}

func (m *mockTurnRepo) Save(_ context.Context, t *model.Turn) error {
	m.turns = append(m.turns, *t)
	return nil
}

func (m *mockTurnRepo) ListBySession(_ context.Context, sessionID string, limit int) ([]model.Turn, error) {
	m.lastLimit = limit
	var out []model.Turn
	for _, t := range m.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

type mockCache struct {
	snapshots map[string]json.RawMessage
}

func (m *mockCache) SetSnapshot(_ context.Context, id string, snap json.RawMessage) error {
	m.snapshots[id] = snap
	return nil
}

func (m *mockCache) GetSnapshot(_ context.Context, id string) (json.RawMessage, error) {
	return m.snapshots[id], nil
}

func (m *mockCache) PublishTurn(context.Context, string, json.RawMessage) error { return nil }

func (m *mockCache) SubscribeTurns(context.Context, string) (<-chan json.RawMessage, func(), error) {
	return nil, func() {}, nil
}

func (m *mockCache) DeleteSession(_ context.Context, id string) error {
	delete(m.snapshots, id)
	return nil
}

func newTestSessionHandler() (*SessionHandler, *mockSessionRepo, *mockTurnRepo, *mockCache) {
	sessions := &mockSessionRepo{sessions: map[string]*model.Session{
		"s1": {ID: "s1", AgentName: "raider", Side: "left", Level: 3, Status: model.SessionActive, StartedAt: time.Now()},
	}}
	turns := &mockTurnRepo{turns: []model.Turn{
		{SessionID: "s1", Number: 1, Category: "mine"},
		{SessionID: "s1", Number: 2, Category: "fog"},
		{SessionID: "s2", Number: 1},
	}}
	cache := &mockCache{snapshots: map[string]json.RawMessage{"s1": json.RawMessage(`{"world_current_time":3}`)}}
	return NewSessionHandler(sessions, turns, cache), sessions, turns, cache
}

func serve(h http.HandlerFunc, pattern, target string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestListTurns(t *testing.T) {
	h, _, turns, _ := newTestSessionHandler()
	rec := serve(h.ListTurns, "GET /sessions/{id}/turns", "/sessions/s1/turns")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []model.Turn
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 turns, got %d", len(got))
	}
	if turns.lastLimit != defaultListLimit {
		t.Errorf("limit = %d, want default %d", turns.lastLimit, defaultListLimit)
	}
}

func TestListTurnsEmptyIsArray(t *testing.T) {
	h, _, _, _ := newTestSessionHandler()
	rec := serve(h.ListTurns, "GET /sessions/{id}/turns", "/sessions/none/turns")
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", body)
	}
}

func TestListTurnsLimit(t *testing.T) {
	h, _, turns, _ := newTestSessionHandler()

	rec := serve(h.ListTurns, "GET /sessions/{id}/turns", "/sessions/s1/turns?limit=5000")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if turns.lastLimit != maxListLimit {
		t.Errorf("limit = %d, want capped %d", turns.lastLimit, maxListLimit)
	}

	for _, bad := range []string{"0", "-3", "ten"} {
		rec := serve(h.ListTurns, "GET /sessions/{id}/turns", "/sessions/s1/turns?limit="+bad)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", bad, rec.Code)
		}
	}
}

func TestGetSession(t *testing.T) {
	h, sessions, _, _ := newTestSessionHandler()

	rec := serve(h.GetSession, "GET /sessions/{id}", "/sessions/s1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var s model.Session
	json.Unmarshal(rec.Body.Bytes(), &s)
	if s.AgentName != "raider" {
		t.Errorf("unexpected session %+v", s)
	}

	if rec := serve(h.GetSession, "GET /sessions/{id}", "/sessions/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	sessions.err = errors.New("db down")
	if rec := serve(h.GetSession, "GET /sessions/{id}", "/sessions/s1"); rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestListSessions(t *testing.T) {
	h, _, _, _ := newTestSessionHandler()
	rec := serve(h.ListSessions, "GET /sessions", "/sessions")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []model.Session
	json.Unmarshal(rec.Body.Bytes(), &got)
	if len(got) != 1 {
		t.Errorf("expected 1 session, got %d", len(got))
	}
}

func TestLatestSnapshot(t *testing.T) {
	h, _, _, _ := newTestSessionHandler()

	rec := serve(h.LatestSnapshot, "GET /sessions/{id}/snapshot", "/sessions/s1/snapshot")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"world_current_time":3}` {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	if rec := serve(h.LatestSnapshot, "GET /sessions/{id}/snapshot", "/sessions/s9/snapshot"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	noCache := NewSessionHandler(&mockSessionRepo{}, &mockTurnRepo{}, nil)
	if rec := serve(noCache.LatestSnapshot, "GET /sessions/{id}/snapshot", "/sessions/s1/snapshot"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without cache, got %d", rec.Code)
	}
}
