package handler

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Event types sent to spectators.
const (
	EventTurn         = "turn"
	EventInfo         = "info"
	EventSnapshot     = "snapshot"
	EventSessionEnded = "session_ended"
	EventSubscribed   = "subscribed"
	EventError        = "error"
)

// ErrUnknownSession is returned when a spectator asks for a session that is
// not being played by this process.
var ErrUnknownSession = errors.New("unknown session")

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Data      any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action    string `json:"action"` // "subscribe" or "unsubscribe"
	SessionID string `json:"session_id"`
}

// Spectator is one read-only viewer connection.
type Spectator struct {
	viewerID string
	send     chan []byte
}

// push queues a frame without blocking. Slow spectators lose frames.
func (s *Spectator) push(sessionID string, data []byte) {
	select {
	case s.send <- data:
	default:
		log.Warn().Str("viewerId", s.viewerID).Str("sessionId", sessionID).Msg("Dropping spectator frame, buffer full")
	}
}

// Hub fans session events out to spectators. Only sessions opened on the
// hub can be watched, and the last snapshot of each is kept so a late
// spectator sees the map straight away.
type Hub struct {
	mu       sync.RWMutex
	viewers  map[*Spectator]bool
	watchers map[string]map[*Spectator]bool // sessionID -> spectators
	live     map[string]bool
	latest   map[string]json.RawMessage // sessionID -> last snapshot
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		viewers:  make(map[*Spectator]bool),
		watchers: make(map[string]map[*Spectator]bool),
		live:     make(map[string]bool),
		latest:   make(map[string]json.RawMessage),
	}
}

// Open makes a session available to spectators.
func (h *Hub) Open(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.live[sessionID] = true
}

// Live reports whether the session can be watched.
func (h *Hub) Live(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.live[sessionID]
}

// Register adds a spectator to the hub.
func (h *Hub) Register(s *Spectator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewers[s] = true
}

// Unregister drops a spectator and everything it watches, then closes its
// send queue.
func (h *Hub) Unregister(s *Spectator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.viewers[s] {
		return
	}
	delete(h.viewers, s)
	for sessionID := range h.watchers {
		h.unwatch(s, sessionID)
	}
	close(s.send)
}

// Subscribe starts feeding a live session to s. The spectator first gets
// the latest snapshot: the hub's own copy, or fallback when the hub has
// not seen one (snapshots cached elsewhere).
func (h *Hub) Subscribe(s *Spectator, sessionID string, fallback json.RawMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.live[sessionID] {
		return ErrUnknownSession
	}
	if h.watchers[sessionID] == nil {
		h.watchers[sessionID] = make(map[*Spectator]bool)
	}
	h.watchers[sessionID][s] = true

	snap := h.latest[sessionID]
	if snap == nil {
		snap = fallback
	}
	if snap != nil {
		if data, err := json.Marshal(WSEvent{Type: EventSnapshot, SessionID: sessionID, Data: snap}); err == nil {
			s.push(sessionID, data)
		}
	}
	return nil
}

// Unsubscribe stops feeding a session to s.
func (h *Hub) Unsubscribe(s *Spectator, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unwatch(s, sessionID)
}

func (h *Hub) unwatch(s *Spectator, sessionID string) {
	if set, ok := h.watchers[sessionID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.watchers, sessionID)
		}
	}
}

// BroadcastToSession sends an event to every spectator of the session.
// Snapshots are remembered for late spectators; once the session ends it is
// closed to new ones.
func (h *Hub) BroadcastToSession(sessionID string, event WSEvent) {
	var snap json.RawMessage
	if event.Type == EventSnapshot {
		raw, err := json.Marshal(event.Data)
		if err != nil {
			log.Error().Err(err).Str("sessionId", sessionID).Msg("Failed to marshal snapshot")
			return
		}
		snap = raw
		event.Data = snap
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	switch event.Type {
	case EventSnapshot:
		if h.live[sessionID] {
			h.latest[sessionID] = snap
		}
	case EventSessionEnded:
		delete(h.live, sessionID)
		delete(h.latest, sessionID)
	}
	for s := range h.watchers[sessionID] {
		s.push(sessionID, data)
	}
}

// ConnectionCount returns the number of connected spectators.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers)
}

// SessionSubscriberCount returns the number of spectators of a session.
func (h *Hub) SessionSubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[sessionID])
}
