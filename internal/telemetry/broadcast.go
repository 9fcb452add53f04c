package telemetry

import (
	"github.com/freeeve/hexraider/api/internal/bot"
	"github.com/freeeve/hexraider/api/pkg/hexmap"
)

// Event types pushed to spectators. They match the handler package's
// WebSocket event names.
const (
	EventTurn     = "turn"
	EventInfo     = "info"
	EventSnapshot = "snapshot"
)

// Broadcaster sends real-time events to connected spectators.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastSessionEvent(sessionID string, eventType string, data any)
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastSessionEvent(string, string, any) {}

// HubSink pushes reports of one session straight to spectators.
type HubSink struct {
	sessionID string
	b         Broadcaster
}

// NewHubSink creates a HubSink for the session.
func NewHubSink(sessionID string, b Broadcaster) *HubSink {
	return &HubSink{sessionID: sessionID, b: b}
}

func (s *HubSink) Info(msg string) {
	s.b.BroadcastSessionEvent(s.sessionID, EventInfo, map[string]string{"message": msg})
}

func (s *HubSink) Turn(t bot.TurnSummary) {
	s.b.BroadcastSessionEvent(s.sessionID, EventTurn, t)
}

func (s *HubSink) Snapshot(snap *hexmap.Snapshot) {
	s.b.BroadcastSessionEvent(s.sessionID, EventSnapshot, snap)
}
