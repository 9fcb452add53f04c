package handler

// BroadcastSessionEvent implements telemetry.Broadcaster using the WebSocket hub.
func (h *Hub) BroadcastSessionEvent(sessionID string, eventType string, data any) {
	h.BroadcastToSession(sessionID, WSEvent{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
	})
}
