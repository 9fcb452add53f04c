package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexraider/api/internal/auth"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 512              // spectators only send subscribe/unsubscribe
	sendBufSize = 256
	lookupWait  = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS handled by middleware
	},
}

// SnapshotSource returns the latest cached snapshot of a session, or nil
// when none is cached.
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, sessionID string) (json.RawMessage, error)
}

// WSHandler serves the read-only spectator feed.
type WSHandler struct {
	hub       *Hub
	signer    *auth.Signer
	snapshots SnapshotSource
}

// NewWSHandler creates a WSHandler. snapshots may be nil, in which case
// late spectators get the hub's own copy of the latest snapshot.
func NewWSHandler(hub *Hub, signer *auth.Signer, snapshots SnapshotSource) *WSHandler {
	return &WSHandler{hub: hub, signer: signer, snapshots: snapshots}
}

// ServeWS handles GET /api/v1/ws?token=...[&session=...]. The token comes
// in the query because browsers cannot set headers on a WebSocket. With a
// session parameter the spectator is subscribed right away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, err := h.signer.ValidateToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, `{"error":"invalid or missing token"}`, http.StatusUnauthorized)
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID != "" && !h.hub.Live(sessionID) {
		http.Error(w, `{"error":"unknown session"}`, http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	s := &Spectator{viewerID: claims.AgentID, send: make(chan []byte, sendBufSize)}
	h.hub.Register(s)
	log.Info().Str("viewerId", s.viewerID).Int("total", h.hub.ConnectionCount()).Msg("Spectator connected")

	go h.writePump(conn, s)
	if sessionID != "" {
		h.handle(r.Context(), s, ClientMessage{Action: "subscribe", SessionID: sessionID})
	}
	go h.readPump(conn, s)
}

// handle applies one spectator request. Failures are reported to the
// spectator as error events.
func (h *WSHandler) handle(ctx context.Context, s *Spectator, msg ClientMessage) {
	if msg.SessionID == "" {
		h.reject(s, msg.SessionID, "session_id is required")
		return
	}
	switch msg.Action {
	case "subscribe":
		if err := h.hub.Subscribe(s, msg.SessionID, h.cachedSnapshot(ctx, msg.SessionID)); err != nil {
			h.reject(s, msg.SessionID, err.Error())
			return
		}
		h.send(s, WSEvent{Type: EventSubscribed, SessionID: msg.SessionID, Data: map[string]int{
			"spectators": h.hub.SessionSubscriberCount(msg.SessionID),
		}})
	case "unsubscribe":
		h.hub.Unsubscribe(s, msg.SessionID)
	default:
		h.reject(s, msg.SessionID, "unknown action "+msg.Action)
	}
}

func (h *WSHandler) cachedSnapshot(ctx context.Context, sessionID string) json.RawMessage {
	if h.snapshots == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, lookupWait)
	defer cancel()
	snap, err := h.snapshots.GetSnapshot(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("sessionId", sessionID).Msg("Snapshot lookup failed")
		return nil
	}
	return snap
}

func (h *WSHandler) reject(s *Spectator, sessionID, reason string) {
	h.send(s, WSEvent{Type: EventError, SessionID: sessionID, Data: map[string]string{"message": reason}})
}

func (h *WSHandler) send(s *Spectator, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal WebSocket event")
		return
	}
	s.push(event.SessionID, data)
}

// readPump serves spectator requests until the connection drops.
func (h *WSHandler) readPump(conn *websocket.Conn, s *Spectator) {
	defer func() {
		h.hub.Unregister(s)
		conn.Close()
		log.Info().Str("viewerId", s.viewerID).Msg("Spectator disconnected")
	}()

	conn.SetReadLimit(maxMsgSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				h.reject(s, "", "malformed message")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("viewerId", s.viewerID).Msg("Spectator closed unexpectedly")
			}
			return
		}
		h.handle(context.Background(), s, msg)
	}
}

// writePump sends one WebSocket message per event and keeps the
// connection alive with pings.
func (h *WSHandler) writePump(conn *websocket.Conn, s *Spectator) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
