package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/freeeve/hexraider/api/internal/logger"
	"github.com/freeeve/hexraider/api/pkg/hexmap"
)

// Frame types exchanged with the game server.
const (
	FrameConfigure  = "configure"
	FrameMove       = "move"
	FrameWait       = "wait"
	FrameHire       = "hire"
	FrameSensorData = "sensor_data"
	FrameInfo       = "info"
	FrameGameOver   = "game_over"
	FrameError      = "error"
)

// Frame is the envelope of every websocket message.
type Frame struct {
	Type    string          `json:"type"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SessionParams are sent once when the session is configured.
type SessionParams struct {
	AgentName            string  `json:"agent_name"`
	TimeLimit            float64 `json:"time_limit"`
	OperationalTimeLimit float64 `json:"operational_time_limit"`
	Seed                 int64   `json:"seed"`
	Level                int     `json:"level"`
	LeftSide             bool    `json:"is_on_left_side"`
	SpectacularView      bool    `json:"spectacular_view"`
	DebugMap             bool    `json:"debug_map"`
}

// DefaultSessionParams returns the parameters of a regular ranked match.
func DefaultSessionParams(name string) SessionParams {
	return SessionParams{
		AgentName:            name,
		TimeLimit:            90,
		OperationalTimeLimit: 1000,
		Level:                3,
		LeftSide:             true,
		SpectacularView:      true,
	}
}

// Client is a websocket Session talking to the game server. Requests are
// strictly sequential: each one waits for the next sensor_data frame.
type Client struct {
	name   string
	url    string
	tokens oauth2.TokenSource
	dialer *websocket.Dialer
	onInfo func(string)

	mu       sync.Mutex
	conn     *websocket.Conn
	closed   bool // no more requests
	released bool // conn closed
}

// NewClient creates a client for the given ws:// or http:// server URL.
// tokens may be nil when the server does not require authentication.
func NewClient(name, serverURL string, tokens oauth2.TokenSource) *Client {
	u := strings.TrimRight(serverURL, "/")
	if strings.HasPrefix(u, "http") {
		u = strings.Replace(u, "http", "ws", 1)
	}
	return &Client{
		name:   name,
		url:    u,
		tokens: tokens,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		onInfo: func(string) {},
	}
}

// Name returns the agent name.
func (c *Client) Name() string { return c.name }

// OnInfo registers a callback for informational server messages.
func (c *Client) OnInfo(fn func(string)) {
	if fn == nil {
		fn = func(string) {}
	}
	c.onInfo = fn
}

// Connect opens the websocket, authenticating with a bearer token when a
// token source is set.
func (c *Client) Connect(ctx context.Context) error {
	header := http.Header{}
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("session token: %w", err)
		}
		tok.SetAuthHeader(&http.Request{Header: header})
	}
	conn, _, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return fmt.Errorf("ws dial: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.closed = false
	c.released = false
	c.mu.Unlock()
	log.Debug().Str("agent", c.name).Str("url", c.url).Msg("Connected to game server")
	return nil
}

// Configure starts the session and returns the initial snapshot.
func (c *Client) Configure(ctx context.Context, params SessionParams) (*hexmap.Snapshot, error) {
	return c.request(ctx, FrameConfigure, params)
}

func (c *Client) Move(ctx context.Context, dir hexmap.Direction) (*hexmap.Snapshot, error) {
	return c.request(ctx, FrameMove, map[string]hexmap.Direction{"direction": dir})
}

func (c *Client) Wait(ctx context.Context, seconds float64) (*hexmap.Snapshot, error) {
	return c.request(ctx, FrameWait, map[string]float64{"seconds": seconds})
}

func (c *Client) HireUnits(ctx context.Context, count int) (*hexmap.Snapshot, error) {
	return c.request(ctx, FrameHire, map[string]int{"count": count})
}

// Close sends a normal closure and closes the connection. It is safe to call
// after the session has ended and more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.released {
		return nil
	}
	c.closed = true
	c.released = true
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

func (c *Client) request(ctx context.Context, typ string, payload any) (*hexmap.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return nil, ErrSessionEnded
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", typ, err)
	}

	// Unblock reads and writes when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
		c.conn.SetWriteDeadline(time.Now())
	})
	defer stop()

	logger.LogFrame("send", typ, data)
	if err := c.conn.WriteJSON(Frame{Type: typ, Data: data}); err != nil {
		return nil, c.transportError(ctx, "write "+typ, err)
	}
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return nil, c.transportError(ctx, "read", err)
		}
		var f Frame
		if err := json.Unmarshal(msg, &f); err != nil {
			log.Warn().Err(err).Str("agent", c.name).Msg("Dropping malformed frame")
			continue
		}
		logger.LogFrame("recv", f.Type, msg)
		switch f.Type {
		case FrameSensorData:
			var snap hexmap.Snapshot
			if err := json.Unmarshal(f.Data, &snap); err != nil {
				return nil, fmt.Errorf("decode sensor data: %w", err)
			}
			return &snap, nil
		case FrameInfo:
			c.onInfo(f.Message)
		case FrameGameOver:
			c.closed = true
			return nil, ErrSessionEnded
		case FrameError:
			return nil, fmt.Errorf("%s rejected: %s", typ, f.Message)
		default:
			log.Debug().Str("agent", c.name).Str("type", f.Type).Msg("Ignoring frame")
		}
	}
}

func (c *Client) transportError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, websocket.ErrCloseSent) {
		c.closed = true
		return ErrSessionEnded
	}
	return fmt.Errorf("%s: %w", op, err)
}
