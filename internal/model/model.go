package model

import (
	"encoding/json"
	"time"
)

// Session is one match played by an agent.
type Session struct {
	ID         string     `json:"id"`
	AgentName  string     `json:"agent_name"`
	Side       string     `json:"side"`
	Level      int        `json:"level"`
	Seed       int64      `json:"seed"`
	Status     string     `json:"status"` // active, finished, failed, cancelled
	Turns      int        `json:"turns"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Session statuses.
const (
	SessionActive    = "active"
	SessionFinished  = "finished"
	SessionFailed    = "failed"
	SessionCancelled = "cancelled"
)

// Turn is the decision recorded for one turn of a session.
type Turn struct {
	SessionID   string          `json:"session_id"`
	Number      int             `json:"number"`
	WorldTime   float64         `json:"world_time"`
	Dead        bool            `json:"dead"`
	X           int             `json:"x"`
	Y           int             `json:"y"`
	Category    string          `json:"category,omitempty"`
	Rationality float64         `json:"rationality"`
	Steps       int             `json:"steps"`
	Army        json.RawMessage `json:"army"`
	Treasury    json.RawMessage `json:"treasury"`
	CreatedAt   time.Time       `json:"created_at"`
}
