package repository

import (
	"context"
	"encoding/json"

	"github.com/freeeve/hexraider/api/internal/model"
)

// SessionRepository defines session history operations.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) (*model.Session, error)
	FindByID(ctx context.Context, id string) (*model.Session, error)
	ListRecent(ctx context.Context, limit int) ([]model.Session, error)
	Finish(ctx context.Context, id, status string, turns int) error
}

// TurnRepository defines per-turn decision records.
type TurnRepository interface {
	Save(ctx context.Context, t *model.Turn) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]model.Turn, error)
}

// SnapshotCache defines live session state operations (Redis).
type SnapshotCache interface {
	SetSnapshot(ctx context.Context, sessionID string, snap json.RawMessage) error
	GetSnapshot(ctx context.Context, sessionID string) (json.RawMessage, error)
	PublishTurn(ctx context.Context, sessionID string, turn json.RawMessage) error
	SubscribeTurns(ctx context.Context, sessionID string) (<-chan json.RawMessage, func(), error)
	DeleteSession(ctx context.Context, sessionID string) error
}
