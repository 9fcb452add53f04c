package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/hexraider/api/internal/model"
)

// SessionRepo handles session database operations.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts a new active session and returns it with its generated ID.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) (*model.Session, error) {
	out := *s
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO sessions (agent_name, side, level, seed, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, status, started_at`,
		s.AgentName, s.Side, s.Level, s.Seed, model.SessionActive,
	).Scan(&out.ID, &out.Status, &out.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &out, nil
}

// FindByID returns a session, or nil when it does not exist.
func (r *SessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT id, agent_name, side, level, seed, status, turns, started_at, finished_at
		 FROM sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.AgentName, &s.Side, &s.Level, &s.Seed, &s.Status, &s.Turns, &s.StartedAt, &s.FinishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &s, nil
}

// ListRecent returns the latest sessions, newest first.
func (r *SessionRepo) ListRecent(ctx context.Context, limit int) ([]model.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, agent_name, side, level, seed, status, turns, started_at, finished_at
		 FROM sessions ORDER BY started_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.AgentName, &s.Side, &s.Level, &s.Seed, &s.Status, &s.Turns, &s.StartedAt, &s.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Finish marks a session as ended.
func (r *SessionRepo) Finish(ctx context.Context, id, status string, turns int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET status = $2, turns = $3, finished_at = now() WHERE id = $1`,
		id, status, turns,
	)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}
