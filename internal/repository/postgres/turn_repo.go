package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/hexraider/api/internal/model"
)

// TurnRepo handles per-turn decision records.
type TurnRepo struct {
	db *sql.DB
}

// NewTurnRepo creates a TurnRepo.
func NewTurnRepo(db *sql.DB) *TurnRepo {
	return &TurnRepo{db: db}
}

// Save inserts a turn. Saving the same turn number twice overwrites it.
func (r *TurnRepo) Save(ctx context.Context, t *model.Turn) error {
	army, treasury := jsonOrEmpty(t.Army), jsonOrEmpty(t.Treasury)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO turns (session_id, number, world_time, dead, x, y, category, rationality, steps, army, treasury)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (session_id, number) DO UPDATE SET
		   world_time = EXCLUDED.world_time, dead = EXCLUDED.dead, x = EXCLUDED.x, y = EXCLUDED.y,
		   category = EXCLUDED.category, rationality = EXCLUDED.rationality, steps = EXCLUDED.steps,
		   army = EXCLUDED.army, treasury = EXCLUDED.treasury`,
		t.SessionID, t.Number, t.WorldTime, t.Dead, t.X, t.Y, t.Category, t.Rationality, t.Steps, army, treasury,
	)
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// ListBySession returns the turns of a session in order, at most limit rows.
func (r *TurnRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]model.Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id, number, world_time, dead, x, y, category, rationality, steps, army, treasury, created_at
		 FROM turns WHERE session_id = $1
		 ORDER BY number LIMIT $2`, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		var t model.Turn
		var army, treasury []byte
		if err := rows.Scan(&t.SessionID, &t.Number, &t.WorldTime, &t.Dead, &t.X, &t.Y, &t.Category, &t.Rationality, &t.Steps, &army, &treasury, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.Army, t.Treasury = army, treasury
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func jsonOrEmpty(b []byte) []byte {
	if len(b) == 0 {
		return []byte("{}")
	}
	return b
}

