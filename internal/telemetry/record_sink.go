package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexraider/api/internal/bot"
	"github.com/freeeve/hexraider/api/internal/model"
	"github.com/freeeve/hexraider/api/internal/repository"
)

// writeTimeout bounds every store write made from inside a turn.
const writeTimeout = 2 * time.Second

// RecordSink persists every turn to the session history. Failures are
// logged and never interrupt the game.
type RecordSink struct {
	sessionID string
	turns     repository.TurnRepository
}

// NewRecordSink creates a RecordSink for the session.
func NewRecordSink(sessionID string, turns repository.TurnRepository) *RecordSink {
	return &RecordSink{sessionID: sessionID, turns: turns}
}

func (s *RecordSink) Info(string) {}

func (s *RecordSink) Turn(t bot.TurnSummary) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.turns.Save(ctx, TurnRecord(s.sessionID, t)); err != nil {
		log.Warn().Err(err).Str("sessionId", s.sessionID).Int("turn", t.Turn).Msg("Failed to record turn")
	}
}

// TurnRecord converts a turn summary into its stored form.
func TurnRecord(sessionID string, t bot.TurnSummary) *model.Turn {
	army, _ := json.Marshal(t.Army)
	treasury, _ := json.Marshal(t.Treasury)
	return &model.Turn{
		SessionID:   sessionID,
		Number:      t.Turn,
		WorldTime:   t.Time,
		Dead:        t.Dead,
		X:           t.Location.X,
		Y:           t.Location.Y,
		Category:    string(t.Category),
		Rationality: t.Rationality,
		Steps:       t.Steps,
		Army:        army,
		Treasury:    treasury,
	}
}
