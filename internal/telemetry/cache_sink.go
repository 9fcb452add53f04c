package telemetry

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexraider/api/internal/bot"
	"github.com/freeeve/hexraider/api/internal/repository"
	"github.com/freeeve/hexraider/api/pkg/hexmap"
)

// CacheSink keeps the latest snapshot of a session in the live cache and
// publishes its turns. Failures are logged and never interrupt the game.
type CacheSink struct {
	sessionID string
	cache     repository.SnapshotCache
}

// NewCacheSink creates a CacheSink for the session.
func NewCacheSink(sessionID string, cache repository.SnapshotCache) *CacheSink {
	return &CacheSink{sessionID: sessionID, cache: cache}
}

func (s *CacheSink) Info(string) {}

func (s *CacheSink) Turn(t bot.TurnSummary) {
	data, err := json.Marshal(t)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode turn")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.cache.PublishTurn(ctx, s.sessionID, data); err != nil {
		log.Warn().Err(err).Str("sessionId", s.sessionID).Msg("Failed to publish turn")
	}
}

func (s *CacheSink) Snapshot(snap *hexmap.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode snapshot")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.cache.SetSnapshot(ctx, s.sessionID, data); err != nil {
		log.Warn().Err(err).Str("sessionId", s.sessionID).Msg("Failed to cache snapshot")
	}
}
