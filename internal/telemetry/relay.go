package telemetry

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexraider/api/internal/repository"
)

// Relay forwards turns published to the live cache to spectators, so a
// spectator server can follow a session played by another process.
type Relay struct {
	cache repository.SnapshotCache
	b     Broadcaster
}

// NewRelay creates a Relay.
func NewRelay(cache repository.SnapshotCache, b Broadcaster) *Relay {
	return &Relay{cache: cache, b: b}
}

// Follow relays the session's turns until ctx is cancelled or the
// subscription closes.
func (r *Relay) Follow(ctx context.Context, sessionID string) error {
	turns, unsubscribe, err := r.cache.SubscribeTurns(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unsubscribe()

	log.Info().Str("sessionId", sessionID).Msg("Relaying session turns")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-turns:
			if !ok {
				return nil
			}
			r.b.BroadcastSessionEvent(sessionID, EventTurn, json.RawMessage(msg))
		}
	}
}
