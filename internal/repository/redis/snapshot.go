package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshotTTL bounds how long the latest snapshot of an abandoned session
// stays in Redis.
const snapshotTTL = 24 * time.Hour

// Key patterns for Redis session state.
func (c *Client) snapshotKey(sessionID string) string {
	return c.prefix + "session:" + sessionID + ":snapshot"
}

func (c *Client) turnsChannel(sessionID string) string {
	return c.prefix + "session:" + sessionID + ":turns"
}

// SetSnapshot stores the latest sensor snapshot JSON of a session.
func (c *Client) SetSnapshot(ctx context.Context, sessionID string, snap json.RawMessage) error {
	return c.rdb.Set(ctx, c.snapshotKey(sessionID), []byte(snap), snapshotTTL).Err()
}

// GetSnapshot retrieves the latest snapshot JSON, or nil when none is stored.
func (c *Client) GetSnapshot(ctx context.Context, sessionID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, c.snapshotKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return json.RawMessage(data), nil
}

// PublishTurn broadcasts a turn summary to the session's subscribers.
func (c *Client) PublishTurn(ctx context.Context, sessionID string, turn json.RawMessage) error {
	if err := c.rdb.Publish(ctx, c.turnsChannel(sessionID), []byte(turn)).Err(); err != nil {
		return fmt.Errorf("publish turn: %w", err)
	}
	return nil
}

// SubscribeTurns streams turn summaries published for a session. The
// returned function unsubscribes and closes the channel.
func (c *Client) SubscribeTurns(ctx context.Context, sessionID string) (<-chan json.RawMessage, func(), error) {
	sub := c.rdb.Subscribe(ctx, c.turnsChannel(sessionID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("subscribe turns: %w", err)
	}

	out := make(chan json.RawMessage, 16)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- json.RawMessage(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, func() { sub.Close() }, nil
}

// DeleteSession removes all cached data of a session.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, c.snapshotKey(sessionID)).Err()
}
