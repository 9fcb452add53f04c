package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client for live session state. Every key and
// channel is namespaced so several agents can share one server.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// NewClient connects to Redis and namespaces keys under the agent name.
func NewClient(ctx context.Context, redisURL, agentName string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if opts.ClientName == "" {
		opts.ClientName = agentName
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{rdb: rdb, prefix: keyPrefix(agentName)}, nil
}

func keyPrefix(agentName string) string {
	name := strings.TrimSpace(agentName)
	if name == "" {
		return ""
	}
	return strings.ReplaceAll(name, ":", "_") + ":"
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
