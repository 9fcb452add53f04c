package config

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ServerURL string
	AgentName string

	// Session credentials. With an OAuth token URL the agent uses the
	// client-credentials flow, otherwise it signs its own JWT with Secret.
	Secret            string
	OAuthClientID     string
	OAuthClientSecret string
	OAuthTokenURL     string

	RulesPath string
	Level     int
	Side      string
	TimeLimit float64
	Seed      int64

	// Optional telemetry backends; empty disables them.
	RedisURL      string
	DatabaseURL   string
	SpectatorPort string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ServerURL:         envOrDefault("HOMM_SERVER_URL", "ws://127.0.0.1:18700/session"),
		AgentName:         envOrDefault("HOMM_AGENT_NAME", "hexraider"),
		Secret:            envOrDefault("HOMM_SECRET", "dev-secret-change-me"),
		OAuthClientID:     os.Getenv("HOMM_OAUTH_CLIENT_ID"),
		OAuthClientSecret: os.Getenv("HOMM_OAUTH_CLIENT_SECRET"),
		OAuthTokenURL:     os.Getenv("HOMM_OAUTH_TOKEN_URL"),
		RulesPath:         os.Getenv("HOMM_RULES_PATH"),
		Side:              envOrDefault("HOMM_SIDE", "left"),
		RedisURL:          os.Getenv("REDIS_URL"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SpectatorPort:     os.Getenv("SPECTATOR_PORT"),
	}

	var err error
	if cfg.Level, err = strconv.Atoi(envOrDefault("HOMM_LEVEL", "3")); err != nil {
		return nil, fmt.Errorf("HOMM_LEVEL: %w", err)
	}
	if cfg.TimeLimit, err = strconv.ParseFloat(envOrDefault("HOMM_TIME_LIMIT", "90"), 64); err != nil {
		return nil, fmt.Errorf("HOMM_TIME_LIMIT: %w", err)
	}
	// Every session gets a fresh map unless a seed is pinned.
	if v := os.Getenv("HOMM_SEED"); v != "" {
		if cfg.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("HOMM_SEED: %w", err)
		}
	} else {
		cfg.Seed = int64(rand.Int32())
	}
	if cfg.Side != "left" && cfg.Side != "right" {
		return nil, fmt.Errorf("HOMM_SIDE: must be left or right, got %q", cfg.Side)
	}
	return cfg, nil
}

// UseOAuth reports whether session tokens come from an OAuth2 token endpoint.
func (c *Config) UseOAuth() bool { return c.OAuthTokenURL != "" }

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
