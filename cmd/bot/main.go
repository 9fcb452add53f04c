package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/freeeve/hexraider/api/internal/auth"
	"github.com/freeeve/hexraider/api/internal/bot"
	"github.com/freeeve/hexraider/api/internal/config"
	"github.com/freeeve/hexraider/api/internal/handler"
	"github.com/freeeve/hexraider/api/internal/logger"
	"github.com/freeeve/hexraider/api/internal/middleware"
	"github.com/freeeve/hexraider/api/internal/model"
	"github.com/freeeve/hexraider/api/internal/repository"
	"github.com/freeeve/hexraider/api/internal/repository/postgres"
	redisrepo "github.com/freeeve/hexraider/api/internal/repository/redis"
	"github.com/freeeve/hexraider/api/internal/telemetry"
	"github.com/freeeve/hexraider/api/pkg/hexmap"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	debugMap := flag.Bool("debug-map", false, "ask the server for the full map")
	flag.Parse()

	logger.Init()
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().Str("server", cfg.ServerURL).Str("agent", cfg.AgentName).Msg("Config loaded")

	rules := hexmap.DefaultRules()
	if cfg.RulesPath != "" {
		if rules, err = hexmap.LoadRules(cfg.RulesPath); err != nil {
			log.Fatal().Err(err).Str("path", cfg.RulesPath).Msg("Failed to load rules")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	signer := auth.NewSigner(cfg.Secret)
	var tokens oauth2.TokenSource
	if cfg.UseOAuth() {
		tokens = auth.ClientCredentials{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			TokenURL:     cfg.OAuthTokenURL,
		}.TokenSource(ctx)
	} else {
		tokens = signer.TokenSource(cfg.AgentName, cfg.Side)
	}

	// Session history (optional)
	var (
		db       *sql.DB
		sessions *postgres.SessionRepo
		turns    *postgres.TurnRepo
	)
	if cfg.DatabaseURL != "" {
		if db, err = postgres.Connect(ctx, cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		sessions = postgres.NewSessionRepo(db)
		turns = postgres.NewTurnRepo(db)
	}

	// Live cache (optional)
	var cache *redisrepo.Client
	if cfg.RedisURL != "" {
		if cache, err = redisrepo.NewClient(ctx, cfg.RedisURL, cfg.AgentName); err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer cache.Close()
	}

	sessionID := logger.NewRequestID()
	if sessions != nil {
		s, err := sessions.Create(ctx, &model.Session{
			AgentName: cfg.AgentName,
			Side:      cfg.Side,
			Level:     cfg.Level,
			Seed:      cfg.Seed,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to record session")
		}
		sessionID = s.ID
	}
	ctx = logger.WithSessionID(ctx, sessionID)
	sessionLog := logger.ForSession(ctx)

	sinks := telemetry.Fanout{telemetry.NewLogSink(sessionLog)}
	if turns != nil {
		sinks = append(sinks, telemetry.NewRecordSink(sessionID, turns))
	}
	if cache != nil {
		sinks = append(sinks, telemetry.NewCacheSink(sessionID, cache))
	}

	// Spectator server (optional)
	var (
		srv *http.Server
		hub *handler.Hub
	)
	if cfg.SpectatorPort != "" {
		hub = handler.NewHub()
		hub.Open(sessionID)
		if cache != nil {
			go func() {
				if err := telemetry.NewRelay(cache, hub).Follow(ctx, sessionID); err != nil {
					sessionLog.Error().Err(err).Msg("Turn relay stopped")
				}
			}()
		} else {
			sinks = append(sinks, telemetry.NewHubSink(sessionID, hub))
		}
		srv = newSpectatorServer(cfg, signer, hub, sessions, turns, cache)
		go func() {
			log.Info().Str("port", cfg.SpectatorPort).Msg("Spectator server listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("Spectator server error")
			}
		}()
	}

	client := bot.NewClient(cfg.AgentName, cfg.ServerURL, tokens)
	client.OnInfo(sinks.Info)
	if err := client.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to game server")
	}
	defer client.Close()

	params := bot.DefaultSessionParams(cfg.AgentName)
	params.TimeLimit = cfg.TimeLimit
	params.Seed = cfg.Seed
	params.Level = cfg.Level
	params.LeftSide = cfg.Side == "left"
	params.DebugMap = *debugMap
	initial, err := client.Configure(ctx, params)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure session")
	}

	ctrl := bot.NewController(client, initial,
		bot.WithTelemetry(sinks),
		bot.WithRules(rules),
		bot.WithOracle(hexmap.NewStrengthOracle(rules)),
	)
	runErr := ctrl.Run(ctx)

	status, exitCode := sessionOutcome(runErr)
	switch status {
	case model.SessionCancelled:
		sessionLog.Info().Msg("Received shutdown signal")
	case model.SessionFailed:
		sessionLog.Error().Err(runErr).Msg("Agent failed")
	}

	if sessions != nil {
		finishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := sessions.Finish(finishCtx, sessionID, status, ctrl.Turns()); err != nil {
			sessionLog.Error().Err(err).Msg("Failed to close session record")
		}
		cancel()
	}

	if srv != nil {
		hub.BroadcastSessionEvent(sessionID, handler.EventSessionEnded, map[string]any{
			"status": status,
			"turns":  ctrl.Turns(),
		})
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Spectator server shutdown error")
		}
		cancel()
	}

	sessionLog.Info().Int("turns", ctrl.Turns()).Str("status", status).Msg("Agent stopped")
	if exitCode != 0 {
		client.Close()
		os.Exit(exitCode)
	}
}

// sessionOutcome maps the controller's exit error to the recorded session
// status and the process exit code. A shutdown signal is not a failure.
func sessionOutcome(runErr error) (string, int) {
	switch {
	case runErr == nil:
		return model.SessionFinished, 0
	case errors.Is(runErr, context.Canceled):
		return model.SessionCancelled, 0
	default:
		return model.SessionFailed, 1
	}
}

func newSpectatorServer(cfg *config.Config, signer *auth.Signer, hub *handler.Hub, sessions *postgres.SessionRepo, turns *postgres.TurnRepo, cache *redisrepo.Client) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	var snapshots repository.SnapshotCache
	if cache != nil {
		snapshots = cache
	}

	// Session history needs the database.
	if sessions != nil {
		sessionHandler := handler.NewSessionHandler(sessions, turns, snapshots)
		api := http.NewServeMux()
		api.HandleFunc("GET /sessions", sessionHandler.ListSessions)
		api.HandleFunc("GET /sessions/{id}", sessionHandler.GetSession)
		api.HandleFunc("GET /sessions/{id}/turns", sessionHandler.ListTurns)
		api.HandleFunc("GET /sessions/{id}/snapshot", sessionHandler.LatestSnapshot)
		mux.Handle("/api/v1/", http.StripPrefix("/api/v1", auth.Middleware(signer)(api)))
	}

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", handler.NewWSHandler(hub, signer, snapshots).ServeWS)

	root := middleware.Chain(mux, middleware.Logger, middleware.CORS("*"), middleware.JSON)
	return &http.Server{
		Addr:         ":" + cfg.SpectatorPort,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
