package telemetry

import (
	"github.com/rs/zerolog"

	"github.com/freeeve/hexraider/api/internal/bot"
)

// LogSink writes reports to a zerolog logger.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a LogSink. Pass logger.ForSession to tag entries with
// the session ID.
func NewLogSink(l zerolog.Logger) *LogSink {
	return &LogSink{log: l}
}

func (s *LogSink) Info(msg string) {
	s.log.Info().Str("source", "server").Msg(msg)
}

func (s *LogSink) Turn(t bot.TurnSummary) {
	ev := s.log.Info()
	if t.Category == "" {
		ev = s.log.Debug()
	}
	ev.Int("turn", t.Turn).
		Float64("time", t.Time).
		Bool("dead", t.Dead).
		Str("at", t.Location.String()).
		Str("category", string(t.Category)).
		Float64("rationality", t.Rationality).
		Int("steps", t.Steps).
		Str("army", t.Army.String()).
		Str("treasury", t.Treasury.String()).
		Msg("Turn played")
}
