// Package telemetry fans the controller's turn reports out to logs, the
// session history, the live cache and spectators.
package telemetry

import (
	"github.com/freeeve/hexraider/api/internal/bot"
	"github.com/freeeve/hexraider/api/pkg/hexmap"
)

// Fanout forwards every report to each of its sinks in order. Sinks that
// implement bot.SnapshotObserver also receive snapshots.
type Fanout []bot.Telemetry

func (f Fanout) Info(msg string) {
	for _, s := range f {
		s.Info(msg)
	}
}

func (f Fanout) Turn(t bot.TurnSummary) {
	for _, s := range f {
		s.Turn(t)
	}
}

func (f Fanout) Snapshot(snap *hexmap.Snapshot) {
	for _, s := range f {
		if obs, ok := s.(bot.SnapshotObserver); ok {
			obs.Snapshot(snap)
		}
	}
}
