// Package bot drives a single agent through a game session: it keeps the
// hex grid in sync with the sensor snapshots, scores candidate routes and
// executes the best one step by step.
package bot

import (
	"context"
	"errors"

	"github.com/freeeve/hexraider/api/pkg/hexmap"
)

// ErrSessionEnded is returned by a Session once the match is over.
var ErrSessionEnded = errors.New("session ended")

// Session is the game server as seen by the controller. Every call blocks
// until the server answers with a fresh snapshot.
type Session interface {
	Move(ctx context.Context, dir hexmap.Direction) (*hexmap.Snapshot, error)
	Wait(ctx context.Context, seconds float64) (*hexmap.Snapshot, error)
	HireUnits(ctx context.Context, count int) (*hexmap.Snapshot, error)
}

// TurnSummary describes the decision taken in one turn.
type TurnSummary struct {
	Turn        int             `json:"turn"`
	Time        float64         `json:"time"`
	Dead        bool            `json:"dead"`
	Location    hexmap.Location `json:"location"`
	Category    Category        `json:"category,omitempty"`
	Destination hexmap.Location `json:"destination"`
	Rationality float64         `json:"rationality"`
	Steps       int             `json:"steps"`
	Army        hexmap.Army     `json:"army"`
	Treasury    hexmap.Treasury `json:"treasury"`
}

// Telemetry receives what the controller wants to report. Implementations
// must not block the turn for long.
type Telemetry interface {
	Info(msg string)
	Turn(s TurnSummary)
}

type nopTelemetry struct{}

func (nopTelemetry) Info(string)      {}
func (nopTelemetry) Turn(TurnSummary) {}

// SnapshotObserver is implemented by telemetry that also wants every sensor
// snapshot the controller receives.
type SnapshotObserver interface {
	Snapshot(s *hexmap.Snapshot)
}
