package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hexraider/api/pkg/hexmap"
)

// DefaultWaitInterval is the pause, in game seconds, used when there is
// nothing worth doing.
const DefaultWaitInterval = 0.1

// State is the life state of the agent.
type State int

const (
	Alive State = iota
	Dead
)

func (s State) String() string {
	if s == Dead {
		return "dead"
	}
	return "alive"
}

// Controller owns the grid and the latest snapshot for one session and
// decides one action per turn. It is not safe for concurrent use.
type Controller struct {
	session   Session
	snap      *hexmap.Snapshot
	grid      *hexmap.Grid
	scorer    *Scorer
	telemetry Telemetry
	wait      float64
	rules     *hexmap.Rules
	oracle    hexmap.CombatOracle
	turn      int
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithTelemetry sets where turn summaries and info messages go.
func WithTelemetry(t Telemetry) ControllerOption {
	return func(c *Controller) { c.telemetry = t }
}

// WithWaitInterval sets the idle wait duration.
func WithWaitInterval(seconds float64) ControllerOption {
	return func(c *Controller) { c.wait = seconds }
}

// WithRules sets the rule table for search and scoring.
func WithRules(r *hexmap.Rules) ControllerOption {
	return func(c *Controller) { c.rules = r }
}

// WithOracle sets the combat oracle for search, scoring and attacks.
func WithOracle(o hexmap.CombatOracle) ControllerOption {
	return func(c *Controller) { c.oracle = o }
}

// NewController builds the grid from the initial snapshot returned by the
// session handshake.
func NewController(session Session, initial *hexmap.Snapshot, opts ...ControllerOption) *Controller {
	c := &Controller{
		session:   session,
		snap:      initial,
		telemetry: nopTelemetry{},
		wait:      DefaultWaitInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	var gridOpts []hexmap.Option
	if c.rules != nil {
		gridOpts = append(gridOpts, hexmap.WithRules(c.rules))
	}
	if c.oracle != nil {
		gridOpts = append(gridOpts, hexmap.WithOracle(c.oracle))
	}
	c.grid = hexmap.NewGrid(initial.Map, gridOpts...)
	c.rules = c.grid.Rules()
	c.oracle = c.grid.Oracle()
	c.scorer = NewScorer(c.grid)
	return c
}

// Grid returns the controller's grid.
func (c *Controller) Grid() *hexmap.Grid { return c.grid }

// Snapshot returns the latest sensor snapshot.
func (c *Controller) Snapshot() *hexmap.Snapshot { return c.snap }

// Turns returns the number of turns played so far.
func (c *Controller) Turns() int { return c.turn }

// State reports whether the agent is alive.
func (c *Controller) State() State {
	if c.snap.IsDead {
		return Dead
	}
	return Alive
}

func (c *Controller) location() *hexmap.Node {
	return c.grid.NodeAt(c.snap.Location)
}

// Run plays turns until the session ends or ctx is cancelled. The end of the
// session is a normal exit.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.DoBestStep(ctx)
		if errors.Is(err, ErrSessionEnded) {
			log.Info().Int("turns", c.turn).Msg("Game finished")
			c.telemetry.Info("Game finished")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// DoBestStep plays a single turn.
func (c *Controller) DoBestStep(ctx context.Context) error {
	c.turn++
	summary := TurnSummary{
		Turn:     c.turn,
		Time:     c.snap.WorldCurrentTime,
		Location: c.snap.Location,
	}
	defer func() {
		summary.Army = c.snap.MyArmy
		summary.Treasury = c.snap.MyTreasury
		c.telemetry.Turn(summary)
	}()

	if c.State() == Dead {
		summary.Dead = true
		return c.idle(ctx)
	}

	hero := c.location()
	bunchCand := c.bestBunchCandidate(hero)
	best := bestCandidate([]*PathCandidate{
		c.categoryCandidate(CategoryArmy, hero, c.grid.FindPathsToArmies),
		c.categoryCandidate(CategoryDwelling, hero, c.grid.FindPathsToDwellings),
		c.categoryCandidate(CategoryMine, hero, c.grid.FindPathsToMines),
		c.categoryCandidate(CategoryFog, hero, c.grid.FindPathsToFogBoundary),
		bunchCand,
	})

	if best == nil || best.Rationality <= 0 {
		if err := c.idle(ctx); err != nil {
			return err
		}
	} else {
		summary.Category = best.Category
		summary.Destination = best.Route.Destination.Location()
		summary.Rationality = best.Rationality
		summary.Steps = len(best.Route.Track)
		log.Debug().
			Int("turn", c.turn).
			Str("category", string(best.Category)).
			Str("destination", best.Route.Destination.Location().String()).
			Float64("rationality", best.Rationality).
			Msg("Following route")
		if err := c.follow(ctx, best.Route.Track); err != nil {
			return err
		}
	}

	if bunchCand != nil && bunchCand.Bunch.Contains(c.location()) {
		return c.gather(ctx, bunchCand.Bunch)
	}
	return nil
}

func (c *Controller) categoryCandidate(cat Category, hero *hexmap.Node, find func(*hexmap.Node, hexmap.Army) []hexmap.SearchResult) *PathCandidate {
	var best *PathCandidate
	for _, r := range find(hero, c.snap.MyArmy) {
		cand := &PathCandidate{
			Category:    cat,
			Route:       r,
			Rationality: c.scorer.Score(r, c.snap, nil, hero),
		}
		if cand.Better(best) {
			best = cand
		}
	}
	return best
}

func (c *Controller) bestBunchCandidate(hero *hexmap.Node) *PathCandidate {
	var best *PathCandidate
	for _, br := range c.grid.FindPathsToResourceBunches(hero, c.snap.MyArmy) {
		cand := &PathCandidate{
			Category:    CategoryResourceBunch,
			Route:       br.Route,
			Rationality: c.scorer.Score(br.Route, c.snap, br.Bunch, hero),
			Bunch:       br.Bunch,
		}
		if cand.Better(best) {
			best = cand
		}
	}
	return best
}

func (c *Controller) idle(ctx context.Context) error {
	snap, err := c.session.Wait(ctx, c.wait)
	if err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	c.sync(snap)
	return nil
}

// follow walks track one step at a time. It stops early to attack a beatable
// enemy hero that shows up next to the agent, and hires on non-militia
// dwellings it steps on.
func (c *Controller) follow(ctx context.Context, track []hexmap.Direction) error {
	for _, dir := range track {
		if err := c.move(ctx, dir); err != nil {
			return err
		}
		if target := c.beatableHeroNearby(); target != nil {
			log.Info().
				Str("hero", target.Data().Hero.Name).
				Str("at", target.Location().String()).
				Msg("Attacking hero")
			return c.move(ctx, c.location().DirectionTo(target))
		}
		if err := c.hire(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) move(ctx context.Context, dir hexmap.Direction) error {
	snap, err := c.session.Move(ctx, dir)
	if err != nil {
		return fmt.Errorf("move %s: %w", dir, err)
	}
	c.sync(snap)
	return nil
}

func (c *Controller) beatableHeroNearby() *hexmap.Node {
	for _, n := range c.grid.Neighbors(c.location()) {
		data := n.Data()
		if data == nil || data.Hero == nil {
			continue
		}
		if c.oracle.Resolve(c.snap.MyArmy.Clone(), data.Hero.Army.Clone()).AttackerWins {
			return n
		}
		return nil
	}
	return nil
}

func (c *Controller) hire(ctx context.Context) error {
	d := c.location().Data().Dwelling
	if d == nil || d.UnitType == hexmap.Militia {
		return nil
	}
	count := min(c.rules.AvailableToBuy(d.UnitType, c.snap.MyTreasury), d.AvailableToBuy)
	if count <= 0 {
		return nil
	}
	snap, err := c.session.HireUnits(ctx, count)
	if err != nil {
		return fmt.Errorf("hire %d %s: %w", count, d.UnitType, err)
	}
	c.sync(snap)
	return nil
}

// gather walks every node of the bunch the agent stands in. It panics when
// the agent is outside the bunch.
func (c *Controller) gather(ctx context.Context, bunch *hexmap.ResourceBunch) error {
	start := c.location()
	if !bunch.Contains(start) {
		panic(fmt.Sprintf("bot: gathering bunch from outside node %s", start))
	}
	visit := c.grid.DepthSearch(start, func(n *hexmap.Node) bool {
		return n.Observed() && bunch.Contains(n)
	})

	var track []hexmap.Direction
	for i := 0; i+1 < len(visit); i++ {
		from, to := visit[i], visit[i+1]
		if c.grid.Adjacent(from, to) {
			track = append(track, from.DirectionTo(to))
			continue
		}
		route, ok := c.grid.FindPathTo(from, c.snap.MyArmy, to)
		if !ok {
			log.Debug().Str("from", from.String()).Str("to", to.String()).Msg("Bunch node unreachable, gathering cut short")
			break
		}
		track = append(track, route.Track...)
	}
	log.Debug().Int("nodes", len(visit)).Int("steps", len(track)).Msg("Gathering resource bunch")
	return c.follow(ctx, track)
}

// sync stores a new snapshot and reflects it into the grid.
func (c *Controller) sync(snap *hexmap.Snapshot) {
	c.snap = snap
	c.grid.Update(snap.Map.Objects)
	log.Debug().Msg(describeSnapshot(snap))
	if obs, ok := c.telemetry.(SnapshotObserver); ok {
		obs.Snapshot(snap)
	}
}

var sensorDirections = []struct {
	key string
	dir hexmap.Direction
}{
	{"W", hexmap.Up},
	{"E", hexmap.RightUp},
	{"D", hexmap.RightDown},
	{"S", hexmap.Down},
	{"A", hexmap.LeftDown},
	{"Q", hexmap.LeftUp},
}

// describeSnapshot renders the agent's surroundings on one line.
func describeSnapshot(s *hexmap.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "at %s, treasury %s", s.Location, s.MyTreasury)
	for _, sd := range sensorDirections {
		loc := s.Location.NeighborAt(sd.dir)
		fmt.Fprintf(&b, " | %s: ", sd.key)
		switch {
		case loc.X < 0 || loc.Y < 0 || loc.X >= s.Map.Width || loc.Y >= s.Map.Height:
			b.WriteString("outside")
		case s.ObjectAt(loc) == nil:
			b.WriteString("nothing")
		default:
			b.WriteString(s.ObjectAt(loc).String())
		}
	}
	return b.String()
}
