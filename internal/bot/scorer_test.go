package bot

import (
	"math"
	"testing"

	"github.com/freeeve/hexraider/api/pkg/hexmap"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScoreDestinationIsHero(t *testing.T) {
	m := openMap(3, 1)
	place(m, 0, 0, func(o *hexmap.MapObject) { o.Mine = &hexmap.Mine{Resource: hexmap.Gold} })
	g := hexmap.NewGrid(m)
	s := NewScorer(g)

	r := route(g, loc(0, 0))
	if got := s.Score(r, snapshotOf(m, loc(0, 0)), nil, g.At(0, 0)); got != 0 {
		t.Errorf("score of a route ending on the hero = %v, want 0", got)
	}
}

func TestScoreEmptyRoadIsZero(t *testing.T) {
	m := openMap(3, 1)
	place(m, 0, 0, func(o *hexmap.MapObject) { o.Terrain = hexmap.Road })
	g := hexmap.NewGrid(m)

	got := NewScorer(g).Score(route(g, loc(0, 0), loc(1, 0), loc(2, 0)), snapshotOf(m, loc(0, 0)), nil, g.At(0, 0))
	if got != 0 {
		t.Errorf("score of a featureless route = %v, want 0", got)
	}
}

func TestScoreResourcePileAndBunch(t *testing.T) {
	m := openMap(3, 1)
	place(m, 2, 0, func(o *hexmap.MapObject) {
		o.ResourcePile = &hexmap.ResourcePile{Resource: hexmap.Gold, Amount: 10}
	})
	g := hexmap.NewGrid(m)
	s := NewScorer(g)
	r := route(g, loc(0, 0), loc(1, 0), loc(2, 0))
	snap := snapshotOf(m, loc(0, 0))

	// One gold is worth 1 flat + 0.75 * militia score 1. Cost is two grass cells.
	if got := s.Score(r, snap, nil, g.At(0, 0)); !approx(got, 1.75/2) {
		t.Errorf("pile score = %v, want %v", got, 1.75/2)
	}

	bunch := hexmap.NewResourceBunch([]*hexmap.Node{g.At(2, 0)})
	want := (1.75 + 1.75*10) / 2
	if got := s.Score(r, snap, bunch, g.At(0, 0)); !approx(got, want) {
		t.Errorf("bunch score = %v, want %v", got, want)
	}
}

func TestScoreLosingBattleZeroesProfit(t *testing.T) {
	m := openMap(3, 1)
	place(m, 1, 0, func(o *hexmap.MapObject) {
		o.ResourcePile = &hexmap.ResourcePile{Resource: hexmap.Gold, Amount: 5}
	})
	place(m, 2, 0, func(o *hexmap.MapObject) {
		o.Mine = &hexmap.Mine{Resource: hexmap.Gold}
		o.NeutralArmy = &hexmap.NeutralArmy{Army: hexmap.Army{hexmap.Cavalry: 20}}
	})
	g := hexmap.NewGrid(m, hexmap.WithOracle(sizeOracle))

	got := NewScorer(g).Score(route(g, loc(0, 0), loc(1, 0), loc(2, 0)), snapshotOf(m, loc(0, 0)), nil, g.At(0, 0))
	if got != 0 {
		t.Errorf("score of a route ending in a lost battle = %v, want 0", got)
	}
}

func TestScoreBeatenGuardAddsArmyScore(t *testing.T) {
	m := openMap(3, 1)
	place(m, 2, 0, func(o *hexmap.MapObject) {
		o.NeutralArmy = &hexmap.NeutralArmy{Army: hexmap.Army{hexmap.Infantry: 2}}
	})
	g := hexmap.NewGrid(m, hexmap.WithOracle(sizeOracle))

	// Two infantry score 2 * 2; cost is two grass cells.
	got := NewScorer(g).Score(route(g, loc(0, 0), loc(1, 0), loc(2, 0)), snapshotOf(m, loc(0, 0)), nil, g.At(0, 0))
	if !approx(got, 2) {
		t.Errorf("score = %v, want 2", got)
	}
}

func TestScoreSimulatesSurvivors(t *testing.T) {
	// 5 militia beat 2 and keep 3, which lose to the second guard of 4.
	m := openMap(3, 1)
	place(m, 1, 0, func(o *hexmap.MapObject) {
		o.NeutralArmy = &hexmap.NeutralArmy{Army: hexmap.Army{hexmap.Militia: 2}}
	})
	place(m, 2, 0, func(o *hexmap.MapObject) {
		o.NeutralArmy = &hexmap.NeutralArmy{Army: hexmap.Army{hexmap.Militia: 4}}
	})
	g := hexmap.NewGrid(m, hexmap.WithOracle(sizeOracle))

	got := NewScorer(g).Score(route(g, loc(0, 0), loc(1, 0), loc(2, 0)), snapshotOf(m, loc(0, 0)), nil, g.At(0, 0))
	if got != 0 {
		t.Errorf("score = %v, want 0 once the weakened army meets the second guard", got)
	}
}

func TestScoreMine(t *testing.T) {
	tests := []struct {
		name     string
		mine     hexmap.Mine
		treasury hexmap.Treasury
		want     float64
	}{
		// 0.7 * 90 remaining * 10 daily.
		{"iron", hexmap.Mine{Resource: hexmap.Iron}, hexmap.Treasury{}, 630},
		{"gold priority", hexmap.Mine{Resource: hexmap.Gold}, hexmap.Treasury{}, 630 * 2.5},
		{"owned by us", hexmap.Mine{Resource: hexmap.Iron, Owner: "left"}, hexmap.Treasury{}, 0},
		{"owned by enemy", hexmap.Mine{Resource: hexmap.Iron, Owner: "right"}, hexmap.Treasury{}, 630},
		{"surplus depreciates", hexmap.Mine{Resource: hexmap.Iron}, hexmap.Treasury{hexmap.Gold: 200, hexmap.Iron: 10}, 630 * 0.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := openMap(2, 1)
			mine := tc.mine
			place(m, 1, 0, func(o *hexmap.MapObject) { o.Mine = &mine })
			g := hexmap.NewGrid(m)
			snap := snapshotOf(m, loc(0, 0))
			snap.MyTreasury = tc.treasury

			got := NewScorer(g).Score(route(g, loc(0, 0), loc(1, 0)), snap, nil, g.At(0, 0))
			if !approx(got, tc.want) {
				t.Errorf("score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScoreDwelling(t *testing.T) {
	tests := []struct {
		name     string
		dwelling hexmap.Dwelling
		treasury hexmap.Treasury
		want     float64
	}{
		// Iron limits infantry to 2: 1.6 * 2 * score 2.
		{"infantry", hexmap.Dwelling{UnitType: hexmap.Infantry, AvailableToBuy: 3}, hexmap.Treasury{hexmap.Gold: 100, hexmap.Iron: 2}, 6.4},
		// Stock limits infantry to 1.
		{"stock", hexmap.Dwelling{UnitType: hexmap.Infantry, AvailableToBuy: 1}, hexmap.Treasury{hexmap.Gold: 100, hexmap.Iron: 5}, 3.2},
		// 3 militia at utility 0.3: 1.6 * 3 * 1 * 0.3.
		{"militia", hexmap.Dwelling{UnitType: hexmap.Militia, AvailableToBuy: 10}, hexmap.Treasury{hexmap.Gold: 30}, 1.44},
		{"broke", hexmap.Dwelling{UnitType: hexmap.Ranged, AvailableToBuy: 4}, hexmap.Treasury{hexmap.Gold: 10}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := openMap(2, 1)
			d := tc.dwelling
			place(m, 1, 0, func(o *hexmap.MapObject) { o.Dwelling = &d })
			g := hexmap.NewGrid(m)
			snap := snapshotOf(m, loc(0, 0))
			snap.MyTreasury = tc.treasury

			got := NewScorer(g).Score(route(g, loc(0, 0), loc(1, 0)), snap, nil, g.At(0, 0))
			if !approx(got, tc.want) {
				t.Errorf("score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScoreSpendsSimulatedTreasury(t *testing.T) {
	// Two militia dwellings in a row: 30 gold buys 3 units at the first and
	// nothing at the second.
	m := openMap(3, 1)
	for _, x := range []int{1, 2} {
		place(m, x, 0, func(o *hexmap.MapObject) {
			o.Dwelling = &hexmap.Dwelling{UnitType: hexmap.Militia, AvailableToBuy: 10}
		})
	}
	g := hexmap.NewGrid(m)
	snap := snapshotOf(m, loc(0, 0))
	snap.MyTreasury = hexmap.Treasury{hexmap.Gold: 30}

	got := NewScorer(g).Score(route(g, loc(0, 0), loc(1, 0), loc(2, 0)), snap, nil, g.At(0, 0))
	if want := 1.44 / 2; !approx(got, want) {
		t.Errorf("score = %v, want %v", got, want)
	}
	if snap.MyTreasury[hexmap.Gold] != 30 {
		t.Errorf("scoring modified the snapshot treasury: %v", snap.MyTreasury)
	}
}

func TestScoreFogBoundary(t *testing.T) {
	m := openMap(3, 1)
	m.Objects = m.Objects[:2] // (2,0) stays unobserved
	g := hexmap.NewGrid(m)

	// (1,0) borders fog; (0,0) does not.
	got := NewScorer(g).Score(route(g, loc(0, 0), loc(1, 0)), snapshotOf(m, loc(0, 0)), nil, g.At(0, 0))
	if !approx(got, 1) {
		t.Errorf("score = %v, want 1", got)
	}
}

func TestPathCostSingleNode(t *testing.T) {
	g := hexmap.NewGrid(openMap(2, 1))
	s := NewScorer(g)
	if got := s.pathCost(route(g, loc(0, 0))); got != 1 {
		t.Errorf("pathCost of a single node = %v, want 1", got)
	}
	if got := s.pathCost(route(g, loc(0, 0), loc(1, 0))); got != 1 {
		t.Errorf("pathCost of one grass step = %v, want 1", got)
	}
}

func TestScoreMonotonicInObjectives(t *testing.T) {
	objectives := []func(*hexmap.MapObject){
		func(o *hexmap.MapObject) { o.ResourcePile = &hexmap.ResourcePile{Resource: hexmap.Iron, Amount: 3} },
		func(o *hexmap.MapObject) { o.Mine = &hexmap.Mine{Resource: hexmap.Glass} },
		func(o *hexmap.MapObject) {
			o.Dwelling = &hexmap.Dwelling{UnitType: hexmap.Infantry, AvailableToBuy: 2}
		},
	}
	base := openMap(4, 1)
	place(base, 3, 0, func(o *hexmap.MapObject) { o.Mine = &hexmap.Mine{Resource: hexmap.Iron} })
	g := hexmap.NewGrid(base)
	snap := snapshotOf(base, loc(0, 0))
	snap.MyTreasury = hexmap.Treasury{hexmap.Gold: 100, hexmap.Iron: 5}
	r := route(g, loc(0, 0), loc(1, 0), loc(2, 0), loc(3, 0))
	before := NewScorer(g).Score(r, snap, nil, g.At(0, 0))

	for i, add := range objectives {
		m := openMap(4, 1)
		place(m, 3, 0, func(o *hexmap.MapObject) { o.Mine = &hexmap.Mine{Resource: hexmap.Iron} })
		place(m, 1, 0, add)
		g := hexmap.NewGrid(m)
		r := route(g, loc(0, 0), loc(1, 0), loc(2, 0), loc(3, 0))
		if after := NewScorer(g).Score(r, snap, nil, g.At(0, 0)); after < before {
			t.Errorf("objective %d lowered the score from %v to %v", i, before, after)
		}
	}
}
