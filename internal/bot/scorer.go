package bot

import "github.com/freeeve/hexraider/api/pkg/hexmap"

// Scorer rates candidate routes by profit per unit of travel cost.
type Scorer struct {
	grid   *hexmap.Grid
	rules  *hexmap.Rules
	oracle hexmap.CombatOracle
}

// NewScorer creates a scorer over the grid's rules and combat oracle.
func NewScorer(grid *hexmap.Grid) *Scorer {
	return &Scorer{grid: grid, rules: grid.Rules(), oracle: grid.Oracle()}
}

// Score returns the rationality of following route from the hero's node.
// The snapshot is never modified: hiring and battles are simulated on copies.
// A route that ends in a lost battle scores 0.
func (s *Scorer) Score(route hexmap.SearchResult, snap *hexmap.Snapshot, bunch *hexmap.ResourceBunch, hero *hexmap.Node) float64 {
	if route.Destination == nil || route.Destination == hero {
		return 0
	}

	treasury := snap.MyTreasury.Clone()
	army := snap.MyArmy.Clone()
	profit := 0.0
	for _, n := range route.Chain {
		data := n.Data()
		if data.Dwelling != nil {
			profit += s.dwellingProfit(data.Dwelling, treasury)
		}
		if data.Mine != nil {
			profit += s.mineProfit(data.Mine, snap, treasury)
		}
		if data.ResourcePile != nil {
			profit += s.resourceValue(data.ResourcePile.Resource)
		}
		if s.grid.IsFogBoundary(n) {
			profit += s.rules.Priorities.FogBoundaryValue
		}

		defender := n.DefendingArmy()
		if defender == nil {
			continue
		}
		outcome := s.oracle.Resolve(army.Clone(), defender.Clone())
		if !outcome.AttackerWins {
			profit = 0
			break
		}
		profit += s.rules.ArmyScore(defender)
		army = outcome.Attacker
	}
	if bunch != nil {
		for res, amount := range bunch.Resources() {
			profit += s.resourceValue(res) * float64(amount)
		}
	}
	return profit / s.pathCost(route)
}

func (s *Scorer) dwellingProfit(d *hexmap.Dwelling, treasury hexmap.Treasury) float64 {
	hire := min(s.rules.AvailableToBuy(d.UnitType, treasury), d.AvailableToBuy)
	if hire <= 0 {
		return 0
	}
	s.rules.Charge(d.UnitType, hire, treasury)
	p := s.rules.Priorities
	profit := p.PotentialMurdersInWar * float64(hire) * s.rules.UnitScore[d.UnitType]
	if d.UnitType == hexmap.Militia {
		profit *= p.MilitiaUtility
	}
	return profit
}

func (s *Scorer) mineProfit(m *hexmap.Mine, snap *hexmap.Snapshot, treasury hexmap.Treasury) float64 {
	if m.Owner != "" && m.Owner == snap.MyRespawnSide {
		return 0
	}
	p := s.rules.Priorities
	remaining := max(s.rules.GameDuration-snap.WorldCurrentTime, 0)
	profit := p.EstimatedMiningTime * remaining * s.rules.MineDailyScore
	if m.Resource == hexmap.Gold {
		profit *= p.GoldMinePriority
	}
	if u, ok := s.rules.UnitFor(m.Resource); ok && s.rules.AvailableToBuy(u, treasury) > p.MineSurplusThreshold {
		profit *= p.MineDepreciation
	}
	return profit
}

// resourceValue is the worth of one unit of res: its flat gain plus the
// troops it may help to buy.
func (s *Scorer) resourceValue(res hexmap.Resource) float64 {
	v := s.rules.ResourceGainScore
	if u, ok := s.rules.UnitFor(res); ok {
		v += s.rules.Priorities.PotentialTroopsAcquisition * s.rules.UnitScore[u]
	}
	return v
}

func (s *Scorer) pathCost(route hexmap.SearchResult) float64 {
	if len(route.Chain) <= 1 {
		return 1
	}
	return route.Cost(s.rules)
}
