package hexmap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules holds the game constants and scoring priorities shared by the route
// search and the profit scorer. A Rules value is built once and never
// mutated afterwards.
type Rules struct {
	TerrainCost       map[Terrain]float64   `yaml:"terrain_cost"`
	UnitCost          map[UnitType]Treasury `yaml:"unit_cost"`
	UnitScore         map[UnitType]float64  `yaml:"unit_score"`
	UnitResource      map[UnitType]Resource `yaml:"unit_resource"`
	MineDailyScore    float64               `yaml:"mine_daily_score"`
	ResourceGainScore float64               `yaml:"resource_gain_score"`
	GameDuration      float64               `yaml:"game_duration"`
	Priorities        Priorities            `yaml:"priorities"`

	unitByResource map[Resource]UnitType
}

// Priorities are the tuning weights of the profit function.
type Priorities struct {
	MilitiaUtility             float64 `yaml:"militia_utility"`
	GoldMinePriority           float64 `yaml:"gold_mine_priority"`
	EstimatedMiningTime        float64 `yaml:"estimated_mining_time"`
	PotentialMurdersInWar      float64 `yaml:"potential_murders_in_war"`
	PotentialTroopsAcquisition float64 `yaml:"potential_troops_acquisition"`
	MineDepreciation           float64 `yaml:"mine_depreciation"`
	MineSurplusThreshold       int     `yaml:"mine_surplus_threshold"`
	FogBoundaryValue           float64 `yaml:"fog_boundary_value"`
}

// DefaultRules returns the built-in rule table.
func DefaultRules() *Rules {
	r := &Rules{
		TerrainCost: map[Terrain]float64{
			Road:   0.75,
			Grass:  1.0,
			Desert: 1.15,
			Snow:   1.3,
			Marsh:  1.3,
		},
		UnitCost: map[UnitType]Treasury{
			Militia:  {Gold: 10},
			Infantry: {Gold: 20, Iron: 1},
			Ranged:   {Gold: 30, Glass: 1},
			Cavalry:  {Gold: 40, Ebony: 1},
		},
		UnitScore: map[UnitType]float64{
			Militia:  1,
			Infantry: 2,
			Ranged:   3,
			Cavalry:  4,
		},
		UnitResource: map[UnitType]Resource{
			Militia:  Gold,
			Infantry: Iron,
			Ranged:   Glass,
			Cavalry:  Ebony,
		},
		MineDailyScore:    10,
		ResourceGainScore: 1,
		GameDuration:      90,
		Priorities: Priorities{
			MilitiaUtility:             0.3,
			GoldMinePriority:           2.5,
			EstimatedMiningTime:        0.7,
			PotentialMurdersInWar:      1.6,
			PotentialTroopsAcquisition: 0.75,
			MineDepreciation:           0.5,
			MineSurplusThreshold:       5,
			FogBoundaryValue:           1,
		},
	}
	r.index()
	return r
}

// LoadRules reads a YAML file whose values override DefaultRules.
func LoadRules(path string) (*Rules, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(b)
}

// ParseRules decodes YAML overrides on top of DefaultRules and validates the result.
func ParseRules(b []byte) (*Rules, error) {
	r := DefaultRules()
	if err := yaml.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	r.index()
	return r, nil
}

// Validate checks that every unit type can be priced and scored.
func (r *Rules) Validate() error {
	for _, u := range AllUnitTypes() {
		res, ok := r.UnitResource[u]
		if !ok {
			return fmt.Errorf("rules: no resource for unit %s", u)
		}
		cost := r.UnitCost[u]
		if cost[Gold] <= 0 || cost[res] <= 0 {
			return fmt.Errorf("rules: unit %s must cost gold and %s", u, res)
		}
		if _, ok := r.UnitScore[u]; !ok {
			return fmt.Errorf("rules: no score for unit %s", u)
		}
	}
	for t, c := range r.TerrainCost {
		if c <= 0 {
			return fmt.Errorf("rules: terrain %s has non-positive cost %v", t, c)
		}
	}
	return nil
}

func (r *Rules) index() {
	r.unitByResource = make(map[Resource]UnitType, len(r.UnitResource))
	for u, res := range r.UnitResource {
		r.unitByResource[res] = u
	}
}

// Cost returns the price of leaving a cell of the given terrain. Unknown
// terrain costs the same as grass.
func (r *Rules) Cost(t Terrain) float64 {
	if c, ok := r.TerrainCost[t]; ok {
		return c
	}
	return 1.0
}

// UnitFor returns the unit type bought with the given special resource.
func (r *Rules) UnitFor(res Resource) (UnitType, bool) {
	u, ok := r.unitByResource[res]
	return u, ok
}

// AvailableToBuy returns how many units of type u the treasury can pay for.
func (r *Rules) AvailableToBuy(u UnitType, t Treasury) int {
	cost := r.UnitCost[u]
	special := r.UnitResource[u]
	if cost[Gold] <= 0 || cost[special] <= 0 {
		return 0
	}
	n := t[Gold] / cost[Gold]
	if special != Gold {
		n = min(n, t[special]/cost[special])
	}
	return max(n, 0)
}

// Charge deducts the price of count units of type u from the treasury.
func (r *Rules) Charge(u UnitType, count int, t Treasury) {
	for res, price := range r.UnitCost[u] {
		t[res] -= count * price
	}
}

// ArmyScore returns the combat score of an army.
func (r *Rules) ArmyScore(a Army) float64 {
	total := 0.0
	for u, n := range a {
		total += float64(n) * r.UnitScore[u]
	}
	return total
}
