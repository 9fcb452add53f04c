package hexmap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRulesValid(t *testing.T) {
	r := DefaultRules()
	if err := r.Validate(); err != nil {
		t.Fatalf("default rules invalid: %v", err)
	}
	for _, u := range AllUnitTypes() {
		res := r.UnitResource[u]
		got, ok := r.UnitFor(res)
		if !ok || got != u {
			t.Errorf("UnitFor(%s) = %s, %v; want %s", res, got, ok, u)
		}
	}
	if r.Cost(Road) >= r.Cost(Grass) {
		t.Error("road should be cheaper than grass")
	}
	if r.Cost(Terrain("lava")) != 1.0 {
		t.Error("unknown terrain should cost 1")
	}
}

func TestAvailableToBuy(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		name string
		unit UnitType
		t    Treasury
		want int
	}{
		{"militia gold only", Militia, Treasury{Gold: 35}, 3},
		{"infantry limited by iron", Infantry, Treasury{Gold: 100, Iron: 2}, 2},
		{"infantry limited by gold", Infantry, Treasury{Gold: 45, Iron: 9}, 2},
		{"cavalry without ebony", Cavalry, Treasury{Gold: 400}, 0},
		{"empty treasury", Ranged, Treasury{}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.AvailableToBuy(tc.unit, tc.t); got != tc.want {
				t.Errorf("AvailableToBuy = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestChargeDeductsOnce(t *testing.T) {
	r := DefaultRules()
	tr := Treasury{Gold: 100, Iron: 5}
	r.Charge(Militia, 3, tr)
	if tr[Gold] != 70 {
		t.Errorf("gold after 3 militia = %d, want 70", tr[Gold])
	}
	r.Charge(Infantry, 2, tr)
	if tr[Gold] != 30 || tr[Iron] != 3 {
		t.Errorf("after 2 infantry got %s, want gold 30 iron 3", tr)
	}
}

func TestArmyScore(t *testing.T) {
	r := DefaultRules()
	if got := r.ArmyScore(Army{Militia: 2, Cavalry: 1}); got != 6 {
		t.Errorf("ArmyScore = %v, want 6", got)
	}
	if got := r.ArmyScore(nil); got != 0 {
		t.Errorf("ArmyScore(nil) = %v, want 0", got)
	}
}

func TestParseRulesOverridesDefaults(t *testing.T) {
	r, err := ParseRules([]byte(`
terrain_cost:
  marsh: 2.5
priorities:
  gold_mine_priority: 4
`))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	if r.Cost(Marsh) != 2.5 {
		t.Errorf("marsh cost = %v, want 2.5", r.Cost(Marsh))
	}
	if r.Cost(Road) != 0.75 {
		t.Errorf("road cost = %v, want default 0.75", r.Cost(Road))
	}
	if r.Priorities.GoldMinePriority != 4 {
		t.Errorf("gold mine priority = %v, want 4", r.Priorities.GoldMinePriority)
	}
	if r.Priorities.MilitiaUtility != 0.3 {
		t.Errorf("militia utility = %v, want default 0.3", r.Priorities.MilitiaUtility)
	}
	if _, ok := r.UnitFor(Ebony); !ok {
		t.Error("parsed rules should be indexed")
	}
}

func TestParseRulesRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"missing special cost": "unit_cost:\n  infantry:\n    gold: 20\n",
		"zero terrain cost":    "terrain_cost:\n  grass: 0\n",
		"bad yaml":             "terrain_cost: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseRules([]byte(doc)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("mine_daily_score: 12\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	r, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if r.MineDailyScore != 12 {
		t.Errorf("mine daily score = %v, want 12", r.MineDailyScore)
	}

	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}
