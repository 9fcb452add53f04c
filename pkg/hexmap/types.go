// Package hexmap models the staggered hex battle map seen by the agent: cells,
// their observed occupants, hex adjacency, combat-aware route search and
// resource clustering.
package hexmap

import (
	"fmt"
	"sort"
	"strings"
)

// Terrain is the ground type of a cell. It determines the cost of leaving it.
type Terrain string

const (
	Road   Terrain = "road"
	Grass  Terrain = "grass"
	Desert Terrain = "desert"
	Snow   Terrain = "snow"
	Marsh  Terrain = "marsh"
)

// UnitType identifies a kind of troop.
type UnitType string

const (
	Militia  UnitType = "militia"
	Infantry UnitType = "infantry"
	Ranged   UnitType = "ranged"
	Cavalry  UnitType = "cavalry"
)

// AllUnitTypes returns every unit type, cheapest tier first.
func AllUnitTypes() []UnitType {
	return []UnitType{Militia, Infantry, Ranged, Cavalry}
}

// Resource identifies a kind of treasury resource.
type Resource string

const (
	Gold  Resource = "gold"
	Iron  Resource = "iron"
	Glass Resource = "glass"
	Ebony Resource = "ebony"
)

// Army maps unit types to head counts.
type Army map[UnitType]int

// Clone returns an independent copy of the army. A nil army clones to nil.
func (a Army) Clone() Army {
	if a == nil {
		return nil
	}
	out := make(Army, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Size returns the total number of units.
func (a Army) Size() int {
	n := 0
	for _, v := range a {
		n += v
	}
	return n
}

// String renders the army with unit types in a stable order.
func (a Army) String() string {
	return formatCounts(a)
}

// Treasury maps resources to amounts.
type Treasury map[Resource]int

// Clone returns an independent copy of the treasury.
func (t Treasury) Clone() Treasury {
	out := make(Treasury, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

func (t Treasury) String() string {
	return formatCounts(t)
}

func formatCounts[M ~map[K]int, K ~string](m M) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%d %s", m[K(k)], k)
	}
	return strings.Join(parts, ", ")
}
