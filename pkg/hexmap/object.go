package hexmap

import "strings"

// MapObject is the observed content of one cell. Any combination of the
// optional occupants may be present at once.
type MapObject struct {
	Location     Location      `json:"location"`
	Terrain      Terrain       `json:"terrain"`
	Wall         *Wall         `json:"wall,omitempty"`
	Dwelling     *Dwelling     `json:"dwelling,omitempty"`
	Mine         *Mine         `json:"mine,omitempty"`
	ResourcePile *ResourcePile `json:"resource_pile,omitempty"`
	NeutralArmy  *NeutralArmy  `json:"neutral_army,omitempty"`
	Garrison     *Garrison     `json:"garrison,omitempty"`
	Hero         *Hero         `json:"hero,omitempty"`
}

// Wall marks an impassable cell.
type Wall struct{}

// Dwelling sells units of a single type.
type Dwelling struct {
	UnitType       UnitType `json:"unit_type"`
	AvailableToBuy int      `json:"available_to_buy"`
	Owner          string   `json:"owner,omitempty"`
}

// Mine yields a resource every day to its owner.
type Mine struct {
	Resource Resource `json:"resource"`
	Owner    string   `json:"owner,omitempty"`
}

// ResourcePile is a one-shot pickup.
type ResourcePile struct {
	Resource Resource `json:"resource"`
	Amount   int      `json:"amount"`
}

// NeutralArmy guards a cell.
type NeutralArmy struct {
	Army Army `json:"army"`
}

// Garrison is a stationary army left by a player.
type Garrison struct {
	Owner string `json:"owner"`
	Army  Army   `json:"army"`
}

// Hero is another player's roaming army.
type Hero struct {
	Name string `json:"name"`
	Army Army   `json:"army"`
}

// DefendingArmy returns the army that must be beaten to enter the cell:
// the neutral guard if any, otherwise the garrison. Heroes move and are not
// treated as cell defenders.
func (o *MapObject) DefendingArmy() Army {
	if o.NeutralArmy != nil {
		return o.NeutralArmy.Army
	}
	if o.Garrison != nil {
		return o.Garrison.Army
	}
	return nil
}

// String lists the occupants in a compact human-readable form.
func (o *MapObject) String() string {
	parts := []string{string(o.Terrain)}
	if o.Wall != nil {
		parts = append(parts, "wall")
	}
	if o.Dwelling != nil {
		parts = append(parts, "dwelling:"+string(o.Dwelling.UnitType))
	}
	if o.Mine != nil {
		parts = append(parts, "mine:"+string(o.Mine.Resource))
	}
	if o.ResourcePile != nil {
		parts = append(parts, "pile:"+string(o.ResourcePile.Resource))
	}
	if o.NeutralArmy != nil {
		parts = append(parts, "neutrals["+o.NeutralArmy.Army.String()+"]")
	}
	if o.Garrison != nil {
		parts = append(parts, "garrison["+o.Garrison.Army.String()+"]")
	}
	if o.Hero != nil {
		parts = append(parts, "hero:"+o.Hero.Name)
	}
	return strings.Join(parts, " ")
}
