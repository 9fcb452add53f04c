package bot

import (
	"github.com/freeeve/hexraider/api/pkg/hexmap"
)

// openMap returns a fully observed map of the given size covered in grass.
func openMap(width, height int) hexmap.MapData {
	m := hexmap.MapData{Width: width, Height: height}
	for y := range height {
		for x := range width {
			m.Objects = append(m.Objects, hexmap.MapObject{
				Location: hexmap.Location{X: x, Y: y},
				Terrain:  hexmap.Grass,
			})
		}
	}
	return m
}

// place applies fn to the object at (x, y).
func place(m hexmap.MapData, x, y int, fn func(*hexmap.MapObject)) {
	for i := range m.Objects {
		if m.Objects[i].Location == (hexmap.Location{X: x, Y: y}) {
			fn(&m.Objects[i])
			return
		}
	}
	panic("place: no object at location")
}

// sizeOracle lets the larger army win and leaves the attacker one militia
// per unit of margin.
var sizeOracle = hexmap.OracleFunc(func(attacker, defender hexmap.Army) hexmap.CombatOutcome {
	if attacker.Size() > defender.Size() {
		return hexmap.CombatOutcome{
			AttackerWins: true,
			Attacker:     hexmap.Army{hexmap.Militia: attacker.Size() - defender.Size()},
		}
	}
	return hexmap.CombatOutcome{Attacker: hexmap.Army{}, Defender: defender}
})

// route builds a search result walking through the given cells in order.
func route(g *hexmap.Grid, locs ...hexmap.Location) hexmap.SearchResult {
	r := hexmap.SearchResult{}
	for i, loc := range locs {
		n := g.NodeAt(loc)
		r.Chain = append(r.Chain, n)
		if i > 0 {
			r.Track = append(r.Track, r.Chain[i-1].DirectionTo(n))
		}
	}
	r.Destination = r.Chain[len(r.Chain)-1]
	return r
}

func loc(x, y int) hexmap.Location { return hexmap.Location{X: x, Y: y} }

func snapshotOf(m hexmap.MapData, at hexmap.Location) *hexmap.Snapshot {
	return &hexmap.Snapshot{
		Location:      at,
		MyArmy:        hexmap.Army{hexmap.Militia: 5},
		MyTreasury:    hexmap.Treasury{},
		MyRespawnSide: "left",
		Map:           m,
	}
}
