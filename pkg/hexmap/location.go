package hexmap

import "fmt"

// Direction is one of the six hex moves.
type Direction string

const (
	Up        Direction = "up"
	Down      Direction = "down"
	LeftUp    Direction = "left_up"
	LeftDown  Direction = "left_down"
	RightUp   Direction = "right_up"
	RightDown Direction = "right_down"
)

// AllDirections returns the six directions in a fixed order.
func AllDirections() []Direction {
	return []Direction{Up, Down, LeftUp, LeftDown, RightUp, RightDown}
}

// Location is a cell coordinate. Columns are staggered: the diagonal
// neighbors of an odd column sit half a cell lower than those of an even one.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Offsets for even and odd columns, keyed by direction.
var (
	evenColumnOffsets = map[Direction]Location{
		Up: {0, -1}, Down: {0, 1},
		LeftUp: {-1, -1}, LeftDown: {-1, 0},
		RightUp: {1, -1}, RightDown: {1, 0},
	}
	oddColumnOffsets = map[Direction]Location{
		Up: {0, -1}, Down: {0, 1},
		LeftUp: {-1, 0}, LeftDown: {-1, 1},
		RightUp: {1, 0}, RightDown: {1, 1},
	}
)

func offsetsFor(x int) map[Direction]Location {
	if x%2 == 0 {
		return evenColumnOffsets
	}
	return oddColumnOffsets
}

// NeighborAt returns the coordinate one step away in the given direction.
// The result may lie outside the map.
func (l Location) NeighborAt(d Direction) Location {
	off, ok := offsetsFor(l.X)[d]
	if !ok {
		panic(fmt.Sprintf("hexmap: unknown direction %q", d))
	}
	return Location{X: l.X + off.X, Y: l.Y + off.Y}
}

// DirectionTo returns the direction that leads from l to an adjacent cell.
// ok is false when the two cells are not hex neighbors.
func (l Location) DirectionTo(other Location) (Direction, bool) {
	for _, d := range AllDirections() {
		if l.NeighborAt(d) == other {
			return d, true
		}
	}
	return "", false
}

func (l Location) String() string {
	return fmt.Sprintf("(%d,%d)", l.X, l.Y)
}
