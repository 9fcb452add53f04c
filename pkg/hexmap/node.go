package hexmap

import "fmt"

// Node is a single cell of the grid. Its incident nodes are stored as arena
// indices and fixed at grid construction; only the observed payload changes.
type Node struct {
	X, Y int

	index    int
	data     *MapObject
	incident []int
}

// Location returns the cell coordinate.
func (n *Node) Location() Location { return Location{X: n.X, Y: n.Y} }

// Data returns the last observed payload, or nil if the cell was never seen.
func (n *Node) Data() *MapObject { return n.data }

// Observed reports whether the cell has ever been seen.
func (n *Node) Observed() bool { return n.data != nil }

// Passable reports whether the cell is observed and not a wall.
func (n *Node) Passable() bool { return n.data != nil && n.data.Wall == nil }

// DefendingArmy returns the army guarding the cell, or nil.
func (n *Node) DefendingArmy() Army {
	if n.data == nil {
		return nil
	}
	return n.data.DefendingArmy()
}

// HasResource reports whether a resource pile is observed on the cell.
func (n *Node) HasResource() bool { return n.data != nil && n.data.ResourcePile != nil }

// DirectionTo returns the move leading from n to an adjacent node. It panics
// when other is not incident to n.
func (n *Node) DirectionTo(other *Node) Direction {
	if !n.isIncident(other) {
		panic(fmt.Sprintf("hexmap: %s is not adjacent to %s", other, n))
	}
	d, _ := n.Location().DirectionTo(other.Location())
	return d
}

func (n *Node) isIncident(other *Node) bool {
	for _, i := range n.incident {
		if i == other.index {
			return true
		}
	}
	return false
}

func (n *Node) setData(data *MapObject) {
	if data == nil {
		panic(fmt.Sprintf("hexmap: nil payload for node %s", n))
	}
	n.data = data
}

func (n *Node) String() string {
	return fmt.Sprintf("%d, %d", n.X, n.Y)
}
