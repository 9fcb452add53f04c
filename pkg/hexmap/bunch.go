package hexmap

import "fmt"

// ResourceBunch is a maximal group of resource nodes connected through
// other resource nodes. It is immutable once built.
type ResourceBunch struct {
	nodes   []*Node
	members map[int]struct{}
}

// NewResourceBunch groups the given nodes. It panics if any node carries no
// resource pile.
func NewResourceBunch(nodes []*Node) *ResourceBunch {
	b := &ResourceBunch{
		nodes:   make([]*Node, 0, len(nodes)),
		members: make(map[int]struct{}, len(nodes)),
	}
	for _, n := range nodes {
		if !n.HasResource() {
			panic(fmt.Sprintf("hexmap: bunch node %s holds no resources", n))
		}
		if _, dup := b.members[n.index]; dup {
			continue
		}
		b.members[n.index] = struct{}{}
		b.nodes = append(b.nodes, n)
	}
	return b
}

// Contains reports whether n belongs to the bunch.
func (b *ResourceBunch) Contains(n *Node) bool {
	if n == nil {
		return false
	}
	_, ok := b.members[n.index]
	return ok
}

// Nodes returns the bunch members in discovery order.
func (b *ResourceBunch) Nodes() []*Node {
	out := make([]*Node, len(b.nodes))
	copy(out, b.nodes)
	return out
}

// Len returns the number of nodes in the bunch.
func (b *ResourceBunch) Len() int { return len(b.nodes) }

// Resources totals the piles of the bunch by resource, as last observed.
// Piles already picked up no longer count.
func (b *ResourceBunch) Resources() Treasury {
	out := make(Treasury)
	for _, n := range b.nodes {
		if p := n.data.ResourcePile; p != nil {
			out[p.Resource] += p.Amount
		}
	}
	return out
}

// FindResourceBunches partitions the observed resource nodes into bunches.
// Every resource node ends up in exactly one bunch.
func (g *Grid) FindResourceBunches() []*ResourceBunch {
	var bunches []*ResourceBunch
	marked := make([]bool, len(g.nodes))
	for i := range g.nodes {
		n := &g.nodes[i]
		if marked[i] || !n.HasResource() {
			continue
		}
		group := g.BreadthSearch(n, (*Node).HasResource)
		for _, m := range group {
			marked[m.index] = true
		}
		bunches = append(bunches, NewResourceBunch(group))
	}
	return bunches
}

// BreadthSearch returns the nodes reachable from start through nodes
// accepted by include, in breadth-first order. It returns nil when start
// itself is not accepted.
func (g *Grid) BreadthSearch(start *Node, include func(*Node) bool) []*Node {
	if !include(start) {
		return nil
	}
	visited := make(map[int]bool)
	queue := []*Node{start}
	var out []*Node
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if visited[n.index] {
			continue
		}
		visited[n.index] = true
		out = append(out, n)
		for _, j := range n.incident {
			if m := &g.nodes[j]; !visited[j] && include(m) {
				queue = append(queue, m)
			}
		}
	}
	return out
}

// DepthSearch returns start followed by the nodes reachable from it through
// nodes accepted by include, in depth-first visiting order.
func (g *Grid) DepthSearch(start *Node, include func(*Node) bool) []*Node {
	visited := make(map[int]bool)
	stack := []*Node{start}
	var out []*Node
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n.index] {
			continue
		}
		visited[n.index] = true
		out = append(out, n)
		for _, j := range n.incident {
			if m := &g.nodes[j]; !visited[j] && include(m) {
				stack = append(stack, m)
			}
		}
	}
	return out
}
