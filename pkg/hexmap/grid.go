package hexmap

// Grid owns every cell of the map. Adjacency is wired once in NewGrid and is
// symmetric; Update only replaces node payloads.
type Grid struct {
	width  int
	height int
	nodes  []Node
	rules  *Rules
	oracle CombatOracle
}

// Option configures a Grid.
type Option func(*Grid)

// WithRules sets the rule table used for terrain costs. Defaults to DefaultRules.
func WithRules(r *Rules) Option {
	return func(g *Grid) { g.rules = r }
}

// WithOracle sets the combat oracle consulted by route search. Defaults to a
// StrengthOracle over the grid's rules.
func WithOracle(o CombatOracle) Option {
	return func(g *Grid) { g.oracle = o }
}

// NewGrid builds a grid of the map's dimensions and fills it with the
// objects observed so far.
func NewGrid(m MapData, opts ...Option) *Grid {
	g := &Grid{
		width:  m.Width,
		height: m.Height,
		nodes:  make([]Node, m.Width*m.Height),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rules == nil {
		g.rules = DefaultRules()
	}
	if g.oracle == nil {
		g.oracle = NewStrengthOracle(g.rules)
	}

	for y := range m.Height {
		for x := range m.Width {
			i := g.indexOf(x, y)
			g.nodes[i] = Node{X: x, Y: y, index: i}
		}
	}
	g.connect()
	g.Update(m.Objects)
	return g
}

// connect wires hex adjacency. Both ends are linked at once, so the
// relation is symmetric by construction.
func (g *Grid) connect() {
	for i := range g.nodes {
		n := &g.nodes[i]
		for _, d := range AllDirections() {
			loc := n.Location().NeighborAt(d)
			if !g.contains(loc.X, loc.Y) {
				continue
			}
			j := g.indexOf(loc.X, loc.Y)
			link(n, &g.nodes[j])
		}
	}
}

func link(a, b *Node) {
	if a == b || a.isIncident(b) {
		return
	}
	a.incident = append(a.incident, b.index)
	b.incident = append(b.incident, a.index)
}

func (g *Grid) indexOf(x, y int) int { return y*g.width + x }

func (g *Grid) contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.nodes) }

// Rules returns the rule table the grid was built with.
func (g *Grid) Rules() *Rules { return g.rules }

// Oracle returns the combat oracle the grid searches with.
func (g *Grid) Oracle() CombatOracle { return g.oracle }

// At returns the node at (x, y), or nil when outside the map.
func (g *Grid) At(x, y int) *Node {
	if !g.contains(x, y) {
		return nil
	}
	return &g.nodes[g.indexOf(x, y)]
}

// NodeAt returns the node at loc, or nil when outside the map.
func (g *Grid) NodeAt(loc Location) *Node { return g.At(loc.X, loc.Y) }

// Nodes returns every node in row-major order.
func (g *Grid) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	for i := range g.nodes {
		out[i] = &g.nodes[i]
	}
	return out
}

// Neighbors returns the nodes incident to n.
func (g *Grid) Neighbors(n *Node) []*Node {
	out := make([]*Node, len(n.incident))
	for i, j := range n.incident {
		out[i] = &g.nodes[j]
	}
	return out
}

// Adjacent reports whether a and b are hex neighbors.
func (g *Grid) Adjacent(a, b *Node) bool { return a.isIncident(b) }

// IsFogBoundary reports whether n has at least one neighbor that has never
// been observed.
func (g *Grid) IsFogBoundary(n *Node) bool {
	for _, j := range n.incident {
		if g.nodes[j].data == nil {
			return true
		}
	}
	return false
}

// Update replaces the payload of every node present in objects. Nodes that
// are not in the snapshot keep their last observed payload. Objects outside
// the map are ignored.
func (g *Grid) Update(objects []MapObject) {
	for i := range objects {
		obj := objects[i]
		n := g.NodeAt(obj.Location)
		if n == nil {
			continue
		}
		n.setData(&obj)
	}
}
