package hexmap

import (
	"container/heap"
	"math"
)

// SearchResult is a route from the search start to a matching node.
// len(Chain) == len(Track)+1 and consecutive chain nodes are adjacent.
type SearchResult struct {
	Destination *Node
	Chain       []*Node
	Track       []Direction
}

// Cost returns the travel cost of the route: the terrain cost of every node
// that is left, which excludes the destination.
func (r SearchResult) Cost(rules *Rules) float64 {
	total := 0.0
	for i := 0; i+1 < len(r.Chain); i++ {
		total += rules.Cost(r.Chain[i].data.Terrain)
	}
	return total
}

// frontierItem is a tentative distance for a node. Stale entries are
// skipped on pop instead of being removed from the heap.
type frontierItem struct {
	index int
	cost  float64
	seq   int
}

// frontier is a min-heap of frontierItem by cost, then insertion order.
type frontier []frontierItem

func (h frontier) Len() int { return len(h) }
func (h frontier) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].seq < h[j].seq
}
func (h frontier) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *frontier) Push(x any)   { *h = append(*h, x.(frontierItem)) }
func (h *frontier) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// FindRoutesMatching runs a combat-aware Dijkstra from start and returns a
// route to every reachable node accepted by isTarget, nearest first.
//
// The army carried along each route is simulated: entering a guarded node
// replaces it with the survivors of that battle, and a guard the current army
// would lose to closes the edge. Walls and unobserved nodes are never entered.
func (g *Grid) FindRoutesMatching(start *Node, army Army, isTarget func(*Node) bool) []SearchResult {
	if start == nil || !start.Observed() {
		return nil
	}

	n := len(g.nodes)
	cost := make([]float64, n)
	prev := make([]int, n)
	armies := make([]Army, n)
	resolved := make([]bool, n)
	for i := range cost {
		cost[i] = math.Inf(1)
		prev[i] = -1
	}
	cost[start.index] = 0
	armies[start.index] = army

	seq := 0
	h := &frontier{{index: start.index}}
	var results []SearchResult
	for h.Len() > 0 {
		item := heap.Pop(h).(frontierItem)
		cur := item.index
		if resolved[cur] || item.cost > cost[cur] {
			continue
		}
		resolved[cur] = true

		node := &g.nodes[cur]
		if isTarget(node) {
			results = append(results, g.extractPath(prev, node))
		}

		for _, next := range node.incident {
			nextNode := &g.nodes[next]
			if resolved[next] || !nextNode.Passable() {
				continue
			}

			carried := armies[cur]
			defender := nextNode.DefendingArmy()
			if defender != nil {
				outcome := g.oracle.Resolve(carried.Clone(), defender.Clone())
				if !outcome.AttackerWins {
					continue
				}
				carried = outcome.Attacker
			}

			sum := cost[cur] + g.rules.Cost(node.data.Terrain)
			if sum < cost[next] {
				cost[next] = sum
				prev[next] = cur
				armies[next] = carried
				seq++
				heap.Push(h, frontierItem{index: next, cost: sum, seq: seq})
			}
		}
	}
	return results
}

func (g *Grid) extractPath(prev []int, end *Node) SearchResult {
	var chain []*Node
	for i := end.index; i != -1; i = prev[i] {
		chain = append(chain, &g.nodes[i])
	}
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	track := make([]Direction, 0, len(chain)-1)
	for i := 0; i+1 < len(chain); i++ {
		track = append(track, chain[i].DirectionTo(chain[i+1]))
	}
	return SearchResult{Destination: end, Chain: chain, Track: track}
}

// FindPathTo returns the cheapest feasible route from start to destination.
func (g *Grid) FindPathTo(start *Node, army Army, destination *Node) (SearchResult, bool) {
	results := g.FindRoutesMatching(start, army, func(n *Node) bool { return n == destination })
	if len(results) == 0 {
		return SearchResult{}, false
	}
	return results[0], true
}

// FindPathsToArmies returns routes to every beatable guarded node.
func (g *Grid) FindPathsToArmies(start *Node, army Army) []SearchResult {
	return g.FindRoutesMatching(start, army, func(n *Node) bool { return n.DefendingArmy() != nil })
}

// FindPathsToDwellings returns routes to every reachable dwelling.
func (g *Grid) FindPathsToDwellings(start *Node, army Army) []SearchResult {
	return g.FindRoutesMatching(start, army, func(n *Node) bool { return n.data.Dwelling != nil })
}

// FindPathsToMines returns routes to every reachable mine.
func (g *Grid) FindPathsToMines(start *Node, army Army) []SearchResult {
	return g.FindRoutesMatching(start, army, func(n *Node) bool { return n.data.Mine != nil })
}

// FindPathsToFogBoundary returns routes to every reachable node bordering
// unexplored territory.
func (g *Grid) FindPathsToFogBoundary(start *Node, army Army) []SearchResult {
	return g.FindRoutesMatching(start, army, g.IsFogBoundary)
}

// BunchRoute is a route to the first reached node of a resource bunch.
type BunchRoute struct {
	Route SearchResult
	Bunch *ResourceBunch
}

// FindPathsToResourceBunches returns one route per reachable resource bunch,
// ending at the bunch node closest to start.
func (g *Grid) FindPathsToResourceBunches(start *Node, army Army) []BunchRoute {
	bunches := g.FindResourceBunches()
	owner := make(map[int]*ResourceBunch)
	for _, b := range bunches {
		for _, n := range b.nodes {
			owner[n.index] = b
		}
	}
	claimed := make(map[*ResourceBunch]bool, len(bunches))
	routes := g.FindRoutesMatching(start, army, func(n *Node) bool {
		b, ok := owner[n.index]
		if !ok || claimed[b] {
			return false
		}
		claimed[b] = true
		return true
	})

	out := make([]BunchRoute, len(routes))
	for i, r := range routes {
		out[i] = BunchRoute{Route: r, Bunch: owner[r.Destination.index]}
	}
	return out
}
