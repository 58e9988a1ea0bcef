package dag

import "sort"

// Order computes the canonical leaf processing order used by every
// downstream pass: topological rank first (predecessors before
// successors), then task priority descending, then qualified id ascending
// to break remaining ties deterministically. The result is cached on
// TopoOrder and also returned. Callers must ensure DetectCycles() returned
// no cycles before calling Order — a cyclic graph has no topological
// order and Order will simply omit any leaf it cannot place.
func (g *LeafDAG) Order(priority func(id string) int) []string {
	if g.TopoOrder != nil {
		return g.TopoOrder
	}

	inDegree := make(map[string]int, len(g.LeafOrder))
	outEdges := make(map[string][]string)
	for _, id := range g.LeafOrder {
		inDegree[id] = 0
	}
	for _, e := range g.Edges {
		inDegree[e.To]++
		outEdges[e.From] = append(outEdges[e.From], e.To)
	}

	ready := make([]string, 0)
	for _, id := range g.LeafOrder {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	less := func(a, b string) bool {
		pa, pb := priority(a), priority(b)
		if pa != pb {
			return pa > pb // priority descending
		}
		return a < b // qualified id ascending
	}

	var order []string
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })

		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, succ := range outEdges[next] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	g.TopoOrder = order
	return order
}

// ReverseOrder returns Order reversed, the processing order for the
// backward CPM pass.
func (g *LeafDAG) ReverseOrder(priority func(id string) int) []string {
	order := g.Order(priority)
	rev := make([]string, len(order))
	for i, id := range order {
		rev[len(order)-1-i] = id
	}
	return rev
}

// Predecessors returns the edges whose successor is id.
func (g *LeafDAG) Predecessors(id string) []Edge {
	if g.predIndex == nil {
		g.indexEdges()
	}
	return g.predIndex[id]
}

// Successors returns the edges whose predecessor is id.
func (g *LeafDAG) Successors(id string) []Edge {
	if g.succIndex == nil {
		g.indexEdges()
	}
	return g.succIndex[id]
}
