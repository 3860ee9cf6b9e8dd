// internal/graph/reach.go
package graph

import "github.com/badgeforge/badgeforge/internal/types"

/*
 * Reachability over the edge set.
 *
 * Shared graph-walk logic used by the connection validator (would this
 * edge close a cycle?) and by the compiler's defensive acyclicity check.
 * Implemented once here rather than duplicated per caller.
 */

// Adjacency builds a source -> targets map over the edge set.
func (g *Graph) Adjacency() map[types.NodeID][]types.NodeID {
	adj := make(map[types.NodeID][]types.NodeID, len(g.Nodes))
	for _, e := range g.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}

// Reachable reports whether a directed path exists from one node to
// another over the current edge set. A node is trivially reachable from
// itself.
func (g *Graph) Reachable(from, to types.NodeID) bool {
	if from == to {
		return true
	}
	adj := g.Adjacency()
	seen := map[types.NodeID]bool{from: true}
	stack := []types.NodeID{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[cur] {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// HasCycle reports whether the edge set contains any directed cycle.
// Iterative DFS with an on-path set; the validator should make this
// impossible, so the compiler treats a true result as a defect.
func (g *Graph) HasCycle() bool {
	adj := g.Adjacency()
	const (
		unvisited = 0
		onPath    = 1
		done      = 2
	)
	state := make(map[types.NodeID]int, len(g.Nodes))

	var visit func(id types.NodeID) bool
	visit = func(id types.NodeID) bool {
		state[id] = onPath
		for _, next := range adj[id] {
			switch state[next] {
			case onPath:
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}
		state[id] = done
		return false
	}

	for _, n := range g.Nodes {
		if state[n.ID] == unvisited && visit(n.ID) {
			return true
		}
	}
	return false
}
