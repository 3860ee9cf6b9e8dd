// internal/bridge/highlight.go
package bridge

import (
	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/types"
)

/*
 * Highlight projection.
 *
 * Maps the engine's matchedNodeIds onto the visual graph. Servers may
 * send partial or missing matchedNodeIds; the projection falls back to
 * deriving node IDs from conditionResults (by node ID, then by field
 * name) and, when the overall rule matched, lights every node. Unknown
 * IDs are dropped silently - a stale or partial response must never
 * crash the editor.
 */

// HighlightSet is the derived visual state after a test run.
type HighlightSet struct {
	Nodes map[types.NodeID]bool
	Edges map[types.EdgeID]bool
}

// ProjectHighlights derives the highlight set for a test result over the
// current graph.
func ProjectHighlights(g *graph.Graph, res *EvalResult) HighlightSet {
	hs := HighlightSet{
		Nodes: make(map[types.NodeID]bool),
		Edges: make(map[types.EdgeID]bool),
	}
	if res == nil {
		return hs
	}

	if res.Matched {
		for _, n := range g.Nodes {
			hs.Nodes[n.ID] = true
		}
	} else if len(res.MatchedNodeIDs) > 0 {
		for _, id := range res.MatchedNodeIDs {
			if _, ok := g.NodeByID(types.NodeID(id)); ok {
				hs.Nodes[types.NodeID(id)] = true
			}
		}
	} else {
		for _, cr := range res.ConditionResults {
			if !cr.Matched {
				continue
			}
			for _, id := range deriveNodeIDs(g, cr) {
				hs.Nodes[id] = true
			}
		}
	}

	// An edge lights up when both endpoints do.
	for _, e := range g.Edges {
		if hs.Nodes[e.Source] && hs.Nodes[e.Target] {
			hs.Edges[e.ID] = true
		}
	}
	return hs
}

// deriveNodeIDs resolves a condition result to graph nodes: exact node ID
// when the engine echoed one, otherwise every condition node with the
// same field and operator.
func deriveNodeIDs(g *graph.Graph, cr ConditionResult) []types.NodeID {
	if cr.NodeID != "" {
		if _, ok := g.NodeByID(types.NodeID(cr.NodeID)); ok {
			return []types.NodeID{types.NodeID(cr.NodeID)}
		}
		return nil
	}
	var ids []types.NodeID
	for _, n := range g.Nodes {
		if n.Kind != graph.KindCondition || n.Condition == nil {
			continue
		}
		if n.Condition.Field == cr.Field && n.Condition.Operator.String() == cr.Operator {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
