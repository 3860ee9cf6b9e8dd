// internal/graph/codec.go
package graph

import (
	"encoding/json"
	"fmt"
)

// Encode serializes the graph for storage or transfer.
func Encode(g *Graph) ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	return data, nil
}

// Decode parses a saved graph. On any failure the zero graph is
// returned with an error; a corrupt file must never yield a partially
// applied graph.
func Decode(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("failed to decode graph: %w", err)
	}
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return Graph{}, fmt.Errorf("graph contains a node without an id")
		}
		if seen[string(n.ID)] {
			return Graph{}, fmt.Errorf("duplicate node id %s", n.ID)
		}
		seen[string(n.ID)] = true
		if err := checkPayload(n); err != nil {
			return Graph{}, err
		}
	}
	for _, e := range g.Edges {
		if !seen[string(e.Source)] {
			return Graph{}, fmt.Errorf("edge %s references unknown source %s", e.ID, e.Source)
		}
		if !seen[string(e.Target)] {
			return Graph{}, fmt.Errorf("edge %s references unknown target %s", e.ID, e.Target)
		}
	}
	return g, nil
}

// checkPayload verifies the payload pointer matches the declared kind.
func checkPayload(n Node) error {
	switch n.Kind {
	case KindCondition:
		if n.Condition == nil {
			return fmt.Errorf("condition node %s has no payload", n.ID)
		}
	case KindLogic:
		if n.Logic == nil {
			return fmt.Errorf("logic node %s has no payload", n.ID)
		}
	case KindAction:
		if n.Action == nil {
			return fmt.Errorf("action node %s has no payload", n.ID)
		}
	default:
		return fmt.Errorf("node %s has unspecified kind", n.ID)
	}
	return nil
}
