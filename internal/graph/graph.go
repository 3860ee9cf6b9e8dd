// internal/graph/graph.go
package graph

import (
	"fmt"

	"github.com/badgeforge/badgeforge/internal/types"
)

/*
 * Editor graph model.
 *
 * Provides Node, Edge, and Graph structures for the visual rule editor.
 * Nodes are a closed tagged union over {Condition, Logic, Action}; the
 * compiler and validator match exhaustively on Kind, so adding a kind means
 * extending the union and every switch.
 *
 * Value semantics: Graph is copied wholesale via Clone for history
 * snapshots. Payloads are held behind per-kind pointers but Clone performs
 * a deep copy, so a snapshot can never be mutated through a live graph.
 *
 * Orientation: edges always point toward the action node. Conditions are
 * sources, actions are sinks, logic nodes combine in between.
 */

// NodeKind discriminates the node union.
type NodeKind int

const (
	KindUnspecified NodeKind = iota
	KindCondition
	KindLogic
	KindAction
)

// String returns the wire name for the kind.
func (k NodeKind) String() string {
	switch k {
	case KindCondition:
		return "condition"
	case KindLogic:
		return "logic"
	case KindAction:
		return "action"
	default:
		return "unspecified"
	}
}

// MarshalJSON encodes the kind as its wire name.
func (k NodeKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON decodes a wire name, rejecting unknown kinds.
func (k *NodeKind) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"condition"`:
		*k = KindCondition
	case `"logic"`:
		*k = KindLogic
	case `"action"`:
		*k = KindAction
	default:
		return fmt.Errorf("unknown node kind %s", data)
	}
	return nil
}

// Combinator determines how a logic node combines its inputs.
type Combinator int

const (
	CombinatorUnspecified Combinator = iota
	CombinatorAnd
	CombinatorOr
)

// String returns the wire name for the combinator.
func (c Combinator) String() string {
	switch c {
	case CombinatorAnd:
		return "AND"
	case CombinatorOr:
		return "OR"
	default:
		return "UNSPECIFIED"
	}
}

// MarshalJSON encodes the combinator as "AND" or "OR".
func (c Combinator) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON decodes "AND"/"OR", rejecting anything else.
func (c *Combinator) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"AND"`:
		*c = CombinatorAnd
	case `"OR"`:
		*c = CombinatorOr
	default:
		return fmt.Errorf("unknown combinator %s", data)
	}
	return nil
}

// Position is the canvas location of a node. Irrelevant to compilation.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ConditionSpec is the payload of a condition node.
// Value holds a scalar, a two-element range, or a list depending on the
// operator's declared arity. No omitempty: zero scalars (0, false, "")
// are legitimate comparison values and must survive the wire.
type ConditionSpec struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// LogicSpec is the payload of a logic node.
type LogicSpec struct {
	Combinator Combinator `json:"combinator"`
}

// ActionSpec is the payload of an action node.
// DisplayName is denormalized for rendering and not semantically
// authoritative; TargetID is.
type ActionSpec struct {
	TargetID    string `json:"targetId"`
	Quantity    int    `json:"quantity"`
	DisplayName string `json:"displayName,omitempty"`
}

// Node is a graph vertex. Exactly one payload pointer matching Kind is set.
type Node struct {
	ID        types.NodeID   `json:"id"`
	Kind      NodeKind       `json:"kind"`
	Position  Position       `json:"position"`
	Condition *ConditionSpec `json:"condition,omitempty"`
	Logic     *LogicSpec     `json:"logic,omitempty"`
	Action    *ActionSpec    `json:"action,omitempty"`
}

// Edge is a directed connection. Slot names the input slot on a
// multi-input target; empty for single-input targets (actions).
type Edge struct {
	ID     types.EdgeID `json:"id"`
	Source types.NodeID `json:"source"`
	Target types.NodeID `json:"target"`
	Slot   string       `json:"slot,omitempty"`
}

// Graph is the full node set and edge set at an instant.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// LogicSlotName returns the name of the i-th logic input slot ("in1"..).
func LogicSlotName(i int) string {
	return fmt.Sprintf("in%d", i+1)
}

// LogicSlots returns the fixed slot names of a logic node in order.
func LogicSlots() []string {
	slots := make([]string, types.MaxLogicInputs)
	for i := range slots {
		slots[i] = LogicSlotName(i)
	}
	return slots
}

// NodeByID returns a copy of the node with the given ID.
func (g *Graph) NodeByID(id types.NodeID) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// EdgeByID returns a copy of the edge with the given ID.
func (g *Graph) EdgeByID(id types.EdgeID) (Edge, bool) {
	for _, e := range g.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// Incoming returns all edges terminating at the given node, in insertion
// order. Insertion order is stable across Clone, keeping compilation
// deterministic.
func (g *Graph) Incoming(id types.NodeID) []Edge {
	var in []Edge
	for _, e := range g.Edges {
		if e.Target == id {
			in = append(in, e)
		}
	}
	return in
}

// Outgoing returns all edges originating at the given node.
func (g *Graph) Outgoing(id types.NodeID) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// AddNode appends a node. Returns ErrTooManyNodes beyond MaxNodes.
func (g *Graph) AddNode(n Node) error {
	if len(g.Nodes) >= types.MaxNodes {
		return types.ErrTooManyNodes
	}
	g.Nodes = append(g.Nodes, n)
	return nil
}

// RemoveNode deletes a node and cascade-deletes every edge touching it.
// Removing an unknown ID is a no-op.
func (g *Graph) RemoveNode(id types.NodeID) {
	nodes := g.Nodes[:0]
	for _, n := range g.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	g.Nodes = nodes

	edges := g.Edges[:0]
	for _, e := range g.Edges {
		if e.Source != id && e.Target != id {
			edges = append(edges, e)
		}
	}
	g.Edges = edges
}

// AddEdge appends an edge without validation. Callers gate through
// ValidateConnection first; the editor is the only writer.
func (g *Graph) AddEdge(e Edge) {
	g.Edges = append(g.Edges, e)
}

// RemoveEdge deletes an edge by ID. Removing an unknown ID is a no-op.
func (g *Graph) RemoveEdge(id types.EdgeID) {
	edges := g.Edges[:0]
	for _, e := range g.Edges {
		if e.ID != id {
			edges = append(edges, e)
		}
	}
	g.Edges = edges
}

// MoveNode updates a node's canvas position.
func (g *Graph) MoveNode(id types.NodeID, pos Position) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			g.Nodes[i].Position = pos
			return
		}
	}
}

// Clone returns a deep copy. Snapshots retain clones so history state can
// never be mutated by reference through the live graph.
func (g *Graph) Clone() Graph {
	out := Graph{}
	if g.Nodes != nil {
		out.Nodes = make([]Node, len(g.Nodes))
		for i, n := range g.Nodes {
			out.Nodes[i] = cloneNode(n)
		}
	}
	if g.Edges != nil {
		out.Edges = make([]Edge, len(g.Edges))
		copy(out.Edges, g.Edges)
	}
	return out
}

func cloneNode(n Node) Node {
	if n.Condition != nil {
		c := *n.Condition
		c.Value = cloneValue(c.Value)
		n.Condition = &c
	}
	if n.Logic != nil {
		l := *n.Logic
		n.Logic = &l
	}
	if n.Action != nil {
		a := *n.Action
		n.Action = &a
	}
	return n
}

// cloneValue deep-copies condition values. Scalars are immutable; only
// list/range values ([]any) need copying.
func cloneValue(v any) any {
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		for i, elem := range list {
			out[i] = cloneValue(elem)
		}
		return out
	}
	return v
}
