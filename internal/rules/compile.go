// internal/rules/compile.go
package rules

import (
	"fmt"

	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/types"
)

/*
 * Graph-to-rule compilation.
 *
 * Converts the editor graph into a normalized RuleDefinition tree:
 *   1. Locate the single action node (zero or multiple is an error).
 *   2. Defensive acyclicity check - the connection validator should have
 *      made cycles impossible, but the compiler never trusts that.
 *   3. Walk the action's single incoming edge backward: a condition
 *      predecessor becomes the root expression directly, a logic
 *      predecessor recurses over its populated slots into a Group.
 *
 * Slot policy: a logic node with some slots unfilled compiles from the
 * populated slots only (partial graphs are a normal authoring state); a
 * logic node with zero populated slots is an error - the empty group is
 * meaningless.
 *
 * Fan-out: a node feeding multiple consumers is duplicated into each
 * consumer's subtree. The serialized form has no sharing.
 */

// Compile converts the current graph into a rule definition. The graph is
// not mutated; compilation errors leave it editable.
func Compile(g *graph.Graph) (*RuleDefinition, error) {
	var action *graph.Node
	for i := range g.Nodes {
		if g.Nodes[i].Kind == graph.KindAction {
			if action != nil {
				return nil, types.ErrMultipleActionNodes
			}
			action = &g.Nodes[i]
		}
	}
	if action == nil {
		return nil, types.ErrNoActionNode
	}

	if g.HasCycle() {
		return nil, types.ErrCycleDetected
	}

	if action.Action == nil {
		return nil, fmt.Errorf("action node %s has no payload", action.ID)
	}
	if action.Action.TargetID == "" {
		return nil, fmt.Errorf("action node %s has no target", action.ID)
	}
	if action.Action.Quantity < 1 {
		return nil, fmt.Errorf("action node %s quantity must be >= 1, got %d", action.ID, action.Action.Quantity)
	}

	incoming := g.Incoming(action.ID)
	switch {
	case len(incoming) == 0:
		return nil, types.ErrNoTrigger
	case len(incoming) > 1:
		return nil, types.ErrMultipleTriggers
	}

	expr, err := resolveExpression(g, incoming[0].Source, 0)
	if err != nil {
		return nil, err
	}

	return &RuleDefinition{
		Root: ActionRef{
			TargetID:    action.Action.TargetID,
			Quantity:    action.Action.Quantity,
			DisplayName: action.Action.DisplayName,
		},
		Expression: expr,
	}, nil
}

// resolveExpression converts the subtree rooted at the given node into an
// expression. Depth guards recursion even though the acyclicity check has
// already passed.
func resolveExpression(g *graph.Graph, id types.NodeID, depth int) (Expression, error) {
	if depth > types.MaxRuleDepth {
		return nil, fmt.Errorf("node %s: %w", id, types.ErrRuleTooDeep)
	}

	node, ok := g.NodeByID(id)
	if !ok {
		return nil, fmt.Errorf("edge references %s: %w", id, types.ErrUnknownNode)
	}

	switch node.Kind {
	case graph.KindCondition:
		return resolveCondition(node)
	case graph.KindLogic:
		return resolveGroup(g, node, depth)
	default:
		return nil, fmt.Errorf("%s node %s cannot feed an expression: %w", node.Kind, id, types.ErrIncompatibleKinds)
	}
}

func resolveCondition(node graph.Node) (Expression, error) {
	spec := node.Condition
	if spec == nil {
		return nil, fmt.Errorf("condition node %s has no payload", node.ID)
	}
	if spec.Field == "" {
		return nil, fmt.Errorf("condition node %s has no field", node.ID)
	}
	if err := CheckValueArity(spec.Operator, spec.Value); err != nil {
		return nil, fmt.Errorf("condition node %s: %w", node.ID, err)
	}
	return Condition{Field: spec.Field, Operator: spec.Operator, Value: spec.Value}, nil
}

// resolveGroup compiles a logic node's populated input slots, in slot
// order, into a group expression.
func resolveGroup(g *graph.Graph, node graph.Node, depth int) (Expression, error) {
	if node.Logic == nil {
		return nil, fmt.Errorf("logic node %s has no payload", node.ID)
	}
	if node.Logic.Combinator != graph.CombinatorAnd && node.Logic.Combinator != graph.CombinatorOr {
		return nil, fmt.Errorf("logic node %s has no combinator", node.ID)
	}

	incoming := g.Incoming(node.ID)
	group := Group{Combinator: node.Logic.Combinator}
	for _, slot := range graph.LogicSlots() {
		for _, e := range incoming {
			if e.Slot != slot {
				continue
			}
			child, err := resolveExpression(g, e.Source, depth+1)
			if err != nil {
				return nil, err
			}
			group.Children = append(group.Children, child)
		}
	}

	if len(group.Children) == 0 {
		return nil, fmt.Errorf("logic node %s: %w", node.ID, types.ErrEmptyGroup)
	}
	return group, nil
}
