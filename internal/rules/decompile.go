// internal/rules/decompile.go
package rules

import (
	"fmt"

	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/types"
)

/*
 * Rule-to-graph decompilation.
 *
 * Reverse of Compile: allocates a fresh node per condition/group in the
 * tree plus one action node, wiring edges that reconstruct the original
 * shape. Node IDs are newly minted UUIDs; positions come from a simple
 * layered layout (leaves left, action right, one row per leaf) and carry
 * no semantics.
 *
 * A group with more children than a logic node has input slots cannot be
 * represented in the editor and is rejected with ErrTooManyChildren.
 */

// Layout spacing for decompiled graphs.
const (
	layoutColumnWidth = 240
	layoutRowHeight   = 120
)

// Decompile reconstructs an editable graph from a rule definition.
func Decompile(rule *RuleDefinition) (graph.Graph, error) {
	if rule == nil || rule.Expression == nil {
		return graph.Graph{}, fmt.Errorf("cannot decompile empty rule")
	}

	depth, err := expressionDepth(rule.Expression, 0)
	if err != nil {
		return graph.Graph{}, err
	}

	g := graph.Graph{}
	nextRow := 0

	// Levels count from the action (0) leftward; deeper expressions sit
	// further left.
	var build func(expr Expression, level int) (types.NodeID, float64, error)
	build = func(expr Expression, level int) (types.NodeID, float64, error) {
		x := float64((depth + 1 - level) * layoutColumnWidth)
		switch e := expr.(type) {
		case Condition:
			y := float64(nextRow * layoutRowHeight)
			nextRow++
			id := types.NewNodeID()
			g.Nodes = append(g.Nodes, graph.Node{
				ID:       id,
				Kind:     graph.KindCondition,
				Position: graph.Position{X: x, Y: y},
				Condition: &graph.ConditionSpec{
					Field:    e.Field,
					Operator: e.Operator,
					Value:    e.Value,
				},
			})
			return id, y, nil

		case Group:
			if len(e.Children) > types.MaxLogicInputs {
				return "", 0, fmt.Errorf("group with %d children: %w", len(e.Children), types.ErrTooManyChildren)
			}
			id := types.NewNodeID()
			var ySum float64
			for i, child := range e.Children {
				childID, childY, err := build(child, level+1)
				if err != nil {
					return "", 0, err
				}
				ySum += childY
				g.Edges = append(g.Edges, graph.Edge{
					ID:     types.NewEdgeID(),
					Source: childID,
					Target: id,
					Slot:   graph.LogicSlotName(i),
				})
			}
			y := ySum / float64(len(e.Children))
			g.Nodes = append(g.Nodes, graph.Node{
				ID:       id,
				Kind:     graph.KindLogic,
				Position: graph.Position{X: x, Y: y},
				Logic:    &graph.LogicSpec{Combinator: e.Combinator},
			})
			return id, y, nil

		default:
			return "", 0, fmt.Errorf("unknown expression type %T", expr)
		}
	}

	exprID, exprY, err := build(rule.Expression, 1)
	if err != nil {
		return graph.Graph{}, err
	}

	actionID := types.NewNodeID()
	g.Nodes = append(g.Nodes, graph.Node{
		ID:       actionID,
		Kind:     graph.KindAction,
		Position: graph.Position{X: float64((depth + 1) * layoutColumnWidth), Y: exprY},
		Action: &graph.ActionSpec{
			TargetID:    rule.Root.TargetID,
			Quantity:    rule.Root.Quantity,
			DisplayName: rule.Root.DisplayName,
		},
	})
	g.Edges = append(g.Edges, graph.Edge{
		ID:     types.NewEdgeID(),
		Source: exprID,
		Target: actionID,
	})

	return g, nil
}

// expressionDepth returns the deepest nesting level of the expression,
// guarding against hostile depth.
func expressionDepth(expr Expression, depth int) (int, error) {
	if depth > types.MaxRuleDepth {
		return 0, types.ErrRuleTooDeep
	}
	group, ok := expr.(Group)
	if !ok {
		return depth, nil
	}
	max := depth
	for _, child := range group.Children {
		d, err := expressionDepth(child, depth+1)
		if err != nil {
			return 0, err
		}
		if d > max {
			max = d
		}
	}
	return max, nil
}
