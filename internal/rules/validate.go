// internal/rules/validate.go
package rules

import (
	"fmt"

	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/types"
)

/*
 * Structural graph validation.
 *
 * Run before save/publish, independent of compile success. Failures are
 * accumulated rather than short-circuited so the editor can show the full
 * defect list at once and the user can fix everything in one pass.
 */

// Metadata is the destination-system information a published rule must
// carry: a stable code, a display name, and the trigger event type.
type Metadata struct {
	Code      string
	Name      string
	EventType string
}

// ValidateGraph checks structural well-formedness of the editor graph.
// Returns the accumulated defect list; empty means valid.
func ValidateGraph(g *graph.Graph) []error {
	var errs []error

	if len(g.Nodes) > types.MaxNodes {
		errs = append(errs, fmt.Errorf("%d nodes: %w", len(g.Nodes), types.ErrTooManyNodes))
	}

	if g.HasCycle() {
		errs = append(errs, types.ErrCycleDetected)
	}

	actions := 0
	for _, n := range g.Nodes {
		switch n.Kind {
		case graph.KindAction:
			actions++
			errs = append(errs, validateActionNode(g, n)...)
		case graph.KindCondition:
			errs = append(errs, validateConditionNode(n)...)
		case graph.KindLogic:
			errs = append(errs, validateLogicNode(g, n)...)
		default:
			errs = append(errs, fmt.Errorf("node %s has unspecified kind", n.ID))
		}
	}

	if actions == 0 {
		errs = append(errs, fmt.Errorf("rule requires an action node: %w", types.ErrNoActionNode))
	}
	if actions > 1 {
		errs = append(errs, fmt.Errorf("%d action nodes: %w", actions, types.ErrMultipleActionNodes))
	}

	return errs
}

// ValidateForPublish runs structural validation plus the metadata checks
// the destination system requires.
func ValidateForPublish(g *graph.Graph, meta Metadata) []error {
	errs := ValidateGraph(g)
	if meta.Code == "" {
		errs = append(errs, fmt.Errorf("rule code is required for publish"))
	}
	if meta.Name == "" {
		errs = append(errs, fmt.Errorf("rule name is required for publish"))
	}
	if meta.EventType == "" {
		errs = append(errs, fmt.Errorf("trigger event type is required for publish"))
	}
	return errs
}

// validateActionNode flags actions without a trigger; an action with no
// incoming edge is meaningless.
func validateActionNode(g *graph.Graph, n graph.Node) []error {
	var errs []error
	if n.Action == nil {
		return append(errs, fmt.Errorf("action node %s has no payload", n.ID))
	}
	if n.Action.TargetID == "" {
		errs = append(errs, fmt.Errorf("action node %s has no target", n.ID))
	}
	if n.Action.Quantity < 1 {
		errs = append(errs, fmt.Errorf("action node %s quantity must be >= 1, got %d", n.ID, n.Action.Quantity))
	}
	incoming := g.Incoming(n.ID)
	if len(incoming) == 0 {
		errs = append(errs, fmt.Errorf("action node %s: %w", n.ID, types.ErrNoTrigger))
	}
	if len(incoming) > 1 {
		errs = append(errs, fmt.Errorf("action node %s: %w", n.ID, types.ErrMultipleTriggers))
	}
	return errs
}

func validateConditionNode(n graph.Node) []error {
	var errs []error
	if n.Condition == nil {
		return append(errs, fmt.Errorf("condition node %s has no payload", n.ID))
	}
	if n.Condition.Field == "" {
		errs = append(errs, fmt.Errorf("condition node %s has no field", n.ID))
	}
	if n.Condition.Operator == graph.OpUnspecified {
		errs = append(errs, fmt.Errorf("condition node %s has no operator", n.ID))
	} else if err := CheckValueArity(n.Condition.Operator, n.Condition.Value); err != nil {
		errs = append(errs, fmt.Errorf("condition node %s: %w", n.ID, err))
	}
	return errs
}

func validateLogicNode(g *graph.Graph, n graph.Node) []error {
	var errs []error
	if n.Logic == nil {
		return append(errs, fmt.Errorf("logic node %s has no payload", n.ID))
	}
	if n.Logic.Combinator != graph.CombinatorAnd && n.Logic.Combinator != graph.CombinatorOr {
		errs = append(errs, fmt.Errorf("logic node %s has no combinator", n.ID))
	}
	if len(g.Incoming(n.ID)) == 0 {
		errs = append(errs, fmt.Errorf("logic node %s: %w", n.ID, types.ErrEmptyGroup))
	}
	return errs
}
