// internal/graph/connect.go
package graph

import (
	"fmt"

	"github.com/badgeforge/badgeforge/internal/types"
)

/*
 * Connection validation.
 *
 * Pure predicates over the current graph plus a proposed edge. Safe to
 * call on every drag-frame: no state is mutated, and IsValidConnection
 * gives the boolean used for live visual feedback while
 * ValidateConnection carries the human-readable rejection reason.
 *
 * Check order is cheapest-first: self-loop, endpoint existence, kind
 * compatibility, slot rules, then reachability (the only walk).
 *
 * Legal kind pairs: condition->logic, condition->action, logic->logic,
 * logic->action. Everything else is rejected, including action->anything
 * (actions are sinks) and anything->condition (conditions are sources).
 */

// Connection is a proposed edge before it is admitted to the graph.
type Connection struct {
	Source types.NodeID
	Target types.NodeID
	Slot   string
}

// IsValidConnection reports whether the proposed edge is legal. Boolean
// form for per-frame feedback during dragging.
func IsValidConnection(c Connection, g *Graph) bool {
	return ValidateConnection(c, g) == nil
}

// ValidateConnection checks the proposed edge against the current graph.
// Returns nil if legal, otherwise an error wrapping the matching sentinel
// whose message serves as the user-facing rejection reason.
func ValidateConnection(c Connection, g *Graph) error {
	if c.Source == c.Target {
		return types.ErrSelfLoop
	}

	source, ok := g.NodeByID(c.Source)
	if !ok {
		return fmt.Errorf("source %s: %w", c.Source, types.ErrUnknownNode)
	}
	target, ok := g.NodeByID(c.Target)
	if !ok {
		return fmt.Errorf("target %s: %w", c.Target, types.ErrUnknownNode)
	}

	if err := checkKinds(source.Kind, target.Kind); err != nil {
		return err
	}

	if err := checkSlot(c, target); err != nil {
		return err
	}

	for _, e := range g.Edges {
		if e.Target == c.Target && e.Slot == c.Slot {
			if target.Kind == KindAction {
				return fmt.Errorf("action already has a trigger: %w", types.ErrSlotOccupied)
			}
			return fmt.Errorf("slot %q on node %s: %w", c.Slot, c.Target, types.ErrSlotOccupied)
		}
	}

	// A path from target back to source means adding source->target
	// closes a cycle.
	if g.Reachable(c.Target, c.Source) {
		return types.ErrCycleDetected
	}

	return nil
}

// checkKinds enforces the declared compatibility pairs.
func checkKinds(source, target NodeKind) error {
	switch source {
	case KindAction:
		return fmt.Errorf("action nodes cannot emit output: %w", types.ErrIncompatibleKinds)
	case KindCondition, KindLogic:
		// valid sources
	default:
		return fmt.Errorf("source kind %s: %w", source, types.ErrIncompatibleKinds)
	}

	switch target {
	case KindCondition:
		return fmt.Errorf("condition nodes cannot receive input: %w", types.ErrIncompatibleKinds)
	case KindLogic, KindAction:
		return nil
	default:
		return fmt.Errorf("target kind %s: %w", target, types.ErrIncompatibleKinds)
	}
}

// checkSlot enforces slot naming and single occupancy. Logic targets
// require one of the fixed named slots; action targets take the implicit
// unnamed slot, so a second trigger edge is rejected as occupied.
func checkSlot(c Connection, target Node) error {
	switch target.Kind {
	case KindLogic:
		if !validLogicSlot(c.Slot) {
			return fmt.Errorf("logic node has no slot %q: %w", c.Slot, types.ErrIncompatibleKinds)
		}
	case KindAction:
		if c.Slot != "" {
			return fmt.Errorf("action node has no slot %q: %w", c.Slot, types.ErrIncompatibleKinds)
		}
	}
	return nil
}

func validLogicSlot(slot string) bool {
	for _, s := range LogicSlots() {
		if s == slot {
			return true
		}
	}
	return false
}
