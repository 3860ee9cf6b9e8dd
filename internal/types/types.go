// Package types provides domain identifiers and limits shared across
// badgeforge components.
//
// Zero-dependency design: types.go and errors.go use only the standard
// library. ID utilities in ids.go import uuid but are isolated so callers
// that never mint IDs avoid the dependency.
package types

import "time"

// NodeID identifies a vertex in the editor graph.
// String alias enables type safety while maintaining JSON string serialization.
type NodeID string

// EdgeID identifies a directed connection between two nodes.
type EdgeID string

// RuleID identifies a compiled rule definition.
// UUIDv7 time-ordering ensures sequential IDs cluster in B-tree indexes.
type RuleID string

// Resource limits enforced during editing and compilation. Enforcing limits
// at edit/compile time moves error detection to authoring time rather than
// evaluation time.
const (
	// MaxNodes caps the editor graph size to keep validation and
	// compilation walks bounded per user action.
	MaxNodes = 256

	// MaxLogicInputs is the fixed number of named input slots on a logic
	// node. Slot names are derived from the index ("in1".."in3").
	MaxLogicInputs = 3

	// MaxRuleDepth bounds group nesting in a compiled rule. 16 levels is
	// far beyond anything authorable with a 3-slot logic node but guards
	// deserialization of hostile input.
	MaxRuleDepth = 16

	// MaxListValues limits in/not_in operator lists to prevent quadratic
	// membership cost at evaluation time.
	MaxListValues = 64

	// HistoryCapacity is the default undo/redo ring buffer size.
	HistoryCapacity = 50

	// HistoryDebounce is the default coalescing window for burst change
	// events from a single continuous gesture.
	HistoryDebounce = 100 * time.Millisecond
)
