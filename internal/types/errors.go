package types

import "errors"

// Sentinel errors for badgeforge operations.
var (
	// ErrSelfLoop indicates a proposed edge with identical endpoints.
	ErrSelfLoop = errors.New("connection would form a self-loop")

	// ErrUnknownNode indicates an edge endpoint that is not in the graph.
	ErrUnknownNode = errors.New("node not found in graph")

	// ErrCycleDetected indicates a connection or compilation walk that
	// would close a cycle.
	ErrCycleDetected = errors.New("connection would create a cycle")

	// ErrSlotOccupied indicates a (target, slot) pair already bound to
	// another edge.
	ErrSlotOccupied = errors.New("input slot already occupied")

	// ErrIncompatibleKinds indicates a source/target kind pair with no
	// declared compatibility.
	ErrIncompatibleKinds = errors.New("node kinds cannot be connected")

	// ErrNoActionNode indicates a graph with no action node to compile.
	ErrNoActionNode = errors.New("graph has no action node")

	// ErrMultipleActionNodes indicates a graph with more than one action
	// node; a rule has exactly one root.
	ErrMultipleActionNodes = errors.New("graph has multiple action nodes")

	// ErrNoTrigger indicates an action node with no incoming edge.
	ErrNoTrigger = errors.New("action node has no trigger")

	// ErrMultipleTriggers indicates an action node with more than one
	// incoming edge; the compiled tree has a single root expression.
	ErrMultipleTriggers = errors.New("action node has multiple triggers")

	// ErrEmptyGroup indicates a logic node with zero populated inputs.
	ErrEmptyGroup = errors.New("logic node has no populated inputs")

	// ErrRuleTooDeep indicates group nesting beyond MaxRuleDepth.
	ErrRuleTooDeep = errors.New("rule nesting exceeds maximum depth")

	// ErrTooManyNodes indicates a graph beyond MaxNodes.
	ErrTooManyNodes = errors.New("graph exceeds maximum node count")

	// ErrTooManyListValues indicates an in/not_in list beyond MaxListValues.
	ErrTooManyListValues = errors.New("operator list has too many values")

	// ErrTooManyChildren indicates a group with more children than a logic
	// node has input slots; such a rule cannot be decompiled.
	ErrTooManyChildren = errors.New("group has more children than logic input slots")

	// ErrRuleNotFound indicates a rule ID absent from the store.
	ErrRuleNotFound = errors.New("rule not found")
)
