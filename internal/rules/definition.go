// internal/rules/definition.go
package rules

import (
	"encoding/json"
	"fmt"

	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/types"
)

/*
 * Compiled rule definition.
 *
 * A RuleDefinition is a tree, not a graph: one action root carrying either
 * a single condition leaf or a group of child expressions. The editor
 * graph is technically a DAG, but a well-formed rule has exactly one
 * action root and no shared subexpressions in serialized form, so the
 * compiler duplicates any fanned-out subtree rather than emit references.
 *
 * Wire shape (stable field order, canonical JSON):
 *   { "root": Action, "expression": Condition | Group }
 *   Condition = { "field", "operator", "value" }
 *   Group     = { "combinator": "AND"|"OR", "children": [...] }
 *   Action    = { "targetId", "quantity" >= 1 }
 *
 * RuleDefinition values are produced on demand and never mutated; they are
 * recomputed from the graph on every save or test.
 */

// Expression is either a Condition leaf or a Group of child expressions.
type Expression interface {
	exprNode()
}

// Condition is a single field comparison leaf.
// Value is always emitted, "null" for zero-arity operators; omitempty
// would drop legitimate zero scalars (0, false, "") from the wire.
type Condition struct {
	Field    string         `json:"field"`
	Operator graph.Operator `json:"operator"`
	Value    any            `json:"value"`
}

func (Condition) exprNode() {}

// Group combines child expressions with an AND/OR combinator. Children
// are ordered; order follows logic node slot order through compilation.
type Group struct {
	Combinator graph.Combinator `json:"combinator"`
	Children   []Expression     `json:"children"`
}

func (Group) exprNode() {}

// ActionRef is the rule root: what to grant and how many.
type ActionRef struct {
	TargetID    string `json:"targetId"`
	Quantity    int    `json:"quantity"`
	DisplayName string `json:"displayName,omitempty"`
}

// RuleDefinition is the compiled artifact consumed by the evaluation
// engine. Code, Name, and EventType are destination-system metadata
// required at publish time but optional in the wire shape.
type RuleDefinition struct {
	Root       ActionRef  `json:"root"`
	Expression Expression `json:"expression"`
	Code       string     `json:"code,omitempty"`
	Name       string     `json:"name,omitempty"`
	EventType  string     `json:"eventType,omitempty"`
}

// UnmarshalJSON decodes a rule definition with strict shape checks,
// surfacing descriptive errors instead of opaque parse failures.
func (r *RuleDefinition) UnmarshalJSON(data []byte) error {
	var raw struct {
		Root       *ActionRef      `json:"root"`
		Expression json.RawMessage `json:"expression"`
		Code       string          `json:"code"`
		Name       string          `json:"name"`
		EventType  string          `json:"eventType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("malformed rule definition: %w", err)
	}
	if raw.Root == nil {
		return fmt.Errorf("rule definition missing root action")
	}
	if raw.Root.TargetID == "" {
		return fmt.Errorf("root action missing targetId")
	}
	if raw.Root.Quantity < 1 {
		return fmt.Errorf("root action quantity must be >= 1, got %d", raw.Root.Quantity)
	}
	if len(raw.Expression) == 0 {
		return fmt.Errorf("rule definition missing expression")
	}
	expr, err := decodeExpression(raw.Expression, 0)
	if err != nil {
		return err
	}
	r.Root = *raw.Root
	r.Expression = expr
	r.Code = raw.Code
	r.Name = raw.Name
	r.EventType = raw.EventType
	return nil
}

// decodeExpression routes a raw message to Condition or Group based on
// shape. A "combinator" key selects Group, a "field" key Condition.
func decodeExpression(data []byte, depth int) (Expression, error) {
	if depth > types.MaxRuleDepth {
		return nil, fmt.Errorf("expression at depth %d: %w", depth, types.ErrRuleTooDeep)
	}

	var probe struct {
		Field      *string           `json:"field"`
		Operator   json.RawMessage   `json:"operator"`
		Value      json.RawMessage   `json:"value"`
		Combinator json.RawMessage   `json:"combinator"`
		Children   []json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed expression: %w", err)
	}

	switch {
	case probe.Combinator != nil:
		var comb graph.Combinator
		if err := comb.UnmarshalJSON(probe.Combinator); err != nil {
			return nil, err
		}
		if len(probe.Children) == 0 {
			return nil, fmt.Errorf("group with combinator %s has no children", comb)
		}
		group := Group{Combinator: comb, Children: make([]Expression, 0, len(probe.Children))}
		for i, child := range probe.Children {
			expr, err := decodeExpression(child, depth+1)
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i, err)
			}
			group.Children = append(group.Children, expr)
		}
		return group, nil

	case probe.Field != nil:
		if *probe.Field == "" {
			return nil, fmt.Errorf("condition missing field")
		}
		if probe.Operator == nil {
			return nil, fmt.Errorf("condition %q missing operator", *probe.Field)
		}
		var op graph.Operator
		if err := op.UnmarshalJSON(probe.Operator); err != nil {
			return nil, err
		}
		var value any
		if probe.Value != nil {
			if err := json.Unmarshal(probe.Value, &value); err != nil {
				return nil, fmt.Errorf("condition %q value: %w", *probe.Field, err)
			}
		}
		if err := CheckValueArity(op, value); err != nil {
			return nil, fmt.Errorf("condition %q: %w", *probe.Field, err)
		}
		return Condition{Field: *probe.Field, Operator: op, Value: value}, nil

	default:
		return nil, fmt.Errorf("expression must be a condition (field) or a group (combinator)")
	}
}

// CheckValueArity verifies the condition value against the operator's
// declared arity. Shared by the serializer, the compiler, and graph
// validation.
func CheckValueArity(op graph.Operator, value any) error {
	switch op.ValueArity() {
	case graph.ArityNone:
		if value != nil {
			return fmt.Errorf("operator %s takes no value", op)
		}
	case graph.ArityScalar:
		if value == nil {
			return fmt.Errorf("operator %s requires a value", op)
		}
		switch value.(type) {
		case string, float64, bool, int, int64:
			// scalars from JSON or in-process construction
		default:
			return fmt.Errorf("operator %s requires a scalar value, got %T", op, value)
		}
	case graph.ArityPair:
		list, ok := value.([]any)
		if !ok || len(list) != 2 {
			return fmt.Errorf("operator %s requires exactly two values", op)
		}
	case graph.ArityList:
		list, ok := value.([]any)
		if !ok || len(list) == 0 {
			return fmt.Errorf("operator %s requires a non-empty list", op)
		}
		if len(list) > types.MaxListValues {
			return fmt.Errorf("operator %s: %w", op, types.ErrTooManyListValues)
		}
	}
	return nil
}
