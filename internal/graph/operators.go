// internal/graph/operators.go
package graph

import "fmt"

/*
 * Condition operator enum.
 *
 * Closed set of 14 comparison operators, each with a declared value arity:
 *   - arity 0: is_empty, is_not_empty (no value)
 *   - arity 2: between (two-element range)
 *   - list:    in, not_in (membership lists, bounded by MaxListValues)
 *   - arity 1: everything else (single scalar)
 *
 * Operator semantics are defined by the external evaluation engine; the
 * editor core only carries operators through compilation and enforces
 * arity during serialization and validation.
 */

// Operator is a condition comparison operator.
type Operator int

const (
	OpUnspecified Operator = iota
	OpEq
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpContains
	OpStartsWith
	OpEndsWith
	OpIn
	OpNotIn
	OpBetween
	OpIsEmpty
	OpIsNotEmpty
)

// Arity describes how many comparison values an operator takes.
type Arity int

const (
	ArityNone   Arity = iota // no value
	ArityScalar              // single scalar value
	ArityPair                // exactly two values (range)
	ArityList                // one or more values (membership)
)

var operatorNames = map[Operator]string{
	OpEq:         "eq",
	OpNeq:        "neq",
	OpGt:         "gt",
	OpGte:        "gte",
	OpLt:         "lt",
	OpLte:        "lte",
	OpContains:   "contains",
	OpStartsWith: "starts_with",
	OpEndsWith:   "ends_with",
	OpIn:         "in",
	OpNotIn:      "not_in",
	OpBetween:    "between",
	OpIsEmpty:    "is_empty",
	OpIsNotEmpty: "is_not_empty",
}

var operatorValues = func() map[string]Operator {
	m := make(map[string]Operator, len(operatorNames))
	for op, name := range operatorNames {
		m[name] = op
	}
	return m
}()

// String returns the wire name for the operator.
func (op Operator) String() string {
	if name, ok := operatorNames[op]; ok {
		return name
	}
	return "unspecified"
}

// ParseOperator converts a wire name to an Operator.
func ParseOperator(s string) (Operator, error) {
	if op, ok := operatorValues[s]; ok {
		return op, nil
	}
	return OpUnspecified, fmt.Errorf("unknown operator %q", s)
}

// ValueArity returns the declared arity of the operator.
func (op Operator) ValueArity() Arity {
	switch op {
	case OpIsEmpty, OpIsNotEmpty:
		return ArityNone
	case OpBetween:
		return ArityPair
	case OpIn, OpNotIn:
		return ArityList
	default:
		return ArityScalar
	}
}

// MarshalJSON encodes the operator as its wire name.
func (op Operator) MarshalJSON() ([]byte, error) {
	if _, ok := operatorNames[op]; !ok {
		return nil, fmt.Errorf("cannot marshal unspecified operator")
	}
	return []byte(`"` + op.String() + `"`), nil
}

// UnmarshalJSON decodes a wire name, rejecting unknown operators.
func (op *Operator) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("operator must be a JSON string, got %s", data)
	}
	parsed, err := ParseOperator(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}
