// internal/rules/serialize.go
package rules

import (
	"encoding/json"
	"fmt"
)

/*
 * Canonical rule serialization.
 *
 * The serialized shape is stable: struct field order fixes key order, and
 * compact encoding fixes whitespace, so re-serializing an unmodified,
 * deserialized rule yields byte-identical output. That round-trip property
 * is what lets the store and the evaluation engine treat rule bytes as
 * content-addressable.
 *
 * Deserialization is strict: unknown combinators, unknown operators,
 * operator/value arity mismatches, missing condition fields, and
 * non-positive quantities are rejected with descriptive errors rather
 * than an opaque parse exception (see definition.go).
 */

// Serialize encodes the rule as canonical compact JSON.
func Serialize(rule *RuleDefinition) ([]byte, error) {
	if rule == nil {
		return nil, fmt.Errorf("cannot serialize nil rule")
	}
	if rule.Expression == nil {
		return nil, fmt.Errorf("cannot serialize rule without expression")
	}
	data, err := json.Marshal(rule)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize rule: %w", err)
	}
	return data, nil
}

// Deserialize decodes canonical JSON into a rule definition, rejecting
// malformed input with a descriptive error.
func Deserialize(data []byte) (*RuleDefinition, error) {
	var rule RuleDefinition
	if err := json.Unmarshal(data, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}
