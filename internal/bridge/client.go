// Package bridge sends compiled rules to the external evaluation engine
// and maps verdicts back onto editor graph identifiers.
//
// Not an evaluator: operator semantics are defined by the engine. The
// bridge only round-trips JSON and projects the response onto the graph
// for visual feedback.
package bridge

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/badgeforge/badgeforge/internal/rules"
)

// TestContext is the synthetic event the engine evaluates a rule against.
type TestContext struct {
	EventType  string         `json:"eventType"`
	EventData  map[string]any `json:"eventData,omitempty"`
	SubjectID  string         `json:"subjectId"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// ConditionResult is the engine's per-condition verdict.
type ConditionResult struct {
	NodeID        string `json:"nodeId"`
	Field         string `json:"field"`
	Operator      string `json:"operator"`
	ExpectedValue any    `json:"expectedValue"`
	ActualValue   any    `json:"actualValue"`
	Matched       bool   `json:"matched"`
}

// TriggeredAction is an action the engine would fire for a match.
type TriggeredAction struct {
	TargetID string `json:"targetId"`
	Quantity int    `json:"quantity"`
}

// EvalResult is the engine's full response. Fields may be partially
// populated; callers must tolerate missing matchedNodeIds.
type EvalResult struct {
	Matched          bool              `json:"matched"`
	ConditionResults []ConditionResult `json:"conditionResults"`
	MatchedNodeIDs   []string          `json:"matchedNodeIds"`
	TriggeredActions []TriggeredAction `json:"triggeredActions"`
	EvaluationTimeMs int64             `json:"evaluationTimeMs"`
	Error            string            `json:"error,omitempty"`
}

type evalRequest struct {
	CompiledRule *rules.RuleDefinition `json:"compiledRule"`
	TestContext  TestContext           `json:"testContext"`
}

// Client talks to the evaluation engine over JSON/HTTP.
type Client struct {
	rest *resty.Client
}

// NewClient creates a bridge client for the given engine base URL.
func NewClient(engineURL string, timeout time.Duration) *Client {
	rest := resty.New().
		SetBaseURL(engineURL).
		SetTimeout(timeout)
	return &Client{rest: rest}
}

// Evaluate posts the compiled rule plus test context and returns the
// engine's verdict. Never retried automatically; retries happen only at
// the user's explicit request.
func (c *Client) Evaluate(ctx context.Context, rule *rules.RuleDefinition, tc TestContext) (*EvalResult, error) {
	var out EvalResult
	res, err := c.rest.R().
		SetContext(ctx).
		SetBody(evalRequest{CompiledRule: rule, TestContext: tc}).
		SetResult(&out).
		Post("/v1/evaluate")
	if err != nil {
		return nil, fmt.Errorf("evaluation request failed: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("evaluation engine returned %s", res.Status())
	}
	return &out, nil
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.rest.Close()
}
