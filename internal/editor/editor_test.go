// internal/editor/editor_test.go
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/badgeforge/badgeforge/internal/bridge"
	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/rules"
	"github.com/badgeforge/badgeforge/internal/types"
)

// stubEvaluator lets tests control response ordering per call.
type stubEvaluator struct {
	mu      sync.Mutex
	calls   int
	respond func(call int, rule *rules.RuleDefinition) (*bridge.EvalResult, error)
}

func (s *stubEvaluator) Evaluate(ctx context.Context, rule *rules.RuleDefinition, tc bridge.TestContext) (*bridge.EvalResult, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()
	return s.respond(call, rule)
}

func buildSimpleRule(t *testing.T, e *Editor) (condID, actionID types.NodeID) {
	t.Helper()
	condID, err := e.AddCondition(graph.ConditionSpec{Field: "user.level", Operator: graph.OpGte, Value: float64(5)}, graph.Position{X: 0, Y: 0})
	if err != nil {
		t.Fatalf("AddCondition() error = %v", err)
	}
	actionID, err = e.AddAction(graph.ActionSpec{TargetID: "badge-1", Quantity: 1}, graph.Position{X: 240, Y: 0})
	if err != nil {
		t.Fatalf("AddAction() error = %v", err)
	}
	if _, err := e.Connect(condID, actionID, ""); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return condID, actionID
}

func TestEditor_BuildCompileRoundTrip(t *testing.T) {
	e := New(nil, nil, nil)
	buildSimpleRule(t, e)

	rule, err := e.Compile()
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if rule.Root.TargetID != "badge-1" {
		t.Errorf("root target = %q, want badge-1", rule.Root.TargetID)
	}
	cond, ok := rule.Expression.(rules.Condition)
	if !ok || cond.Field != "user.level" {
		t.Errorf("expression = %+v, want user.level condition", rule.Expression)
	}
}

func TestEditor_ConnectRejectionLeavesStateUntouched(t *testing.T) {
	e := New(nil, nil, nil)
	condID, actionID := buildSimpleRule(t, e)

	before := e.Graph()

	// Second trigger on the action must be refused.
	c2, err := e.AddCondition(graph.ConditionSpec{Field: "f", Operator: graph.OpEq, Value: "v"}, graph.Position{})
	if err != nil {
		t.Fatalf("AddCondition() error = %v", err)
	}

	if _, err := e.Connect(c2, actionID, ""); !errors.Is(err, types.ErrSlotOccupied) {
		t.Fatalf("Connect() error = %v, want ErrSlotOccupied", err)
	}
	if _, err := e.Connect(actionID, condID, ""); !errors.Is(err, types.ErrIncompatibleKinds) {
		t.Fatalf("Connect() error = %v, want ErrIncompatibleKinds", err)
	}

	after := e.Graph()
	if len(after.Edges) != len(before.Edges) {
		t.Errorf("rejected connection changed edges: %d -> %d", len(before.Edges), len(after.Edges))
	}
}

func TestEditor_UndoRedo(t *testing.T) {
	e := New(nil, nil, nil)
	buildSimpleRule(t, e)

	// Three checkpoints past mount: cond, action, edge.
	if !e.CanUndo() {
		t.Fatalf("CanUndo() = false after edits")
	}

	if !e.Undo() {
		t.Fatalf("Undo() = false")
	}
	if g := e.Graph(); len(g.Edges) != 0 {
		t.Errorf("after undo edges = %d, want 0", len(g.Edges))
	}

	if !e.Redo() {
		t.Fatalf("Redo() = false")
	}
	if g := e.Graph(); len(g.Edges) != 1 {
		t.Errorf("after redo edges = %d, want 1", len(g.Edges))
	}

	// Walk all the way back to the mount state.
	for e.Undo() {
	}
	if g := e.Graph(); len(g.Nodes) != 0 {
		t.Errorf("full undo left %d nodes, want empty mount state", len(g.Nodes))
	}
}

func TestEditor_UndoAfterEditDiscardsRedo(t *testing.T) {
	e := New(nil, nil, nil)
	buildSimpleRule(t, e)

	e.Undo()
	if !e.CanRedo() {
		t.Fatalf("CanRedo() = false after undo")
	}

	if _, err := e.AddLogic(graph.CombinatorAnd, graph.Position{}); err != nil {
		t.Fatalf("AddLogic() error = %v", err)
	}
	if e.CanRedo() {
		t.Errorf("CanRedo() = true after divergent edit")
	}
}

func TestEditor_HandleShortcut(t *testing.T) {
	e := New(nil, nil, nil)
	condID, _ := buildSimpleRule(t, e)

	if !e.HandleShortcut("ctrl+z") {
		t.Errorf("ctrl+z not handled")
	}
	if !e.HandleShortcut("ctrl+shift+z") {
		t.Errorf("ctrl+shift+z not handled")
	}
	if e.HandleShortcut("ctrl+p") {
		t.Errorf("unbound shortcut reported handled")
	}

	if e.HandleShortcut("delete") {
		t.Errorf("delete with no selection reported handled")
	}
	e.Select(condID)
	if !e.HandleShortcut("delete") {
		t.Errorf("delete with selection not handled")
	}
	g := e.Graph()
	if _, ok := g.NodeByID(condID); ok {
		t.Errorf("selected node survived delete shortcut")
	}
	if len(g.Edges) != 0 {
		t.Errorf("edges survived cascade delete: %d", len(g.Edges))
	}
}

func TestEditor_MoveRecordsDebounced(t *testing.T) {
	e := New(nil, nil, nil)
	condID, _ := buildSimpleRule(t, e)

	// A burst of move events then an explicit drag end. The drag end
	// checkpoint always lands regardless of debounce state.
	for i := 0; i < 20; i++ {
		e.MoveNode(condID, graph.Position{X: float64(i), Y: 0})
	}
	e.EndDrag()

	g := e.Graph()
	n, ok := g.NodeByID(condID)
	if !ok {
		t.Fatalf("moved node missing")
	}
	if n.Position.X != 19 {
		t.Errorf("position.X = %v, want 19", n.Position.X)
	}

	if !e.Undo() {
		t.Fatalf("Undo() = false after drag")
	}
}

func TestEditor_TestAppliesHighlights(t *testing.T) {
	eval := &stubEvaluator{
		respond: func(call int, rule *rules.RuleDefinition) (*bridge.EvalResult, error) {
			return &bridge.EvalResult{Matched: true}, nil
		},
	}
	e := New(nil, eval, nil)
	buildSimpleRule(t, e)

	res, err := e.Test(context.Background(), bridge.TestContext{EventType: "user.levelup"})
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if !res.Matched {
		t.Errorf("Matched = false")
	}

	hs := e.Highlights()
	if len(hs.Nodes) != 2 || len(hs.Edges) != 1 {
		t.Errorf("highlights = %d nodes %d edges, want 2/1", len(hs.Nodes), len(hs.Edges))
	}
	if e.LastResult() == nil {
		t.Errorf("LastResult() = nil after applied test")
	}
}

func TestEditor_TestCompileFailureIsClean(t *testing.T) {
	eval := &stubEvaluator{
		respond: func(call int, rule *rules.RuleDefinition) (*bridge.EvalResult, error) {
			t.Errorf("engine called for uncompilable graph")
			return nil, nil
		},
	}
	e := New(nil, eval, nil)

	// Empty graph: no action node, nothing to send.
	if _, err := e.Test(context.Background(), bridge.TestContext{}); !errors.Is(err, types.ErrNoActionNode) {
		t.Fatalf("Test() error = %v, want ErrNoActionNode", err)
	}
	if e.LastResult() != nil {
		t.Errorf("failed test left a result behind")
	}
}

func TestEditor_StaleResponseDoesNotOverwrite(t *testing.T) {
	firstDispatched := make(chan struct{})
	releaseFirst := make(chan struct{})

	eval := &stubEvaluator{}
	eval.respond = func(call int, rule *rules.RuleDefinition) (*bridge.EvalResult, error) {
		if call == 1 {
			close(firstDispatched)
			<-releaseFirst
			return &bridge.EvalResult{Matched: false, MatchedNodeIDs: []string{"stale"}}, nil
		}
		return &bridge.EvalResult{Matched: true}, nil
	}

	e := New(nil, eval, nil)
	buildSimpleRule(t, e)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		e.Test(context.Background(), bridge.TestContext{})
	}()

	<-firstDispatched

	// Second request dispatches later and completes first.
	if _, err := e.Test(context.Background(), bridge.TestContext{}); err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if got := e.LastResult(); got == nil || !got.Matched {
		t.Fatalf("second response not applied: %+v", got)
	}

	close(releaseFirst)
	wg.Wait()

	// The first (stale) response must not have clobbered the newer one.
	if got := e.LastResult(); got == nil || !got.Matched {
		t.Errorf("stale response overwrote newer highlights: %+v", got)
	}
	if hs := e.Highlights(); len(hs.Nodes) != 2 {
		t.Errorf("highlights = %d nodes, want full match set", len(hs.Nodes))
	}
}

func TestEditor_CloseDiscardsInFlightResults(t *testing.T) {
	dispatched := make(chan struct{})
	release := make(chan struct{})

	eval := &stubEvaluator{
		respond: func(call int, rule *rules.RuleDefinition) (*bridge.EvalResult, error) {
			close(dispatched)
			<-release
			return &bridge.EvalResult{Matched: true}, nil
		},
	}
	e := New(nil, eval, nil)
	buildSimpleRule(t, e)

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Test(context.Background(), bridge.TestContext{})
	}()

	<-dispatched
	e.Close()
	close(release)
	<-done

	if e.LastResult() != nil {
		t.Errorf("result applied after Close")
	}
	if hs := e.Highlights(); len(hs.Nodes) != 0 {
		t.Errorf("highlights applied after Close: %v", hs.Nodes)
	}

	if _, err := e.Test(context.Background(), bridge.TestContext{}); err == nil {
		t.Errorf("Test() = nil error on closed editor")
	}
}

func TestEditor_UndoClearsHighlights(t *testing.T) {
	eval := &stubEvaluator{
		respond: func(call int, rule *rules.RuleDefinition) (*bridge.EvalResult, error) {
			return &bridge.EvalResult{Matched: true}, nil
		},
	}
	e := New(nil, eval, nil)
	buildSimpleRule(t, e)

	if _, err := e.Test(context.Background(), bridge.TestContext{}); err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if hs := e.Highlights(); len(hs.Nodes) == 0 {
		t.Fatalf("no highlights after match")
	}

	e.Undo()
	if hs := e.Highlights(); len(hs.Nodes) != 0 {
		t.Errorf("highlights survived undo: %v", hs.Nodes)
	}
	if e.LastResult() != nil {
		t.Errorf("LastResult() survived undo")
	}
}

func TestEditor_PublishRequiresStoreAndMetadata(t *testing.T) {
	e := New(nil, nil, nil)
	buildSimpleRule(t, e)

	if _, err := e.Publish(rules.Metadata{Code: "c", Name: "n", EventType: "ev"}); err == nil {
		t.Errorf("Publish() = nil error without a store")
	} else if !strings.Contains(err.Error(), "store") {
		t.Errorf("Publish() error = %v, want store complaint", err)
	}
}

func TestEditor_LoadReplacesGraphAndHistory(t *testing.T) {
	e := New(nil, nil, nil)
	buildSimpleRule(t, e)

	saved := graph.Graph{
		Nodes: []graph.Node{
			{ID: "x", Kind: graph.KindCondition, Condition: &graph.ConditionSpec{Field: "f", Operator: graph.OpEq, Value: "v"}},
		},
	}
	e.Load(saved)

	g := e.Graph()
	if len(g.Nodes) != 1 || g.Nodes[0].ID != "x" {
		t.Errorf("loaded graph = %+v", g.Nodes)
	}
	if e.CanUndo() {
		t.Errorf("CanUndo() = true right after load; history must restart")
	}

	// Loaded snapshot is isolated from the caller's copy.
	saved.Nodes[0].Condition.Field = "mutated"
	if got := e.Graph().Nodes[0].Condition.Field; got != "f" {
		t.Errorf("editor shares loaded graph with caller: field = %q", got)
	}
}
