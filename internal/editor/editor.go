// Package editor wires the graph model, connection validator, compiler,
// history, and evaluation bridge into the rule authoring workflow.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/badgeforge/badgeforge/internal/bridge"
	"github.com/badgeforge/badgeforge/internal/core/config"
	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/history"
	"github.com/badgeforge/badgeforge/internal/rules"
	"github.com/badgeforge/badgeforge/internal/store"
	"github.com/badgeforge/badgeforge/internal/types"
)

/*
 * Editor orchestration.
 *
 * All graph mutations run synchronously in response to discrete user
 * events; the graph is never mutated while a request is in flight. The
 * only asynchronous path is Test: overlapping test requests carry a
 * dispatch sequence number and a stale response never overwrites newer
 * highlight state (last response wins). After Close, in-flight results
 * are discarded entirely.
 *
 * History granularity: discrete operations (add, remove, connect,
 * disconnect) checkpoint immediately; continuous gestures (node drags)
 * go through the debounced Record path so a burst of move events yields
 * one snapshot.
 */

// Evaluator is the bridge contract the editor needs for test runs.
// *bridge.Client satisfies it.
type Evaluator interface {
	Evaluate(ctx context.Context, rule *rules.RuleDefinition, tc bridge.TestContext) (*bridge.EvalResult, error)
}

// Editor owns the live graph and its derived state.
type Editor struct {
	mu         sync.Mutex
	graph      graph.Graph
	history    *history.History
	cfg        *config.EditorConfig
	eval       Evaluator
	rulestore  *store.Store
	selection  types.NodeID
	highlights bridge.HighlightSet
	lastResult *bridge.EvalResult
	nextSeq    uint64
	applied    uint64
	closed     bool
}

// New creates an editor with an empty graph. The initial state is pushed
// to history immediately so the first undo after the first real edit
// returns here rather than to nothing. The store may be nil when
// persistence is handled elsewhere.
func New(cfg *config.EditorConfig, eval Evaluator, rulestore *store.Store) *Editor {
	if cfg == nil {
		cfg = config.DefaultEditorConfig()
	}
	e := &Editor{
		cfg:       cfg,
		eval:      eval,
		rulestore: rulestore,
		history:   history.New(cfg.HistoryCapacity, cfg.HistoryDebounce),
	}
	e.history.Checkpoint(&e.graph)
	return e
}

// Load replaces the editor graph with a saved one and restarts history
// from it. The caller is responsible for strict decoding; a corrupt graph
// must never be partially applied.
func (e *Editor) Load(g graph.Graph) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph = g.Clone()
	e.history = history.New(e.cfg.HistoryCapacity, e.cfg.HistoryDebounce)
	e.history.Checkpoint(&e.graph)
	e.clearHighlightsLocked()
}

// Graph returns a deep copy of the current graph.
func (e *Editor) Graph() graph.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Clone()
}

// AddCondition inserts a condition node and checkpoints.
func (e *Editor) AddCondition(spec graph.ConditionSpec, pos graph.Position) (types.NodeID, error) {
	return e.addNode(graph.Node{
		Kind:      graph.KindCondition,
		Position:  pos,
		Condition: &spec,
	})
}

// AddLogic inserts a logic node and checkpoints.
func (e *Editor) AddLogic(comb graph.Combinator, pos graph.Position) (types.NodeID, error) {
	return e.addNode(graph.Node{
		Kind:     graph.KindLogic,
		Position: pos,
		Logic:    &graph.LogicSpec{Combinator: comb},
	})
}

// AddAction inserts an action node and checkpoints.
func (e *Editor) AddAction(spec graph.ActionSpec, pos graph.Position) (types.NodeID, error) {
	return e.addNode(graph.Node{
		Kind:     graph.KindAction,
		Position: pos,
		Action:   &spec,
	})
}

func (e *Editor) addNode(n graph.Node) (types.NodeID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n.ID = types.NewNodeID()
	if err := e.graph.AddNode(n); err != nil {
		return "", err
	}
	e.history.Checkpoint(&e.graph)
	return n.ID, nil
}

// RemoveNode deletes a node, cascade-deletes its edges, and checkpoints.
func (e *Editor) RemoveNode(id types.NodeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph.RemoveNode(id)
	if e.selection == id {
		e.selection = ""
	}
	e.history.Checkpoint(&e.graph)
}

// Connect validates and admits a new edge, then checkpoints. A rejected
// connection leaves graph and history untouched and returns the
// user-facing reason.
func (e *Editor) Connect(source, target types.NodeID, slot string) (types.EdgeID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c := graph.Connection{Source: source, Target: target, Slot: slot}
	if err := graph.ValidateConnection(c, &e.graph); err != nil {
		return "", err
	}
	edge := graph.Edge{ID: types.NewEdgeID(), Source: source, Target: target, Slot: slot}
	e.graph.AddEdge(edge)
	e.history.Checkpoint(&e.graph)
	return edge.ID, nil
}

// Disconnect removes an edge and checkpoints.
func (e *Editor) Disconnect(id types.EdgeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph.RemoveEdge(id)
	e.history.Checkpoint(&e.graph)
}

// MoveNode updates a node position. Move events arrive in bursts during
// a drag, so the snapshot goes through the debounced path.
func (e *Editor) MoveNode(id types.NodeID, pos graph.Position) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph.MoveNode(id, pos)
	e.history.Record(&e.graph)
}

// EndDrag checkpoints the final position of a completed drag gesture.
func (e *Editor) EndDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.Checkpoint(&e.graph)
}

// Select marks a node as the current selection for shortcut targets.
func (e *Editor) Select(id types.NodeID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = id
}

// Undo restores the previous snapshot. Returns false at the first entry.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.graph = g
	e.clearHighlightsLocked()
	return true
}

// Redo restores the next snapshot. Returns false at the last entry.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.graph = g
	e.clearHighlightsLocked()
	return true
}

// CanUndo reports whether an earlier snapshot exists.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

// CanRedo reports whether a later snapshot exists.
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

// HandleShortcut dispatches a keyboard shortcut. Returns false for keys
// the editor does not bind.
func (e *Editor) HandleShortcut(key string) bool {
	switch key {
	case "ctrl+z":
		return e.Undo()
	case "ctrl+shift+z", "ctrl+y":
		return e.Redo()
	case "delete", "backspace":
		e.mu.Lock()
		id := e.selection
		e.mu.Unlock()
		if id == "" {
			return false
		}
		e.RemoveNode(id)
		return true
	default:
		return false
	}
}

// Compile converts the current graph into a rule definition.
func (e *Editor) Compile() (*rules.RuleDefinition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return rules.Compile(&e.graph)
}

// Validate returns the accumulated structural defect list for the
// current graph.
func (e *Editor) Validate() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return rules.ValidateGraph(&e.graph)
}

// Publish validates, compiles, serializes, and persists the current
// graph as a rule. Validation failures are joined so the caller sees the
// full defect list at once.
func (e *Editor) Publish(meta rules.Metadata) (types.RuleID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rulestore == nil {
		return "", fmt.Errorf("no rule store configured")
	}
	if errs := rules.ValidateForPublish(&e.graph, meta); len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	rule, err := rules.Compile(&e.graph)
	if err != nil {
		return "", err
	}
	rule.Code = meta.Code
	rule.Name = meta.Name
	rule.EventType = meta.EventType

	data, err := rules.Serialize(rule)
	if err != nil {
		return "", err
	}

	id := types.NewRuleID()
	if err := e.rulestore.Put(id, meta, data); err != nil {
		return "", err
	}
	return id, nil
}

// Test compiles the current graph, sends it with the test context to the
// evaluation engine, and projects the verdict onto the graph. A stale
// response (one dispatched before a later response was applied) does not
// overwrite highlight state; a response arriving after Close is
// discarded. Engine failure never corrupts graph or history state.
func (e *Editor) Test(ctx context.Context, tc bridge.TestContext) (*bridge.EvalResult, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, fmt.Errorf("editor is closed")
	}
	if e.eval == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("no evaluation engine configured")
	}
	rule, err := rules.Compile(&e.graph)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.nextSeq++
	seq := e.nextSeq
	snapshot := e.graph.Clone()
	e.mu.Unlock()

	result, err := e.eval.Evaluate(ctx, rule, tc)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return result, nil
	}
	if seq > e.applied {
		e.applied = seq
		e.highlights = bridge.ProjectHighlights(&snapshot, result)
		e.lastResult = result
	}
	return result, nil
}

// Highlights returns a copy of the current highlight set.
func (e *Editor) Highlights() bridge.HighlightSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := bridge.HighlightSet{
		Nodes: make(map[types.NodeID]bool, len(e.highlights.Nodes)),
		Edges: make(map[types.EdgeID]bool, len(e.highlights.Edges)),
	}
	for id := range e.highlights.Nodes {
		out.Nodes[id] = true
	}
	for id := range e.highlights.Edges {
		out.Edges[id] = true
	}
	return out
}

// LastResult returns the most recently applied test result, or nil.
func (e *Editor) LastResult() *bridge.EvalResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastResult
}

// Close deactivates the editor. In-flight test results arriving after
// Close are discarded.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

func (e *Editor) clearHighlightsLocked() {
	e.highlights = bridge.HighlightSet{}
	e.lastResult = nil
}
