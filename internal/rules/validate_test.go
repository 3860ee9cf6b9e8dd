// internal/rules/validate_test.go
package rules

import (
	"errors"
	"testing"

	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/types"
)

func TestValidateGraph_ValidGraph(t *testing.T) {
	g := andGroupGraph()
	if errs := ValidateGraph(&g); len(errs) != 0 {
		t.Errorf("ValidateGraph() = %v, want no defects", errs)
	}
}

func TestValidateGraph_AccumulatesDefects(t *testing.T) {
	// Three independent defects: no action, empty condition field, logic
	// node with no inputs. All must surface in one pass.
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "c", Kind: graph.KindCondition, Condition: &graph.ConditionSpec{Field: "", Operator: graph.OpEq, Value: "v"}},
			{ID: "l", Kind: graph.KindLogic, Logic: &graph.LogicSpec{Combinator: graph.CombinatorAnd}},
		},
	}

	errs := ValidateGraph(&g)
	if len(errs) < 3 {
		t.Fatalf("ValidateGraph() = %d defects %v, want at least 3", len(errs), errs)
	}

	var sawNoAction, sawEmptyGroup bool
	for _, e := range errs {
		if errors.Is(e, types.ErrNoActionNode) {
			sawNoAction = true
		}
		if errors.Is(e, types.ErrEmptyGroup) {
			sawEmptyGroup = true
		}
	}
	if !sawNoAction {
		t.Errorf("defect list missing ErrNoActionNode: %v", errs)
	}
	if !sawEmptyGroup {
		t.Errorf("defect list missing ErrEmptyGroup: %v", errs)
	}
}

func TestValidateGraph_ActionDefects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*graph.Graph)
		wantErr error
	}{
		{"no trigger", func(g *graph.Graph) { g.RemoveEdge("e") }, types.ErrNoTrigger},
		{"multiple triggers", func(g *graph.Graph) {
			g.Nodes = append(g.Nodes, graph.Node{ID: "c2", Kind: graph.KindCondition, Condition: &graph.ConditionSpec{Field: "f", Operator: graph.OpEq, Value: "v"}})
			g.Edges = append(g.Edges, graph.Edge{ID: "e2", Source: "c2", Target: "a"})
		}, types.ErrMultipleTriggers},
		{"second action", func(g *graph.Graph) {
			g.Nodes = append(g.Nodes, graph.Node{ID: "a2", Kind: graph.KindAction, Action: &graph.ActionSpec{TargetID: "x", Quantity: 1}})
		}, types.ErrMultipleActionNodes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := singleConditionGraph()
			tt.mutate(&g)
			errs := ValidateGraph(&g)
			found := false
			for _, e := range errs {
				if errors.Is(e, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("ValidateGraph() = %v, want %v among defects", errs, tt.wantErr)
			}
		})
	}
}

func TestValidateGraph_ConditionArity(t *testing.T) {
	g := singleConditionGraph()
	g.Nodes[0].Condition.Operator = graph.OpBetween
	g.Nodes[0].Condition.Value = float64(5)

	errs := ValidateGraph(&g)
	if len(errs) == 0 {
		t.Fatalf("ValidateGraph() = no defects for between with scalar value")
	}
}

func TestValidateGraph_CycleReported(t *testing.T) {
	g := singleConditionGraph()
	g.Nodes = append(g.Nodes,
		graph.Node{ID: "l1", Kind: graph.KindLogic, Logic: &graph.LogicSpec{Combinator: graph.CombinatorAnd}},
		graph.Node{ID: "l2", Kind: graph.KindLogic, Logic: &graph.LogicSpec{Combinator: graph.CombinatorOr}},
	)
	g.Edges = append(g.Edges,
		graph.Edge{ID: "x1", Source: "l1", Target: "l2", Slot: "in1"},
		graph.Edge{ID: "x2", Source: "l2", Target: "l1", Slot: "in1"},
	)

	errs := ValidateGraph(&g)
	found := false
	for _, e := range errs {
		if errors.Is(e, types.ErrCycleDetected) {
			found = true
		}
	}
	if !found {
		t.Errorf("ValidateGraph() = %v, want ErrCycleDetected among defects", errs)
	}
}

func TestValidateForPublish_RequiresMetadata(t *testing.T) {
	g := singleConditionGraph()

	if errs := ValidateForPublish(&g, Metadata{Code: "welcome", Name: "Welcome Badge", EventType: "user.created"}); len(errs) != 0 {
		t.Errorf("ValidateForPublish() = %v with complete metadata, want none", errs)
	}

	errs := ValidateForPublish(&g, Metadata{})
	if len(errs) != 3 {
		t.Errorf("ValidateForPublish() = %d defects %v, want 3 metadata defects", len(errs), errs)
	}
}
