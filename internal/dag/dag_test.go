// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	t.Parallel()
	g := New()
	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestTopologicalSort_LinearChain(t *testing.T) {
	t.Parallel()
	g := New()
	// result -> keys -> harness (result must be published first)
	g.AddEdge("result", "keys")
	g.AddEdge("keys", "harness")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"result", "keys", "harness"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestTopologicalSort_Diamond(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("core", "left")
	g.AddEdge("core", "right")
	g.AddEdge("left", "top")
	g.AddEdge("right", "top")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order[0] != "core" {
		t.Errorf("expected core first, got %v", order)
	}
	if order[len(order)-1] != "top" {
		t.Errorf("expected top last, got %v", order)
	}
	if len(order) != 4 {
		t.Errorf("expected 4 nodes, got %d: %v", len(order), order)
	}
}

func TestTopologicalSort_Deterministic(t *testing.T) {
	t.Parallel()
	build := func() *Graph {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		g.AddEdge("a", "c")
		return g
	}

	first, err := build().TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 10 {
		again, err := build().TopologicalSort()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(first, again) {
			t.Fatalf("order not stable: %v vs %v", first, again)
		}
	}
}

func TestTopologicalSort_Cycle(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if len(cycleErr.Cycle) == 0 {
		t.Error("expected cycle nodes to be reported")
	}
}

func TestValidateOrder(t *testing.T) {
	t.Parallel()

	// result -> keys -> harness, result -> harness
	build := func() *Graph {
		g := New()
		g.AddEdge("result", "keys")
		g.AddEdge("keys", "harness")
		g.AddEdge("result", "harness")
		return g
	}

	tests := []struct {
		name    string
		order   []string
		wantErr bool
	}{
		{name: "valid curated order", order: []string{"result", "keys", "harness"}, wantErr: false},
		{name: "dependent before dependency", order: []string{"keys", "result", "harness"}, wantErr: true},
		{name: "fully reversed", order: []string{"harness", "keys", "result"}, wantErr: true},
		{name: "unknown package", order: []string{"result", "keys", "harness", "ghost"}, wantErr: true},
		{name: "missing package", order: []string{"result", "keys"}, wantErr: true},
		{name: "duplicate package", order: []string{"result", "keys", "keys", "harness"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := build().ValidateOrder(tt.order)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for order %v", tt.order)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for order %v: %v", tt.order, err)
			}
		})
	}
}

func TestValidateOrder_ReportsDriftPair(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("result", "harness")

	err := g.ValidateOrder([]string{"harness", "result"})
	var drift *OrderDriftError
	if !errors.As(err, &drift) {
		t.Fatalf("expected OrderDriftError, got %v", err)
	}
	if drift.Package != "harness" || drift.Dependency != "result" {
		t.Errorf("expected harness/result drift pair, got %q/%q", drift.Package, drift.Dependency)
	}
}

func TestValidateOrder_TransitiveDriftCaughtViaDirectEdge(t *testing.T) {
	t.Parallel()
	// a -> b -> c; ordering c before a forces a direct-edge violation too.
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	if err := g.ValidateOrder([]string{"c", "a", "b"}); err == nil {
		t.Error("expected transitive drift to be rejected")
	}
}
