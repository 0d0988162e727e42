// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"
	"slices"
	"testing"

	"slipway-cli/internal/dag"
	"slipway-cli/internal/workspace"
)

func manifest(packages []workspace.Package, order []string) *workspace.Manifest {
	return &workspace.Manifest{
		Packages: packages,
		Publish:  workspace.PublishSection{Order: order},
	}
}

func TestBuildPlan_ComputedOrder(t *testing.T) {
	t.Parallel()
	m := manifest([]workspace.Package{
		{Name: "harness", Dependencies: []string{"result", "keys"}},
		{Name: "result"},
		{Name: "keys", Dependencies: []string{"result"}},
	}, nil)

	plan, err := BuildPlan(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(plan.Names(), []string{"result", "keys", "harness"}) {
		t.Errorf("expected dependency order [result keys harness], got %v", plan.Names())
	}
}

func TestBuildPlan_CuratedOrderAccepted(t *testing.T) {
	t.Parallel()
	m := manifest([]workspace.Package{
		{Name: "result"},
		{Name: "keys", Dependencies: []string{"result"}},
	}, []string{"result", "keys"})

	plan, err := BuildPlan(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(plan.Names(), []string{"result", "keys"}) {
		t.Errorf("expected curated order, got %v", plan.Names())
	}
}

func TestBuildPlan_CuratedOrderDriftRejected(t *testing.T) {
	t.Parallel()
	m := manifest([]workspace.Package{
		{Name: "result"},
		{Name: "keys", Dependencies: []string{"result"}},
	}, []string{"keys", "result"})

	_, err := BuildPlan(m)
	var drift *dag.OrderDriftError
	if !errors.As(err, &drift) {
		t.Fatalf("expected OrderDriftError, got %v", err)
	}
	if drift.Package != "keys" || drift.Dependency != "result" {
		t.Errorf("expected keys/result drift, got %q/%q", drift.Package, drift.Dependency)
	}
}

func TestBuildPlan_DependencyCycleRejected(t *testing.T) {
	t.Parallel()
	m := manifest([]workspace.Package{
		{Name: "a", Dependencies: []string{"b"}},
		{Name: "b", Dependencies: []string{"a"}},
	}, nil)

	_, err := BuildPlan(m)
	var cycle *dag.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
}

func TestBuildPlan_SkipPublishExcluded(t *testing.T) {
	t.Parallel()
	m := manifest([]workspace.Package{
		{Name: "result"},
		{Name: "conformance", Dependencies: []string{"result"}, SkipPublish: true},
		{Name: "harness", Dependencies: []string{"result"}},
	}, nil)

	plan, err := BuildPlan(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slices.Contains(plan.Names(), "conformance") {
		t.Errorf("expected skip-publish package excluded, got %v", plan.Names())
	}
}

func TestBuildPlan_DevDependenciesDoNotConstrainOrder(t *testing.T) {
	t.Parallel()
	// harness dev-depends on conformance which depends on harness; only a
	// dev edge closes the loop, so the plan must still build.
	m := manifest([]workspace.Package{
		{Name: "harness", DevDependencies: []string{"conformance"}},
		{Name: "conformance", Dependencies: []string{"harness"}},
	}, nil)

	plan, err := BuildPlan(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(plan.Names(), []string{"harness", "conformance"}) {
		t.Errorf("expected [harness conformance], got %v", plan.Names())
	}
}

func TestPhaseAndStatusStrings(t *testing.T) {
	t.Parallel()
	if PhaseSucceeded.String() != "succeeded" || PhaseFailed.String() != "failed" {
		t.Error("unexpected phase names")
	}
	if StatusPending.String() != "pending" || StatusPublished.String() != "published" || StatusFailed.String() != "failed" {
		t.Error("unexpected status names")
	}
}
