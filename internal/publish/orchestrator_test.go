// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"slipway-cli/internal/toolrun"
	"slipway-cli/internal/workspace"
)

// fakeRunner scripts outcomes per package name and records every call.
type fakeRunner struct {
	calls []toolrun.Command
	// failPackage makes the publish step for that package exit non-zero.
	failPackage string
	// probeSuccessAfter is the probe attempt number that first succeeds.
	// Zero means every probe fails.
	probeSuccessAfter int
	probeCalls        int
}

func (f *fakeRunner) Run(_ context.Context, cmd toolrun.Command) *toolrun.Result {
	f.calls = append(f.calls, cmd)
	if f.failPackage != "" && slices.Contains(cmd.Args, f.failPackage) {
		return toolrun.NewExitCodeResult(101)
	}
	return toolrun.NewSuccessResult()
}

func (f *fakeRunner) RunCapture(_ context.Context, cmd toolrun.Command) (*toolrun.Result, string) {
	f.probeCalls++
	if f.probeSuccessAfter > 0 && f.probeCalls >= f.probeSuccessAfter {
		return toolrun.NewSuccessResult(), ""
	}
	return toolrun.NewExitCodeResult(1), ""
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func testPlan(names ...string) *Plan {
	plan := &Plan{}
	for _, name := range names {
		plan.Packages = append(plan.Packages, workspace.Package{Name: name, Version: "0.1.0"})
	}
	return plan
}

// newTestOrchestrator builds an orchestrator with sleeps recorded, not slept.
func newTestOrchestrator(runner toolrun.Runner, probe bool) (*Orchestrator, *[]time.Duration) {
	orch := NewOrchestrator(
		toolrun.Command{Tool: "cargo", Args: []string{"publish"}},
		toolrun.Command{Tool: "registry-probe"}, probe,
		runner, testLogger(),
	)
	var slept []time.Duration
	orch.sleep = func(d time.Duration) { slept = append(slept, d) }
	return orch, &slept
}

func TestRun_AllPackagesPublished(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{}
	orch, slept := newTestOrchestrator(runner, false)

	report, err := orch.Run(context.Background(), testPlan("result", "keys", "harness"), Options{Credential: "tok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Phase != PhaseSucceeded {
		t.Errorf("expected terminal phase succeeded, got %s", report.Phase)
	}
	for i := range 3 {
		if report.StatusOf(i) != StatusPublished {
			t.Errorf("expected package %d published, got %s", i, report.StatusOf(i))
		}
	}
	// Propagation delay between steps, but not after the last.
	if len(*slept) != 2 {
		t.Errorf("expected 2 propagation waits, got %d", len(*slept))
	}
	for _, d := range *slept {
		if d != PropagationDelay {
			t.Errorf("expected fixed %v delay, got %v", PropagationDelay, d)
		}
	}
}

func TestRun_MidPlanFailure(t *testing.T) {
	t.Parallel()
	// Plan [A B C], B fails: end state must be A published, B failed, C pending.
	runner := &fakeRunner{failPackage: "B"}
	orch, _ := newTestOrchestrator(runner, false)

	report, err := orch.Run(context.Background(), testPlan("A", "B", "C"), Options{Credential: "tok"})

	var pubErr *Error
	if !errors.As(err, &pubErr) {
		t.Fatalf("expected publish Error, got %v", err)
	}
	if pubErr.Package != "B" || pubErr.Index != 1 {
		t.Errorf("expected failure at B (index 1), got %q (index %d)", pubErr.Package, pubErr.Index)
	}
	if report.Phase != PhaseFailed {
		t.Errorf("expected terminal phase failed, got %s", report.Phase)
	}
	if report.Index != 1 {
		t.Errorf("expected Failed(1), got Failed(%d)", report.Index)
	}

	expected := []Status{StatusPublished, StatusFailed, StatusPending}
	for i, want := range expected {
		if report.StatusOf(i) != want {
			t.Errorf("package %d: expected %s, got %s", i, want, report.StatusOf(i))
		}
	}

	// C was never attempted.
	for _, call := range runner.calls {
		if slices.Contains(call.Args, "C") {
			t.Error("expected no publish attempt for C after B failed")
		}
	}
}

func TestRun_FirstPackageFailure(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{failPackage: "A"}
	orch, slept := newTestOrchestrator(runner, false)

	report, err := orch.Run(context.Background(), testPlan("A", "B"), Options{Credential: "tok"})
	if err == nil {
		t.Fatal("expected error")
	}
	if report.StatusOf(0) != StatusFailed || report.StatusOf(1) != StatusPending {
		t.Errorf("expected [failed pending], got [%s %s]", report.StatusOf(0), report.StatusOf(1))
	}
	if len(*slept) != 0 {
		t.Error("expected no propagation wait after a failure")
	}
	if len(runner.calls) != 1 {
		t.Errorf("expected a single publish attempt, got %d", len(runner.calls))
	}
}

func TestRun_MissingCredential(t *testing.T) {
	t.Parallel()
	orch, _ := newTestOrchestrator(&fakeRunner{}, false)

	_, err := orch.Run(context.Background(), testPlan("A"), Options{})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestRun_DryRunNeedsNoCredential(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{}
	orch, slept := newTestOrchestrator(runner, false)

	report, err := orch.Run(context.Background(), testPlan("A", "B"), Options{DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Phase != PhaseSucceeded {
		t.Errorf("expected success, got %s", report.Phase)
	}
	if len(*slept) != 0 {
		t.Error("expected dry-run to skip propagation waits")
	}
	for _, call := range runner.calls {
		if !slices.Contains(call.Args, "--dry-run") {
			t.Errorf("expected --dry-run on every invocation, got %v", call.Args)
		}
		if slices.Contains(call.Args, "--token") {
			t.Errorf("expected no token flag without a credential, got %v", call.Args)
		}
	}
}

func TestRun_CommandCarriesTokenAndExtraArgs(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{}
	orch, _ := newTestOrchestrator(runner, false)

	_, err := orch.Run(context.Background(), testPlan("A"), Options{
		Credential: "secret",
		ExtraArgs:  []string{"--allow-dirty"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	args := strings.Join(runner.calls[0].Args, " ")
	for _, want := range []string{"-p A", "--token secret", "--allow-dirty"} {
		if !strings.Contains(args, want) {
			t.Errorf("expected publish args to contain %q, got %q", want, args)
		}
	}
}

func TestAwaitVisibility_ProbeShortensWait(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{probeSuccessAfter: 3}
	orch, slept := newTestOrchestrator(runner, true)

	_, err := orch.Run(context.Background(), testPlan("A", "B"), Options{Credential: "tok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.probeCalls != 3 {
		t.Errorf("expected 3 probe attempts, got %d", runner.probeCalls)
	}
	// Two failed probes slept the probe interval; no fixed delay needed.
	for _, d := range *slept {
		if d != ProbeInterval {
			t.Errorf("expected only probe-interval sleeps, got %v", d)
		}
	}
}

func TestAwaitVisibility_ProbeExhaustionFallsBackToDelay(t *testing.T) {
	t.Parallel()
	runner := &fakeRunner{} // every probe fails
	orch, slept := newTestOrchestrator(runner, true)

	_, err := orch.Run(context.Background(), testPlan("A", "B"), Options{Credential: "tok"})
	if err != nil {
		t.Fatalf("probe exhaustion must not fail the run: %v", err)
	}
	if runner.probeCalls != ProbeAttempts {
		t.Errorf("expected %d probe attempts, got %d", ProbeAttempts, runner.probeCalls)
	}
	if len(*slept) == 0 || (*slept)[len(*slept)-1] != PropagationDelay {
		t.Error("expected the fixed propagation delay after probe exhaustion")
	}
}
