// SPDX-License-Identifier: MPL-2.0

// Package publish uploads the workspace's packages to the registry in
// dependency order, one at a time. Publishing is irreversible: on the first
// failure the orchestrator aborts the remainder, leaves already-published
// packages in place, and hands the inconsistency window to the operator.
// There is no rollback and no retry.
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"slipway-cli/internal/toolrun"
	"slipway-cli/internal/workspace"
)

const (
	// PropagationDelay is the fixed blocking wait between publish steps
	// when no registry probe is configured, allowing the registry index to
	// propagate so the next package's dependency resolution succeeds.
	PropagationDelay = 5 * time.Second

	// ProbeInterval is the pause between registry visibility probes.
	ProbeInterval = time.Second
	// ProbeAttempts bounds the visibility poll. Exhaustion falls back to
	// the fixed delay rather than failing the run: the probe is an
	// optimization, not a gate.
	ProbeAttempts = 30
)

// ErrMissingCredential is returned when publish is attempted without a token.
var ErrMissingCredential = errors.New("no publish credential supplied")

type (
	// Error reports the first failing publish step. Already-published
	// packages remain published; later packages were never attempted.
	Error struct {
		// Package is the failing package's name.
		Package string
		// Index is the package's plan position.
		Index int
		// Cause is the underlying failure. The orchestrator does not
		// distinguish authentication, network, or version conflicts.
		Cause error
	}

	// Options configures one publish run.
	Options struct {
		// Credential is the registry authentication token. Required
		// unless DryRun is set.
		Credential string
		// ExtraArgs are pass-through arguments appended to every publish
		// invocation.
		ExtraArgs []string
		// DryRun runs the publish tool in its dry-run mode and skips
		// propagation waits; nothing reaches the registry.
		DryRun bool
	}

	// Orchestrator publishes a Plan sequentially on the calling goroutine.
	Orchestrator struct {
		// Publisher is the base publish command.
		Publisher toolrun.Command
		// Probe is the registry visibility query command; unset when the
		// registry exposes no such endpoint.
		Probe toolrun.Command
		// HasProbe reports whether Probe is configured.
		HasProbe bool

		runner toolrun.Runner
		logger *log.Logger

		// sleep is swapped out by tests.
		sleep func(time.Duration)
	}
)

func (e *Error) Error() string {
	return fmt.Sprintf("failed to publish package %q (step %d): %v", e.Package, e.Index+1, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// NewOrchestrator creates a publish Orchestrator.
func NewOrchestrator(publisher toolrun.Command, probe toolrun.Command, hasProbe bool, runner toolrun.Runner, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		Publisher: publisher,
		Probe:     probe,
		HasProbe:  hasProbe,
		runner:    runner,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// Run publishes the plan in order. It returns the run Report together with
// the Error for the failing step, if any. State transitions follow
// Idle → Publishing(0) → … → Succeeded, with any Publishing(i) failure
// moving to the terminal Failed(i).
func (o *Orchestrator) Run(ctx context.Context, plan *Plan, opts Options) (*Report, error) {
	if opts.Credential == "" && !opts.DryRun {
		return nil, ErrMissingCredential
	}

	report := &Report{
		Phase:    PhaseIdle,
		Statuses: make([]Status, len(plan.Packages)),
	}

	for i, pkg := range plan.Packages {
		report.Phase = PhasePublishing
		report.Index = i
		o.logger.Info("publishing package",
			"package", pkg.Name, "version", pkg.Version,
			"step", fmt.Sprintf("%d/%d", i+1, len(plan.Packages)), "dry-run", opts.DryRun)

		if err := o.publishOne(ctx, pkg, opts); err != nil {
			report.Phase = PhaseFailed
			report.Statuses[i] = StatusFailed
			stepErr := &Error{Package: pkg.Name, Index: i, Cause: err}
			o.logger.Error("publish aborted; already-published packages remain published",
				"package", pkg.Name, "remaining", len(plan.Packages)-i-1)
			return report, stepErr
		}
		report.Statuses[i] = StatusPublished

		// Propagation wait between steps; pointless after the last one.
		if i < len(plan.Packages)-1 && !opts.DryRun {
			o.awaitVisibility(ctx, pkg)
		}
	}

	report.Phase = PhaseSucceeded
	o.logger.Info("publish complete", "packages", len(plan.Packages))
	return report, nil
}

// publishOne runs one publish step.
func (o *Orchestrator) publishOne(ctx context.Context, pkg workspace.Package, opts Options) error {
	cmd := o.Publisher.WithArgs("-p", pkg.Name)
	if opts.DryRun {
		cmd = cmd.WithArgs("--dry-run")
	}
	if opts.Credential != "" {
		cmd = cmd.WithArgs("--token", opts.Credential)
	}
	cmd = cmd.WithArgs(opts.ExtraArgs...)

	result := o.runner.Run(ctx, cmd)
	if result.Error != nil {
		return result.Error
	}
	if !result.ExitCode.IsSuccess() {
		return fmt.Errorf("publish tool exited with status %s", result.ExitCode)
	}
	return nil
}

// awaitVisibility blocks until the just-published version is visible in the
// registry index. With a probe configured it polls the registry; without
// one, or when the poll budget runs out, it falls back to the fixed delay.
func (o *Orchestrator) awaitVisibility(ctx context.Context, pkg workspace.Package) {
	if !o.HasProbe {
		o.logger.Info("waiting for registry index propagation", "delay", PropagationDelay)
		o.sleep(PropagationDelay)
		return
	}

	probe := o.Probe.WithArgs(pkg.Name, pkg.Version)
	for attempt := 1; attempt <= ProbeAttempts; attempt++ {
		result, _ := o.runner.RunCapture(ctx, probe)
		if result.Success() {
			o.logger.Info("package visible in registry", "package", pkg.Name, "attempts", attempt)
			return
		}
		o.sleep(ProbeInterval)
	}

	o.logger.Warn("registry probe never confirmed visibility, proceeding after fixed delay",
		"package", pkg.Name, "attempts", ProbeAttempts)
	o.sleep(PropagationDelay)
}
