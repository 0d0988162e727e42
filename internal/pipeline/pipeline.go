// SPDX-License-Identifier: MPL-2.0

// Package pipeline executes an ordered chain of verification stages
// strictly sequentially on the calling goroutine, aborting on the first
// failure. Stages wrap external tool invocations; the pipeline never
// parses or transforms their output, it only observes success or failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"slipway-cli/internal/toolrun"
)

var (
	// ErrStageFailed is the sentinel error wrapped by StageError.
	ErrStageFailed = errors.New("pipeline stage failed")
)

type (
	// Stage is one discrete checked step in the verification chain.
	// Created per run and discarded after.
	Stage struct {
		// Name identifies the stage in logs and failure reports.
		Name string
		// Run performs the stage. A nil return means success.
		Run func(ctx context.Context) error
	}

	// ExternalToolError reports a non-success completion status from an
	// invoked external command.
	ExternalToolError struct {
		// Stage is the stage the command ran under.
		Stage string
		// ExitCode is the command's raw completion status.
		ExitCode toolrun.ExitCode
	}

	// StageError identifies the first failing stage of a run. No stage
	// after it was executed.
	StageError struct {
		// Stage is the name of the failing stage.
		Stage string
		// Err is the stage's failure.
		Err error
	}

	// Runner executes stages in order.
	Runner struct {
		runner toolrun.Runner
		logger *log.Logger
	}
)

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("stage %q: external tool exited with status %s", e.Stage, e.ExitCode)
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q failed: %v", e.Stage, e.Err)
}

// Unwrap returns the stage's failure so callers can reach the tool exit
// status with errors.As, plus ErrStageFailed for errors.Is.
func (e *StageError) Unwrap() []error {
	return []error{ErrStageFailed, e.Err}
}

// ExitCode returns the failing tool's exit status when the stage failure
// was an external tool failure, and 1 otherwise.
func (e *StageError) ExitCode() toolrun.ExitCode {
	var toolErr *ExternalToolError
	if errors.As(e.Err, &toolErr) {
		return toolErr.ExitCode
	}
	return 1
}

// NewRunner creates a pipeline Runner. The toolrun.Runner is handed to
// command stages; the logger reports per-stage progress.
func NewRunner(runner toolrun.Runner, logger *log.Logger) *Runner {
	return &Runner{runner: runner, logger: logger}
}

// CommandStage wraps a single external command invocation as a Stage.
// Success is a zero completion status; the command's output streams are
// forwarded unmodified to the operator.
func (r *Runner) CommandStage(name string, cmd toolrun.Command) Stage {
	return Stage{
		Name: name,
		Run: func(ctx context.Context) error {
			result := r.runner.Run(ctx, cmd)
			if result.Error != nil {
				return result.Error
			}
			if !result.ExitCode.IsSuccess() {
				return &ExternalToolError{Stage: name, ExitCode: result.ExitCode}
			}
			return nil
		},
	}
}

// FuncStage wraps an arbitrary check as a Stage. Used for composite stages
// (feature powerset, test-program builds plus test suite) whose failure
// types carry their own diagnostics.
func FuncStage(name string, run func(ctx context.Context) error) Stage {
	return Stage{Name: name, Run: run}
}

// Run executes the stages in order on the calling goroutine. On the first
// stage failure it returns a StageError naming that stage; no later stage
// executes. There are no retries.
func (r *Runner) Run(ctx context.Context, stages []Stage) error {
	for i, stage := range stages {
		r.logger.Info("running stage", "stage", stage.Name, "step", fmt.Sprintf("%d/%d", i+1, len(stages)))

		if err := stage.Run(ctx); err != nil {
			r.logger.Error("stage failed", "stage", stage.Name, "err", err)
			return &StageError{Stage: stage.Name, Err: err}
		}

		r.logger.Info("stage passed", "stage", stage.Name)
	}
	return nil
}
