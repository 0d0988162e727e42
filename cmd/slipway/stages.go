// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"

	"slipway-cli/internal/features"
	"slipway-cli/internal/pipeline"
	"slipway-cli/internal/testprog"
	"slipway-cli/internal/toolrun"
)

// runTool invokes a single external tool and converts a non-zero completion
// status into an ExitError carrying the tool's raw exit code.
func (a *App) runTool(ctx context.Context, name string, cmd toolrun.Command) error {
	a.Logger.Debug("invoking tool", "stage", name, "command", cmd.String())
	result := a.Runner.Run(ctx, cmd)
	if result.Error != nil {
		return &ExitError{Code: 1, Err: result.Error}
	}
	if !result.ExitCode.IsSuccess() {
		return &ExitError{
			Code: result.ExitCode,
			Err:  &pipeline.ExternalToolError{Stage: name, ExitCode: result.ExitCode},
		}
	}
	return nil
}

// pipelineRunner builds the stage runner for this invocation.
func (a *App) pipelineRunner() *pipeline.Runner {
	return pipeline.NewRunner(a.Runner, a.Logger)
}

// checkStages is the ordered verification chain behind all-checks:
// format-check → lint → check-features → test. Stopping at the first
// failure is the pipeline runner's job.
func (a *App) checkStages(pr *pipeline.Runner) []pipeline.Stage {
	return []pipeline.Stage{
		pr.CommandStage("format-check", a.Tools.Formatter.WithArgs("--check")),
		pr.CommandStage("lint", a.Tools.Linter),
		a.featureStage(),
		a.testStage(),
	}
}

// featureStage wraps the powerset checker as a pipeline stage.
func (a *App) featureStage() pipeline.Stage {
	return pipeline.FuncStage("check-features", func(ctx context.Context) error {
		checker := features.NewChecker(a.Tools.Builder, a.Runner, a.Logger)
		return checker.Check(ctx, a.Manifest.FeatureUniverse())
	})
}

// testStage builds the auxiliary test programs, then runs the full test
// suite. Both must succeed for the stage to pass.
func (a *App) testStage() pipeline.Stage {
	return pipeline.FuncStage("test", func(ctx context.Context) error {
		if err := a.buildTestPrograms(ctx); err != nil {
			return err
		}
		result := a.Runner.Run(ctx, a.Tools.Tester)
		if result.Error != nil {
			return result.Error
		}
		if !result.ExitCode.IsSuccess() {
			return &pipeline.ExternalToolError{Stage: "test", ExitCode: result.ExitCode}
		}
		return nil
	})
}

// buildTestPrograms compiles the declared test-program artifacts.
func (a *App) buildTestPrograms(ctx context.Context) error {
	builder := testprog.NewBuilder(a.Tools.Builder, a.Root, a.Pins, a.Runner, a.Logger)
	return builder.Build(ctx, a.Manifest.TestPrograms)
}

// asExitError converts a pipeline failure into the CLI's ExitError,
// preserving the failing tool's raw exit status when there is one.
func asExitError(err error) error {
	if err == nil {
		return nil
	}
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		return &ExitError{Code: stageErr.ExitCode(), Err: err}
	}
	var toolErr *pipeline.ExternalToolError
	if errors.As(err, &toolErr) {
		return &ExitError{Code: toolErr.ExitCode, Err: err}
	}
	return &ExitError{Code: 1, Err: err}
}
