// SPDX-License-Identifier: MPL-2.0

// Package testprog compiles the fixed set of auxiliary program artifacts
// the test suite consumes as fixtures. Each artifact targets a constrained
// execution environment distinct from the host, so the builds cross-compile
// against the pinned platform SDK.
package testprog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"slipway-cli/internal/config"
	"slipway-cli/internal/toolrun"
	"slipway-cli/internal/workspace"
)

// OutputDirName is the well-known location, relative to the workspace root,
// where built artifacts land. The test stage treats it as read-only input.
const OutputDirName = "target/test-programs"

type (
	// ArtifactError reports the first artifact whose build failed.
	// Remaining builds were not attempted.
	ArtifactError struct {
		// Artifact is the failing test program's name.
		Artifact string
		// Cause is the underlying failure.
		Cause error
	}

	// Builder compiles the workspace's test programs.
	Builder struct {
		// Builder is the base build command.
		Builder toolrun.Command
		// Root is the workspace root directory.
		Root string

		pins   config.Pins
		runner toolrun.Runner
		logger *log.Logger
	}
)

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("test program %q failed to build: %v", e.Artifact, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ArtifactError) Unwrap() error { return e.Cause }

// NewBuilder creates a test-program Builder.
func NewBuilder(builder toolrun.Command, root string, pins config.Pins, runner toolrun.Runner, logger *log.Logger) *Builder {
	return &Builder{Builder: builder, Root: root, pins: pins, runner: runner, logger: logger}
}

// OutputDir returns the artifact output directory for the workspace root.
func (b *Builder) OutputDir() string {
	return filepath.Join(b.Root, filepath.FromSlash(OutputDirName))
}

// Build compiles every declared test program. Builds run sequentially and
// always from scratch: pre-existing artifacts at the output location are
// never read or validated, only overwritten. The first failure aborts the
// remaining builds and is reported with the failing artifact's identity.
func (b *Builder) Build(ctx context.Context, programs []workspace.TestProgram) error {
	if len(programs) == 0 {
		b.logger.Info("no test programs declared")
		return nil
	}

	outDir := b.OutputDir()
	for i, prog := range programs {
		b.logger.Info("building test program",
			"program", prog.Name, "target", prog.Target,
			"step", fmt.Sprintf("%d/%d", i+1, len(programs)))

		cmd := b.command(prog, outDir)
		result := b.runner.Run(ctx, cmd)
		if result.Error != nil {
			return &ArtifactError{Artifact: prog.Name, Cause: result.Error}
		}
		if !result.ExitCode.IsSuccess() {
			return &ArtifactError{
				Artifact: prog.Name,
				Cause:    fmt.Errorf("build tool exited with status %s", result.ExitCode),
			}
		}
	}

	b.logger.Info("test programs built", "count", len(programs), "dir", outDir)
	return nil
}

// command derives the per-artifact build invocation: the base builder run
// inside the program directory, cross-compiled for its declared target,
// with artifacts directed at the shared output location and the platform
// pin exported to the build tool.
func (b *Builder) command(prog workspace.TestProgram, outDir string) toolrun.Command {
	cmd := b.Builder
	cmd.Dir = filepath.Join(b.Root, filepath.FromSlash(prog.Path))
	if prog.Target != "" {
		cmd = cmd.WithArgs("--target", prog.Target)
	}
	cmd = cmd.WithArgs("--target-dir", outDir)
	cmd = cmd.WithEnv("PLATFORM_SDK_VERSION", b.pins.PlatformVersion)
	return cmd
}
