// SPDX-License-Identifier: MPL-2.0

// Package features verifies that the workspace builds for every combination
// of its optional compile-time features. Features are often implemented
// independently but can silently depend on each other being enabled
// together; only exhaustive combination testing catches that class of bug.
package features

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"slipway-cli/internal/toolrun"
)

type (
	// CombinationError reports the first feature combination whose build
	// failed. The compiler's own diagnostic has already been streamed to
	// the operator; this error carries the combination identity and the
	// build tool's exit status.
	CombinationError struct {
		// Combination is the failing feature set (possibly empty).
		Combination []string
		// Index is the combination's position in the enumeration order.
		Index int
		// ExitCode is the build tool's completion status.
		ExitCode toolrun.ExitCode
	}

	// Checker enumerates and builds every feature combination.
	Checker struct {
		// Builder is the base build command; per-combination feature flags
		// are appended to a copy.
		Builder toolrun.Command

		runner toolrun.Runner
		logger *log.Logger
	}
)

func (e *CombinationError) Error() string {
	return fmt.Sprintf("feature combination %s failed to build (exit status %s)",
		FormatCombination(e.Combination), e.ExitCode)
}

// FormatCombination renders a feature set for reports; the empty
// combination renders as "(none)".
func FormatCombination(combo []string) string {
	if len(combo) == 0 {
		return "(none)"
	}
	return strings.Join(combo, ",")
}

// NewChecker creates a powerset Checker building with the given command.
func NewChecker(builder toolrun.Command, runner toolrun.Runner, logger *log.Logger) *Checker {
	return &Checker{Builder: builder, runner: runner, logger: logger}
}

// Combinations enumerates the powerset of the canonical feature list in a
// deterministic, stable order: combination i contains feature j iff bit j
// of i is set, for i in 0..2^k-1. The first combination is always empty and
// the last always the full set, so "first failing combination" is
// reproducible across runs.
//
// The input must already be canonical (sorted, deduplicated); callers pass
// workspace.Manifest.FeatureUniverse().
func Combinations(features []string) [][]string {
	count := 1 << len(features)
	combos := make([][]string, 0, count)
	for mask := 0; mask < count; mask++ {
		combo := make([]string, 0, len(features))
		for j, feature := range features {
			if mask&(1<<j) != 0 {
				combo = append(combo, feature)
			}
		}
		combos = append(combos, combo)
	}
	return combos
}

// Check builds the workspace once per feature combination, strictly
// sequentially, stopping at the first failure. All 2^k combinations are
// attempted when every build succeeds.
func (c *Checker) Check(ctx context.Context, features []string) error {
	combos := Combinations(features)
	c.logger.Info("checking feature powerset",
		"features", len(features), "combinations", len(combos))

	for i, combo := range combos {
		cmd := c.buildCommand(combo)
		c.logger.Info("building combination",
			"combination", FormatCombination(combo),
			"step", fmt.Sprintf("%d/%d", i+1, len(combos)))

		result := c.runner.Run(ctx, cmd)
		if result.Error != nil {
			return fmt.Errorf("feature combination %s: %w", FormatCombination(combo), result.Error)
		}
		if !result.ExitCode.IsSuccess() {
			return &CombinationError{Combination: combo, Index: i, ExitCode: result.ExitCode}
		}
	}

	c.logger.Info("feature powerset clean", "combinations", len(combos))
	return nil
}

// buildCommand derives the per-combination build invocation. Default
// features are always disabled so each combination is exactly the flag set
// under test.
func (c *Checker) buildCommand(combo []string) toolrun.Command {
	cmd := c.Builder.WithArgs("--no-default-features")
	if len(combo) > 0 {
		cmd = cmd.WithArgs("--features", strings.Join(combo, ","))
	}
	return cmd
}
