// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"slipway-cli/internal/features"
)

// checkFeaturesCmd runs the feature powerset checker: the workspace must
// build for every combination of its optional features.
var checkFeaturesCmd = &cobra.Command{
	Use:   "check-features",
	Short: "Build the workspace for every feature combination",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		checker := features.NewChecker(app.Tools.Builder, app.Runner, app.Logger)
		if err := checker.Check(cmd.Context(), app.Manifest.FeatureUniverse()); err != nil {
			var comboErr *features.CombinationError
			if errors.As(err, &comboErr) {
				fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("first failing combination: ")+
					features.FormatCombination(comboErr.Combination))
				return &ExitError{Code: comboErr.ExitCode, Err: err}
			}
			return asExitError(err)
		}
		return nil
	},
}
