// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"slipway-cli/internal/testprog"
)

// buildTestProgramsCmd compiles the auxiliary artifacts the test suite
// consumes as fixtures. Artifacts are always rebuilt from scratch.
var buildTestProgramsCmd = &cobra.Command{
	Use:   "build-test-programs",
	Short: "Build the auxiliary test-program artifacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		if err := app.buildTestPrograms(cmd.Context()); err != nil {
			var artErr *testprog.ArtifactError
			if errors.As(err, &artErr) {
				fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("failing artifact: ")+artErr.Artifact)
			}
			return asExitError(err)
		}
		return nil
	},
}
