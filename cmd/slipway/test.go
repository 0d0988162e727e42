// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// testCmd builds the test programs and then runs the full test suite.
// Both must succeed.
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Build test programs and run the full test suite",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		stage := app.testStage()
		if err := stage.Run(cmd.Context()); err != nil {
			return asExitError(err)
		}
		return nil
	},
}
