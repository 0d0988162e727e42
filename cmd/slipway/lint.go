// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// lintCmd invokes the external linter with warnings treated as errors.
var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Run the workspace linter (warnings are errors)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		return app.runTool(cmd.Context(), "lint", app.Tools.Linter)
	},
}
