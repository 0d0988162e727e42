// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"slipway-cli/internal/pipeline"
)

// allChecksCmd runs the full verification pipeline:
// format-check → lint → check-features → test, stopping at the first failure.
var allChecksCmd = &cobra.Command{
	Use:   "all-checks",
	Short: "Run format-check, lint, check-features, and test in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		pr := app.pipelineRunner()
		if err := pr.Run(cmd.Context(), app.checkStages(pr)); err != nil {
			return asExitError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("all checks passed"))
		return nil
	},
}

// prepublishCmd clears prior build output, rebuilds from scratch, and then
// runs the all-checks pipeline. This is the gate before publish.
var prepublishCmd = &cobra.Command{
	Use:   "prepublish",
	Short: "Clean rebuild followed by the full check pipeline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		pr := app.pipelineRunner()
		stages := append([]pipeline.Stage{
			pr.CommandStage("clean", app.Tools.Cleaner),
			pr.CommandStage("build", app.Tools.Builder),
		}, app.checkStages(pr)...)

		if err := pr.Run(cmd.Context(), stages); err != nil {
			return asExitError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("workspace is ready to publish"))
		return nil
	},
}
