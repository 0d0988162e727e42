// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"slipway-cli/internal/publish"
)

// EnvPublishToken supplies the registry credential when --token is not given.
const EnvPublishToken = "SLIPWAY_PUBLISH_TOKEN"

var (
	publishToken  string
	publishDryRun bool
)

// publishCmd publishes every package to the registry in dependency order,
// one at a time. Publishing is irreversible: on the first failure the
// remaining packages are left untouched and the already-published ones stay
// published; reconciliation is a manual operator action. Arguments after
// "--" are passed through to the publish tool.
var publishCmd = &cobra.Command{
	Use:   "publish [-- extra publish args]",
	Short: "Publish all packages to the registry in dependency order",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		plan, err := publish.BuildPlan(app.Manifest)
		if err != nil {
			return asExitError(err)
		}
		app.Logger.Info("publish plan validated", "order", plan.Names())

		token := publishToken
		if token == "" {
			token = os.Getenv(EnvPublishToken)
		}

		orch := publish.NewOrchestrator(
			app.Tools.Publisher,
			app.Tools.RegistryProbe, app.Tools.HasRegistryProbe,
			app.Runner, app.Logger,
		)
		report, runErr := orch.Run(cmd.Context(), plan, publish.Options{
			Credential: token,
			ExtraArgs:  args,
			DryRun:     publishDryRun,
		})
		if errors.Is(runErr, publish.ErrMissingCredential) {
			return &ExitError{Code: 1, Err: runErr}
		}

		if report != nil {
			printPublishReport(cmd, plan, report)
		}
		if runErr != nil {
			return &ExitError{Code: 1, Err: runErr}
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishToken, "token", "", "registry authentication token (or "+EnvPublishToken+")")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "run the publish tool in dry-run mode; nothing reaches the registry")
}

// printPublishReport prints the per-package end state in plan order.
func printPublishReport(cmd *cobra.Command, plan *publish.Plan, report *publish.Report) {
	out := cmd.OutOrStdout()
	for i, pkg := range plan.Packages {
		var line string
		switch report.StatusOf(i) {
		case publish.StatusPublished:
			line = SuccessStyle.Render("published") + "  " + pkg.Name
		case publish.StatusFailed:
			line = ErrorStyle.Render("failed   ") + "  " + pkg.Name
		default:
			line = SubtitleStyle.Render("pending  ") + "  " + pkg.Name
		}
		fmt.Fprintln(out, line)
	}
}
