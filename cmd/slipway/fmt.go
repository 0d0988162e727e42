// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// fmtCheck switches the formatter to verification-only mode.
var fmtCheck bool

// fmtCmd invokes the external formatter: write mode by default, check-only
// with --check. The formatter's own diff/output goes straight to the
// operator; slipway only reports its exit status.
var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Run the workspace formatter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		tool := app.Tools.Formatter
		name := "format"
		if fmtCheck {
			tool = tool.WithArgs("--check")
			name = "format-check"
		}
		return app.runTool(cmd.Context(), name, tool)
	},
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "verify formatting without writing changes")
}
