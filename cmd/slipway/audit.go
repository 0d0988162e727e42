// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"slipway-cli/internal/audit"
)

// auditCmd scans the dependency closure for security advisories and fails
// exactly when one is detected that the suppression allow-list does not name.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Scan dependencies for unsuppressed security advisories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		auditor := audit.NewAuditor(app.Tools.Auditor, app.Manifest.SuppressedAdvisories(), app.Runner, app.Logger)
		if err := auditor.Run(cmd.Context()); err != nil {
			var advErr *audit.UnsuppressedAdvisoryError
			if errors.As(err, &advErr) {
				fmt.Fprintln(cmd.ErrOrStderr(), renderAuditFailure(advErr.Advisories))
				return &ExitError{Code: 1, Err: err}
			}
			return asExitError(err)
		}
		return nil
	},
}

// renderAuditFailure renders the unsuppressed advisory list with guidance.
// Falls back to plain text when the terminal renderer cannot be built.
func renderAuditFailure(advisories []string) string {
	var md strings.Builder
	md.WriteString("# Unsuppressed advisories\n\n")
	md.WriteString("The advisory scan detected vulnerabilities that the suppression\n")
	md.WriteString("allow-list does not cover:\n\n")
	for _, id := range advisories {
		md.WriteString("- `" + id + "`\n")
	}
	md.WriteString("\nEither upgrade the affected dependency, or add a reviewed\n")
	md.WriteString("`[[audit.suppress]]` entry to slipway.toml with a written justification.\n")
	md.WriteString("Suppressions never expire; removal is a deliberate edit.\n")

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return md.String()
	}
	out, err := renderer.Render(md.String())
	if err != nil {
		return md.String()
	}
	return out
}
