// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"slipway-cli/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output.
	verbose bool
	// manifestPath allows specifying a custom workspace manifest.
	manifestPath string

	// rootCmd represents the base command when called without any subcommands.
	rootCmd = &cobra.Command{
		Use:   "slipway",
		Short: "Build, check, and publish a multi-package workspace",
		Long: TitleStyle.Render("slipway") + SubtitleStyle.Render(" - workspace build-test-publish orchestration") + `

slipway coordinates the verification and release of a workspace of
interdependent packages: formatting and lint checks, an exhaustive
feature-combination build, auxiliary test-program compilation, a
security-advisory audit against a curated suppression list, and an
ordered publish sequence that respects the dependency graph.

The external tools it drives (formatter, linter, compiler, auditor,
registry client) are opaque collaborators configured in slipway.toml.

` + SubtitleStyle.Render("Examples:") + `
  slipway all-checks        Run format-check, lint, feature check, and tests
  slipway audit             Scan dependencies for unsuppressed advisories
  slipway prepublish        Clean rebuild followed by all checks
  slipway publish --token T Publish every package in dependency order`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "workspace manifest (default ./slipway.toml)")

	rootCmd.AddCommand(toolchainVersionCmd)
	rootCmd.AddCommand(platformVersionCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(checkFeaturesCmd)
	rootCmd.AddCommand(buildTestProgramsCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(allChecksCmd)
	rootCmd.AddCommand(prepublishCmd)
	rootCmd.AddCommand(publishCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var ae *issue.ActionableError
		if errors.As(err, &ae) && len(ae.Suggestions) > 0 {
			// fang already printed the message; add the actionable part.
			fmt.Fprintln(os.Stderr, formatErrorForDisplay(err, verbose))
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
