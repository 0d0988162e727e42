// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"slipway-cli/internal/config"
	"slipway-cli/internal/workspace"
)

// toolchainVersionCmd prints the pinned toolchain identifier.
var toolchainVersionCmd = &cobra.Command{
	Use:   "toolchain-version",
	Short: "Print the pinned toolchain version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pins, err := loadPins(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pins.ToolchainVersion)
		return nil
	},
}

// platformVersionCmd prints the pinned platform identifier.
var platformVersionCmd = &cobra.Command{
	Use:   "platform-version",
	Short: "Print the pinned platform version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pins, err := loadPins(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pins.PlatformVersion)
		return nil
	},
}

// loadPins resolves the version pins. The manifest contribution is optional
// here: the pin queries work outside a workspace (CI calls them before any
// checkout-dependent step), falling back to environment and defaults.
func loadPins(cmd *cobra.Command) (config.Pins, error) {
	opts := config.LoadOptions{}

	path := manifestPath
	if path == "" {
		path = workspace.DefaultManifestName
	}
	if manifest, err := workspace.Load(path); err == nil {
		opts.Manifest = manifest
	}

	return config.NewProvider().Load(cmd.Context(), opts)
}
