// SPDX-License-Identifier: MPL-2.0

// Package tools resolves the external collaborator commands the
// orchestration invokes: formatter, linter, builder, tester, auditor,
// publisher, cleaner, and the optional registry visibility probe.
//
// Defaults follow the workspace's pinned toolchain; every command can be
// overridden from the manifest's [tools] section with a shell-style command
// string. The tools themselves are opaque: slipway only observes their exit
// status and forwards their output.
package tools

import (
	"fmt"

	"slipway-cli/internal/config"
	"slipway-cli/internal/toolrun"
	"slipway-cli/internal/workspace"
)

type (
	// Set holds one resolved base Command per external collaborator.
	// Components append their own flags per invocation.
	Set struct {
		// Formatter rewrites source formatting; check mode appends --check.
		Formatter toolrun.Command
		// Linter runs static analysis with warnings promoted to errors.
		Linter toolrun.Command
		// Builder compiles the workspace (also used per feature combination).
		Builder toolrun.Command
		// Tester runs the full test suite.
		Tester toolrun.Command
		// Auditor scans the dependency closure for advisories (JSON output).
		Auditor toolrun.Command
		// Publisher uploads one package version to the registry.
		Publisher toolrun.Command
		// Cleaner removes prior build output.
		Cleaner toolrun.Command
		// RegistryProbe queries the registry for a published version's
		// visibility. Optional; when absent the publish orchestrator falls
		// back to a fixed propagation delay.
		RegistryProbe toolrun.Command
		// HasRegistryProbe reports whether RegistryProbe is configured.
		HasRegistryProbe bool
	}
)

// Resolve builds the tool set for a workspace under the given pins.
func Resolve(m *workspace.Manifest, pins config.Pins) (*Set, error) {
	toolchain := "+" + pins.ToolchainVersion

	set := &Set{
		Formatter: toolrun.Command{Tool: "cargo", Args: []string{toolchain, "fmt", "--all"}},
		Linter:    toolrun.Command{Tool: "cargo", Args: []string{toolchain, "clippy", "--all-targets", "--", "-D", "warnings"}},
		Builder:   toolrun.Command{Tool: "cargo", Args: []string{toolchain, "build"}},
		Tester:    toolrun.Command{Tool: "cargo", Args: []string{toolchain, "test", "--all"}},
		Auditor:   toolrun.Command{Tool: "cargo", Args: []string{"audit", "--json"}},
		Publisher: toolrun.Command{Tool: "cargo", Args: []string{"publish"}},
		Cleaner:   toolrun.Command{Tool: "cargo", Args: []string{"clean"}},
	}

	overrides := []struct {
		name  string
		value string
		dst   *toolrun.Command
	}{
		{"formatter", m.Tools.Formatter, &set.Formatter},
		{"linter", m.Tools.Linter, &set.Linter},
		{"builder", m.Tools.Builder, &set.Builder},
		{"tester", m.Tools.Tester, &set.Tester},
		{"auditor", m.Tools.Auditor, &set.Auditor},
		{"publisher", m.Tools.Publisher, &set.Publisher},
		{"cleaner", m.Tools.Cleaner, &set.Cleaner},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		cmd, err := toolrun.Split(o.value)
		if err != nil {
			return nil, fmt.Errorf("invalid [tools] %s override: %w", o.name, err)
		}
		*o.dst = cmd
	}

	if m.Tools.RegistryProbe != "" {
		cmd, err := toolrun.Split(m.Tools.RegistryProbe)
		if err != nil {
			return nil, fmt.Errorf("invalid [tools] registry-probe override: %w", err)
		}
		set.RegistryProbe = cmd
		set.HasRegistryProbe = true
	}

	return set, nil
}
