// SPDX-License-Identifier: MPL-2.0

// Package workspace models the multi-package source workspace: the static
// package set with declared dependencies and optional features, the curated
// publish order, the auxiliary test-program list, and the advisory
// suppression allow-list. All of it is defined by the workspace manifest
// (slipway.toml) and never mutated at runtime.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"slipway-cli/internal/issue"
)

// DefaultManifestName is the well-known manifest file name at the workspace root.
const DefaultManifestName = "slipway.toml"

var (
	// ErrInvalidManifest is the sentinel error wrapped by manifest
	// validation failures.
	ErrInvalidManifest = errors.New("invalid workspace manifest")
)

type (
	// Package is one publishable unit of the workspace.
	Package struct {
		// Name is the registry-facing package name. Unique per workspace.
		Name string `toml:"name"`
		// Version is the version that publish uploads.
		Version string `toml:"version"`
		// Path is the package directory relative to the workspace root.
		Path string `toml:"path"`
		// Dependencies names other workspace packages this one consumes.
		Dependencies []string `toml:"dependencies"`
		// DevDependencies names packages consumed only by tests/benches.
		// They do not constrain the publish order and are excluded from the
		// feature powerset.
		DevDependencies []string `toml:"dev-dependencies"`
		// Features lists the optional compile-time flags this package declares.
		Features []string `toml:"features"`
		// DevOnlyFeatures lists features that merely toggle dev-only
		// dependencies; the powerset checker skips them.
		DevOnlyFeatures []string `toml:"dev-only-features"`
		// SkipPublish excludes the package from the publish plan
		// (test-only members of the workspace).
		SkipPublish bool `toml:"skip-publish"`
	}

	// Suppression is a deliberate, reviewed allow-list entry for one
	// advisory. Entries never expire; removal is a manifest edit.
	Suppression struct {
		// ID is the advisory identifier (e.g. "RUSTSEC-2024-0001").
		ID string `toml:"id"`
		// Reason is the human-readable justification. Required.
		Reason string `toml:"reason"`
	}

	// TestProgram is one auxiliary artifact compiled before the test suite
	// runs, targeting a constrained execution environment distinct from
	// the host.
	TestProgram struct {
		Name string `toml:"name"`
		// Path is the program directory relative to the workspace root.
		Path string `toml:"path"`
		// Target is the cross-compilation target triple.
		Target string `toml:"target"`
	}

	// AuditSection holds the advisory suppression allow-list.
	AuditSection struct {
		Suppress []Suppression `toml:"suppress"`
	}

	// PublishSection holds the curated publish order. When empty, the
	// order is computed from the dependency graph instead.
	PublishSection struct {
		Order []string `toml:"order"`
	}

	// PinsSection carries manifest-level toolchain/platform pins.
	// Environment variables override these at load time.
	PinsSection struct {
		Toolchain string `toml:"toolchain"`
		Platform  string `toml:"platform"`
	}

	// ToolsSection overrides the external collaborator commands. Values
	// are shell-style command strings split into argv at load time.
	ToolsSection struct {
		Formatter     string `toml:"formatter"`
		Linter        string `toml:"linter"`
		Builder       string `toml:"builder"`
		Tester        string `toml:"tester"`
		Auditor       string `toml:"auditor"`
		Publisher     string `toml:"publisher"`
		Cleaner       string `toml:"cleaner"`
		RegistryProbe string `toml:"registry-probe"`
	}

	// Manifest is the decoded workspace manifest.
	Manifest struct {
		Name         string         `toml:"name"`
		Pins         PinsSection    `toml:"pins"`
		Packages     []Package      `toml:"package"`
		Publish      PublishSection `toml:"publish"`
		TestPrograms []TestProgram  `toml:"test-program"`
		Audit        AuditSection   `toml:"audit"`
		Tools        ToolsSection   `toml:"tools"`

		// FilePath is the manifest location the workspace was loaded from.
		FilePath string `toml:"-"`
	}
)

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load workspace manifest").
			WithResource(path).
			WithSuggestion("Run slipway from the workspace root").
			WithSuggestion("Use --manifest to point at a slipway.toml elsewhere").
			Wrap(err).
			BuildError()
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse workspace manifest").
			WithResource(path).
			WithSuggestion("Check the file contains valid TOML").
			Wrap(err).
			BuildError()
	}
	m.FilePath = path

	if err := m.Validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate workspace manifest").
			WithResource(path).
			Wrap(err).
			BuildError()
	}

	return &m, nil
}

// Validate checks the structural invariants of the manifest: unique package
// names, dependencies that refer to declared packages, a publish order (when
// present) covering every publishable package exactly once, and suppression
// entries carrying a written justification.
func (m *Manifest) Validate() error {
	if len(m.Packages) == 0 {
		return fmt.Errorf("%w: no packages declared", ErrInvalidManifest)
	}

	names := make(map[string]bool, len(m.Packages))
	for _, pkg := range m.Packages {
		if pkg.Name == "" {
			return fmt.Errorf("%w: package with empty name", ErrInvalidManifest)
		}
		if names[pkg.Name] {
			return fmt.Errorf("%w: duplicate package %q", ErrInvalidManifest, pkg.Name)
		}
		names[pkg.Name] = true
	}

	for _, pkg := range m.Packages {
		for _, dep := range append(append([]string(nil), pkg.Dependencies...), pkg.DevDependencies...) {
			if !names[dep] {
				return fmt.Errorf("%w: package %q depends on undeclared package %q", ErrInvalidManifest, pkg.Name, dep)
			}
			if dep == pkg.Name {
				return fmt.Errorf("%w: package %q depends on itself", ErrInvalidManifest, pkg.Name)
			}
		}
	}

	if len(m.Publish.Order) > 0 {
		seen := make(map[string]bool, len(m.Publish.Order))
		for _, name := range m.Publish.Order {
			if !names[name] {
				return fmt.Errorf("%w: publish order names unknown package %q", ErrInvalidManifest, name)
			}
			if seen[name] {
				return fmt.Errorf("%w: publish order lists package %q more than once", ErrInvalidManifest, name)
			}
			seen[name] = true
		}
		for _, pkg := range m.Packages {
			if !pkg.SkipPublish && !seen[pkg.Name] {
				return fmt.Errorf("%w: publish order is missing package %q", ErrInvalidManifest, pkg.Name)
			}
		}
	}

	for _, sup := range m.Audit.Suppress {
		if sup.ID == "" {
			return fmt.Errorf("%w: advisory suppression with empty id", ErrInvalidManifest)
		}
		if sup.Reason == "" {
			return fmt.Errorf("%w: suppression for %q has no written justification", ErrInvalidManifest, sup.ID)
		}
	}

	for _, prog := range m.TestPrograms {
		if prog.Name == "" || prog.Path == "" {
			return fmt.Errorf("%w: test-program entries need both name and path", ErrInvalidManifest)
		}
	}

	return nil
}

// PackageByName returns the named package, or nil.
func (m *Manifest) PackageByName(name string) *Package {
	for i := range m.Packages {
		if m.Packages[i].Name == name {
			return &m.Packages[i]
		}
	}
	return nil
}

// PublishablePackages returns the packages that participate in the publish
// plan, in declaration order.
func (m *Manifest) PublishablePackages() []Package {
	var out []Package
	for _, pkg := range m.Packages {
		if !pkg.SkipPublish {
			out = append(out, pkg)
		}
	}
	return out
}

// FeatureUniverse returns the canonical (sorted, deduplicated) list of
// optional features declared across all packages, excluding features that
// only toggle development-only dependencies. The canonical ordering is what
// makes powerset enumeration reproducible across runs.
func (m *Manifest) FeatureUniverse() []string {
	devOnly := make(map[string]bool)
	for _, pkg := range m.Packages {
		for _, f := range pkg.DevOnlyFeatures {
			devOnly[f] = true
		}
	}

	set := make(map[string]bool)
	for _, pkg := range m.Packages {
		for _, f := range pkg.Features {
			if !devOnly[f] {
				set[f] = true
			}
		}
	}

	features := make([]string, 0, len(set))
	for f := range set {
		features = append(features, f)
	}
	sort.Strings(features)
	return features
}

// SuppressedAdvisories returns the suppression IDs as a set.
func (m *Manifest) SuppressedAdvisories() map[string]bool {
	out := make(map[string]bool, len(m.Audit.Suppress))
	for _, sup := range m.Audit.Suppress {
		out[sup.ID] = true
	}
	return out
}
