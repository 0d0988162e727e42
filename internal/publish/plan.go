// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"slipway-cli/internal/dag"
	"slipway-cli/internal/workspace"
)

type (
	// Plan is an ordered package sequence in which every dependency
	// precedes its dependents. Violating that order does not misbehave
	// silently: the registry rejects the dependent with an unresolvable
	// version requirement. BuildPlan therefore validates before returning.
	Plan struct {
		Packages []workspace.Package
	}
)

// BuildPlan derives the publish plan for a workspace. When the manifest
// carries a curated [publish] order, that order is validated against the
// packages' declared dependencies and rejected on any drift; otherwise the
// order is computed topologically from the dependency graph.
//
// Dev-dependencies do not constrain the order: they are not part of the
// published dependency closure.
func BuildPlan(m *workspace.Manifest) (*Plan, error) {
	publishable := m.PublishablePackages()

	graph := dag.New()
	for _, pkg := range publishable {
		graph.AddNode(pkg.Name)
	}
	skip := make(map[string]bool)
	for _, pkg := range m.Packages {
		if pkg.SkipPublish {
			skip[pkg.Name] = true
		}
	}
	for _, pkg := range publishable {
		for _, dep := range pkg.Dependencies {
			if !skip[dep] {
				graph.AddEdge(dep, pkg.Name)
			}
		}
	}

	var order []string
	if len(m.Publish.Order) > 0 {
		if err := graph.ValidateOrder(m.Publish.Order); err != nil {
			return nil, err
		}
		order = m.Publish.Order
	} else {
		sorted, err := graph.TopologicalSort()
		if err != nil {
			return nil, err
		}
		order = sorted
	}

	plan := &Plan{Packages: make([]workspace.Package, 0, len(order))}
	for _, name := range order {
		plan.Packages = append(plan.Packages, *m.PackageByName(name))
	}
	return plan, nil
}

// Names returns the plan's package names in order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Packages))
	for i, pkg := range p.Packages {
		names[i] = pkg.Name
	}
	return names
}
