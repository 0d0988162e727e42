// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed acyclic graph operations for the publish
// plan: topological sorting, cycle detection, and validation of a manually
// curated publish order against the packages' declared dependencies.
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing
	// topological ordering.
	CycleError struct {
		// Cycle contains the nodes that form the cycle (not necessarily all
		// of them, but enough to identify the problem).
		Cycle []string
	}

	// OrderDriftError indicates that a manually curated order contradicts
	// the declared dependency graph: Package appears before its dependency
	// Dependency. Publishing in such an order fails downstream at the
	// registry with an unresolvable version requirement, so the order is
	// rejected up front instead.
	OrderDriftError struct {
		Package    string
		Dependency string
	}

	// UnknownNodeError indicates that an order names a node the graph does
	// not contain, or omits one it does.
	UnknownNodeError struct {
		Node    string
		Missing bool
	}

	// Graph is a directed graph over package names. An edge from A to B
	// means A must be published before B (B depends on A).
	Graph struct {
		// adjacency maps each node to its outgoing neighbors (dependents).
		adjacency map[string][]string
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []string
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

func (e *OrderDriftError) Error() string {
	return fmt.Sprintf("publish order drift: %q is ordered before its dependency %q", e.Package, e.Dependency)
}

func (e *UnknownNodeError) Error() string {
	if e.Missing {
		return fmt.Sprintf("publish order is missing package %q", e.Node)
	}
	return fmt.Sprintf("publish order names unknown package %q", e.Node)
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to, meaning "from" must be published
// before "to". Both nodes are implicitly added if they don't exist.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// TopologicalSort returns a valid publish order using Kahn's algorithm.
// Returns CycleError if the graph contains a cycle.
// The returned order is deterministic: nodes at the same topological level
// appear in the order they were first added to the graph.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	queue := make([]string, 0)
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		// Remaining nodes with non-zero in-degree form the cycle.
		var cycleNodes []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycleNodes = append(cycleNodes, node)
			}
		}
		return nil, &CycleError{Cycle: cycleNodes}
	}

	return result, nil
}

// ValidateOrder checks a manually curated order against the graph. The order
// must contain every node exactly once, and no node may appear before one of
// its dependencies. Returns OrderDriftError on the first violation found,
// UnknownNodeError on membership mismatches, nil otherwise.
//
// Transitive violations need no special handling: if C depends on B which
// depends on A and C is ordered before A, then either C is before B (direct
// drift on the C/B edge) or B is before A (direct drift on the B/A edge),
// so checking direct edges suffices.
func (g *Graph) ValidateOrder(order []string) error {
	position := make(map[string]int, len(order))
	for i, node := range order {
		if !g.nodeSet[node] {
			return &UnknownNodeError{Node: node}
		}
		if _, dup := position[node]; dup {
			return fmt.Errorf("publish order lists package %q more than once", node)
		}
		position[node] = i
	}
	for _, node := range g.nodes {
		if _, ok := position[node]; !ok {
			return &UnknownNodeError{Node: node, Missing: true}
		}
	}

	for _, from := range g.nodes {
		for _, to := range g.adjacency[from] {
			if position[to] < position[from] {
				return &OrderDriftError{Package: to, Dependency: from}
			}
		}
	}

	return nil
}
