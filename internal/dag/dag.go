// SPDX-License-Identifier: MPL-2.0

// Package dag records which module requires which and derives a load order
// from those edges. The resolver fills a Graph while it walks requires; the
// deps command renders it as a tree and as a topological order in which every
// module follows everything it depends on.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCycle is the sentinel error wrapped by CycleError.
var ErrCycle = errors.New("dependency cycle")

type (
	// CycleError indicates that modules require each other in a loop.
	CycleError struct {
		// Cycle lists the modules on the loop in require order. The last
		// entry is the identifier that re-entered the loop; it names the
		// same file as the first entry, spelled as it was required.
		Cycle []string
	}

	// Graph is a directed dependency graph keyed by module name.
	// An edge from A to B means "A depends on B".
	Graph struct {
		// deps maps each node to the nodes it depends on, in insertion order.
		deps map[string][]string
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []string
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// Unwrap returns ErrCycle.
func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		deps:    make(map[string][]string),
		nodeSet: make(map[string]bool),
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

// AddDependency records that node depends on dep. Both nodes are added if
// missing; repeating an edge is a no-op.
func (g *Graph) AddDependency(node, dep string) {
	g.AddNode(node)
	g.AddNode(dep)
	if slices.Contains(g.deps[node], dep) {
		return
	}
	g.deps[node] = append(g.deps[node], dep)
}

// Has reports whether name is a node of the graph.
func (g *Graph) Has(name string) bool {
	return g.nodeSet[name]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// Dependencies returns the direct dependencies of node in insertion order.
func (g *Graph) Dependencies(node string) []string {
	return slices.Clone(g.deps[node])
}

// LoadOrder returns the nodes ordered so that every node appears after all of
// its dependencies, using Kahn's algorithm. Returns CycleError if the graph
// contains a cycle. Nodes that become ready at the same time keep their
// insertion order.
func (g *Graph) LoadOrder() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	// pending counts unmet dependencies; dependents is the reverse adjacency.
	pending := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))
	for _, node := range g.nodes {
		pending[node] = len(g.deps[node])
		for _, dep := range g.deps[node] {
			dependents[dep] = append(dependents[dep], node)
		}
	}

	queue := make([]string, 0)
	for _, node := range g.nodes {
		if pending[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dependent := range dependents[node] {
			pending[dependent]--
			if pending[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(g.nodes) {
		// Remaining nodes with unmet dependencies sit on or behind a cycle.
		var cycleNodes []string
		for _, node := range g.nodes {
			if pending[node] > 0 {
				cycleNodes = append(cycleNodes, node)
			}
		}
		return nil, &CycleError{Cycle: cycleNodes}
	}

	return result, nil
}
