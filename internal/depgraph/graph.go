// Copyright (c) The StackShard Authors
// SPDX-License-Identifier: MPL-2.0

// Package depgraph derives the directed dependency graph of a template's
// resources from the reference expressions in their property bags and from
// their explicit ordering lists.
//
// The graph is a pure derived view: it holds no resource data of its own,
// and if the template changes the caller rebuilds it. Edge and node ordering
// follows template order and walk order, so rebuilding the graph from the
// same template always yields the same result.
package depgraph

import (
	"github.com/stackshard/stackshard/internal/cfntpl"
)

// Graph is the dependency graph of one template.
//
// Nodes are the logical identifiers of every resource in the template. An
// edge A→B records that A depends on B, either because a reference
// expression in A's property bag targets B or because A's explicit ordering
// list names B. Both edge maps are insertion-ordered and deduplicated per
// (source, target) pair.
//
// Edges may point at identifiers that are not nodes: a reference to a
// nonexistent resource is a build error in the upstream compiler, so this
// package records it without comment rather than second-guessing its input.
type Graph struct {
	nodes []string

	outgoing map[string][]string
	incoming map[string][]string

	outgoingSet map[string]map[string]bool
}

// Build constructs the dependency graph for the given template.
func Build(t *cfntpl.Template) *Graph {
	g := &Graph{
		outgoing:    make(map[string][]string),
		incoming:    make(map[string][]string),
		outgoingSet: make(map[string]map[string]bool),
	}

	for _, id := range t.ResourceIDs() {
		g.nodes = append(g.nodes, id)
		r := t.Resource(id)
		for _, found := range cfntpl.References(r.Properties) {
			g.addEdge(id, found.Ref.Target())
		}
		for _, dep := range r.DependsOn {
			g.addEdge(id, dep)
		}
	}

	return g
}

func (g *Graph) addEdge(from, to string) {
	seen := g.outgoingSet[from]
	if seen == nil {
		seen = make(map[string]bool)
		g.outgoingSet[from] = seen
	}
	if seen[to] {
		return
	}
	seen[to] = true
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
}

// Nodes returns every logical identifier in the template, in template order.
func (g *Graph) Nodes() []string {
	ret := make([]string, len(g.nodes))
	copy(ret, g.nodes)
	return ret
}

// Dependencies returns the identifiers the given resource depends on, in
// first-recorded order. The result is nil for a resource with no outgoing
// edges.
func (g *Graph) Dependencies(id string) []string {
	return copySlice(g.outgoing[id])
}

// Dependents returns the identifiers that depend on the given resource, in
// first-recorded order.
func (g *Graph) Dependents(id string) []string {
	return copySlice(g.incoming[id])
}

// HasEdge returns true if the graph records a direct dependency of from
// on to.
func (g *Graph) HasEdge(from, to string) bool {
	return g.outgoingSet[from][to]
}

// TransitiveDependencies returns every identifier reachable from the given
// one by following outgoing edges, excluding the starting identifier itself,
// in breadth-first discovery order.
func (g *Graph) TransitiveDependencies(id string) []string {
	return g.closure(id, g.outgoing)
}

// TransitiveDependents is the inverse of TransitiveDependencies: every
// identifier from which the given one is reachable.
func (g *Graph) TransitiveDependents(id string) []string {
	return g.closure(id, g.incoming)
}

func (g *Graph) closure(start string, edges map[string][]string) []string {
	var ret []string
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range edges[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			ret = append(ret, next)
			queue = append(queue, next)
		}
	}
	return ret
}

func copySlice(s []string) []string {
	if s == nil {
		return nil
	}
	ret := make([]string, len(s))
	copy(ret, s)
	return ret
}
