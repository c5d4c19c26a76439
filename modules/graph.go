/**
 * Copyright (c) 2019, The GraphQL Modules Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package modules

import (
	"fmt"
	"strings"
)

// moduleGraph is the explicit directed import graph over the names of a ModulesMap. Edges point
// from an importer name to the canonical names of its resolved imports.
type moduleGraph struct {
	names []string
	edges map[string][]string
}

// buildModuleGraph walks the map a second time resolving every import reference. A by-name
// reference with no binding in the map is fatal here.
func buildModuleGraph(mm *ModulesMap) (*moduleGraph, error) {
	g := &moduleGraph{
		names: mm.Names(),
		edges: make(map[string][]string, mm.Len()),
	}
	for _, name := range g.names {
		module, _ := mm.Get(name)
		imports, err := module.resolvedImports(mm)
		if err != nil {
			return nil, err
		}
		targets := make([]string, len(imports))
		for i, imported := range imports {
			targets[i] = imported.name
		}
		g.edges[name] = targets
	}
	return g, nil
}

// topoSort attempts a topological ordering with Kahn's algorithm, seeded in discovery order for
// determinism. ok is false when a cycle prevents every node from being ordered.
func (g *moduleGraph) topoSort() (order []string, ok bool) {
	indegree := make(map[string]int, len(g.names))
	for _, name := range g.names {
		indegree[name] = 0
	}
	for _, targets := range g.edges {
		for _, target := range targets {
			indegree[target]++
		}
	}

	var queue []string
	for _, name := range g.names {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, target := range g.edges[name] {
			indegree[target]--
			if indegree[target] == 0 {
				queue = append(queue, target)
			}
		}
	}

	return order, len(order) == len(g.names)
}

// findCyclePath walks the graph depth first and returns the first back-edge walk as a path whose
// last name repeats an earlier one, or nil when the graph is acyclic.
func (g *moduleGraph) findCyclePath() []string {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.names))

	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = gray
		stack = append(stack, name)

		for _, target := range g.edges[name] {
			switch color[target] {
			case white:
				if visit(target) {
					return true
				}
			case gray:
				cycle = append(append([]string(nil), stack...), target)
				return true
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = black
		return false
	}

	for _, name := range g.names {
		if color[name] == white && visit(name) {
			return cycle
		}
	}
	return nil
}

// minimalCycleSegment reduces a repeating path to its minimal cycle: the slice between the two
// occurrences of the first name seen twice.
func minimalCycleSegment(path []string) []string {
	seen := make(map[string]int, len(path))
	for i, name := range path {
		if first, ok := seen[name]; ok {
			return path[first:i]
		}
		seen[name] = i
	}
	return path
}

// resolveCycles accepts a discovered map and iterates graph construction until a topological
// ordering succeeds. Every failed pass merges one cycle's members into a merged module and
// rebinds their names in a fresh map; the rebuild then starts from scratch, since merging one
// cycle can eliminate it and reveal another through the concatenated import list. The iteration
// terminates because every merge strictly reduces the number of distinct module identities.
func resolveCycles(mm *ModulesMap, root *Module) (*ModulesMap, error) {
	for {
		g, err := buildModuleGraph(mm)
		if err != nil {
			return nil, err
		}
		if _, ok := g.topoSort(); ok {
			return mm, nil
		}

		segment := minimalCycleSegment(g.findCyclePath())
		members := membersInDiscoveryOrder(mm, segment)

		names := make([]string, len(members))
		for i, member := range members {
			names[i] = member.name
		}
		cycleText := strings.Join(append(names, names[0]), " -> ")

		if root.config.DisableCircularImportsMerge {
			return nil, NewError(
				fmt.Sprintf("circular imports are not allowed: %s", cycleText),
				ErrKindSchemaNotValid, ModuleName(root.name))
		}
		if !root.config.DisableCircularImportsWarning {
			root.logger().Log(fmt.Sprintf("circular imports found (%s); merging them into a single module", cycleText))
		}

		merged, err := mergeModules(members)
		if err != nil {
			return nil, err
		}
		mm = mm.rebind(merged.memberNames, merged)
	}
}

// membersInDiscoveryOrder maps the cycle segment's names to their distinct module instances,
// ordered by first discovery. Membership is decided per instance, not per name: a merged module
// appears in the walk under its canonical name but takes the position of its earliest member.
func membersInDiscoveryOrder(mm *ModulesMap, segment []string) []*Module {
	inSegment := make(map[*Module]bool, len(segment))
	for _, name := range segment {
		if module, ok := mm.Get(name); ok {
			inSegment[module] = true
		}
	}

	seen := make(map[*Module]bool, len(segment))
	var members []*Module
	for _, name := range mm.names {
		module := mm.modules[name]
		if !inSegment[module] || seen[module] {
			continue
		}
		seen[module] = true
		members = append(members, module)
	}
	return members
}
