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

// ModulesMap is the name-to-module table produced by module discovery and rewritten by cycle
// resolution. It is not injective: after a cycle merge several names (the members' names, their
// prior merge aliases and the merged name itself) are bound to one merged module instance.
//
// A ModulesMap is never mutated once it is visible to artifact computation; cycle resolution
// produces a new instance per rewrite. That copy-on-rewrite discipline is what makes the
// per-slot map-identity staleness check in the artifact cache meaningful.
type ModulesMap struct {
	// names in first-discovery order.
	names   []string
	modules map[string]*Module
}

func newModulesMap() *ModulesMap {
	return &ModulesMap{
		modules: make(map[string]*Module),
	}
}

// add binds name to module, keeping the first-discovery position if name is already present.
func (mm *ModulesMap) add(name string, module *Module) {
	if _, ok := mm.modules[name]; !ok {
		mm.names = append(mm.names, name)
	}
	mm.modules[name] = module
}

// Get returns the module bound to name.
func (mm *ModulesMap) Get(name string) (*Module, bool) {
	module, ok := mm.modules[name]
	return module, ok
}

// Len returns the number of bound names (not distinct modules).
func (mm *ModulesMap) Len() int {
	return len(mm.names)
}

// Names returns the bound names in first-discovery order.
func (mm *ModulesMap) Names() []string {
	names := make([]string, len(mm.names))
	copy(names, mm.names)
	return names
}

// Modules returns the distinct module instances in first-discovery order.
func (mm *ModulesMap) Modules() []*Module {
	seen := make(map[*Module]bool, len(mm.names))
	var distinct []*Module
	for _, name := range mm.names {
		module := mm.modules[name]
		if !seen[module] {
			seen[module] = true
			distinct = append(distinct, module)
		}
	}
	return distinct
}

// indexOf returns the discovery position of name, or len(names) when absent.
func (mm *ModulesMap) indexOf(name string) int {
	for i, n := range mm.names {
		if n == name {
			return i
		}
	}
	return len(mm.names)
}

// rebind produces a new map in which every alias (and the merged module's own name) is bound to
// merged. All other bindings carry over unchanged.
func (mm *ModulesMap) rebind(aliases []string, merged *Module) *ModulesMap {
	next := newModulesMap()
	for _, name := range mm.names {
		next.add(name, mm.modules[name])
	}
	for _, alias := range aliases {
		next.add(alias, merged)
	}
	next.add(merged.name, merged)
	return next
}
