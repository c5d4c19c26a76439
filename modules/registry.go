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

// discoverModules collects the transitive import closure of root into a ModulesMap, depth first
// and memoized by name so cyclic graphs terminate (cycles are legal here; they are rejected or
// merged by cycle resolution). A module that requires a configuration without one supplied is
// skipped together with the subtree only reachable through it. A nil by-value reference is fatal.
// By-name references contribute nothing to discovery; they bind when the graph is built.
func discoverModules(root *Module) (*ModulesMap, error) {
	mm := newModulesMap()

	var visit func(module *Module) error
	visit = func(module *Module) error {
		if module.configRequiredButMissing() {
			return nil
		}
		if _, ok := mm.Get(module.name); ok {
			return nil
		}
		mm.add(module.name, module)

		refs, err := module.declaredImports()
		if err != nil {
			return err
		}
		for _, ref := range refs {
			if !ref.byValue() {
				continue
			}
			if ref.module == nil {
				return NewDependencyModuleUndefinedError(module.name)
			}
			if err := visit(ref.module); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	return mm, nil
}
