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
	"strings"
)

// mergedNameSeparator joins member names into a merged module name.
const mergedNameSeparator = "+"

// mergeModules collapses the members of one import cycle into a new merged module. members come
// in discovery order, which fixes the merged name. Member own fragments combine per shape:
// sequence fragments concatenate (boxed type definitions keep their identity), map fragments
// merge key-wise with later members overriding, middleware chains concatenate, context
// contributions compose in member order. Flags, logger and collaborators come from the first
// member's configuration. The combined import list drops every reference that resolves back into
// the merged module itself.
func mergeModules(members []*Module) (*Module, error) {
	names := make([]string, len(members))
	for i, member := range members {
		names[i] = member.name
	}
	name := strings.Join(names, mergedNameSeparator)

	own := &ownFragments{}
	var aliases []string
	var instances []*Module
	var imports []ModuleRef
	var contexts []ContextValue

	for i, member := range members {
		aliases = append(aliases, member.name)
		aliases = append(aliases, member.memberNames...)
		instances = append(instances, member)
		instances = append(instances, member.memberModules...)

		memberOwn, err := member.resolveOwn()
		if err != nil {
			return nil, err
		}

		own.typeDefs = append(own.typeDefs, memberOwn.typeDefs...)
		own.resolvers = mergeResolverMapInto(own.resolvers, memberOwn.resolvers)
		own.providers = append(own.providers, memberOwn.providers...)
		own.resolversComposition = mergeCompositionInto(own.resolversComposition, memberOwn.resolversComposition)
		own.schemaDirectives = mergeSchemaDirectivesInto(own.schemaDirectives, memberOwn.schemaDirectives)
		own.directiveResolvers = mergeDirectiveResolversInto(own.directiveResolvers, memberOwn.directiveResolvers)
		own.extraSchemas = append(own.extraSchemas, memberOwn.extraSchemas...)
		if i == 0 {
			own.validationOptions = memberOwn.validationOptions
		}

		refs, err := member.declaredImports()
		if err != nil {
			return nil, err
		}
		imports = append(imports, refs...)

		contexts = append(contexts, member.contextValues()...)
	}

	// Self-loop elimination: references resolving into the merged module contribute nothing.
	selfNames := make(map[string]bool, len(aliases)+1)
	for _, alias := range aliases {
		selfNames[alias] = true
	}
	selfNames[name] = true

	var outward []ModuleRef
	for _, ref := range imports {
		if selfNames[ref.refName()] {
			continue
		}
		outward = append(outward, ref)
	}

	merged := newModule(name, members[0].config)
	merged.suppliedConfig = members[0].suppliedConfig
	merged.hasSuppliedConfig = members[0].hasSuppliedConfig
	merged.memberNames = aliases
	merged.memberModules = instances
	merged.mergedOwn = own
	merged.mergedImports = outward
	merged.mergedContexts = contexts
	return merged, nil
}
