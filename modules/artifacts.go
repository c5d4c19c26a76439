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
)

//===----------------------------------------------------------------------------------------====//
// Public artifact accessors
//===----------------------------------------------------------------------------------------====//

// TypeDefs returns the type definition documents visible to this module: every transitive
// import's documents in dependency-first order, its own last, deduplicated by identity.
func (m *Module) TypeDefs() ([]*TypeDef, error) {
	value, err := m.artifact(slotTypeDefs)
	if err != nil {
		return nil, err
	}
	return value.([]*TypeDef), nil
}

// Resolvers returns the resolver map visible to this module with its resolver composition
// applied. Field and subscription entries owned by modules are guarded: at invocation they
// substitute the transport context with the owning module's composed session context.
func (m *Module) Resolvers() (ResolverMap, error) {
	value, err := m.artifact(slotResolvers)
	if err != nil {
		return nil, err
	}
	return value.(ResolverMap), nil
}

// Schema returns the module's compiled schema, or nil without error when neither the module nor
// its imports declare any type definitions.
func (m *Module) Schema() (Schema, error) {
	value, err := m.artifact(slotSchema)
	if err != nil || value == nil {
		return nil, err
	}
	return value, nil
}

// SchemaDirectives returns the aggregated directive handlers visible to this module.
func (m *Module) SchemaDirectives() (SchemaDirectives, error) {
	value, err := m.artifact(slotSchemaDirectives)
	if err != nil {
		return nil, err
	}
	return value.(SchemaDirectives), nil
}

// DirectiveResolvers returns the aggregated directive resolvers visible to this module.
func (m *Module) DirectiveResolvers() (DirectiveResolvers, error) {
	value, err := m.artifact(slotDirectiveResolvers)
	if err != nil {
		return nil, err
	}
	return value.(DirectiveResolvers), nil
}

// ExtraSchemas returns the pre-built schemas visible to this module, deduplicated by identity
// where the values permit it.
func (m *Module) ExtraSchemas() ([]Schema, error) {
	value, err := m.artifact(slotExtraSchemas)
	if err != nil {
		return nil, err
	}
	return value.([]Schema), nil
}

// Injector returns the module's injector: its own providers backed by the imports' injectors
// through child delegation, so one provider token resolves to one instance across the graph.
func (m *Module) Injector() (Injector, error) {
	value, err := m.artifact(slotInjector)
	if err != nil {
		return nil, err
	}
	return value.(Injector), nil
}

// SubscriptionHooks returns the handlers a subscription transport drives on connect and
// disconnect.
func (m *Module) SubscriptionHooks() (*SubscriptionHooks, error) {
	value, err := m.artifact(slotSubscriptionHooks)
	if err != nil {
		return nil, err
	}
	return value.(*SubscriptionHooks), nil
}

//===----------------------------------------------------------------------------------------====//
// Aggregation machinery
//===----------------------------------------------------------------------------------------====//

// visitKey identifies one (module, slot) expansion within a single aggregation run.
type visitKey struct {
	module *Module
	slot   slotIndex
}

// visitSet tracks the expansions a single computation has started, making re-entrant pulls
// contribute nothing instead of recursing forever. Each computation starts a fresh set;
// visibility across computations comes from the cache, not from here.
type visitSet map[visitKey]bool

func (m *Module) artifact(index slotIndex) (interface{}, error) {
	mm, canonical, err := m.prepare()
	if err != nil {
		return nil, err
	}
	value, _, err := canonical.computeSlot(mm, index, make(visitSet))
	return value, err
}

// computeSlot returns the cached value for index, or computes and publishes it under mm. ok is
// false when this (module, slot) pair is already being expanded by the current computation, in
// which case the caller skips its contribution.
func (m *Module) computeSlot(mm *ModulesMap, index slotIndex, visited visitSet) (interface{}, bool, error) {
	if value, ok := m.cache.load(index); ok {
		return value, true, nil
	}

	key := visitKey{module: m, slot: index}
	if visited[key] {
		return nil, false, nil
	}
	visited[key] = true

	value, err := m.buildSlot(mm, index, visited)
	if err != nil {
		// A failed computation publishes nothing; the slot stays Unset.
		return nil, false, err
	}
	return m.cache.storeIfAbsent(index, value, mm), true, nil
}

// importedArtifact pulls index from an imported module on behalf of m. Before trusting a
// computed slot it compares the slot's recorded map identity with mm: a mismatch (possible mid
// cycle-resolution, since every fixpoint pass produces a new map) resets that one slot and makes
// the imported module adopt mm before recomputation.
func (m *Module) importedArtifact(imported *Module, mm *ModulesMap, index slotIndex, visited visitSet) (interface{}, bool, error) {
	if imported.cache.invalidateIfStale(index, mm) {
		imported.adoptMap(mm)
	} else {
		imported.adoptMapIfUnset(mm)
	}
	return imported.computeSlot(mm, index, visited)
}

func (m *Module) buildSlot(mm *ModulesMap, index slotIndex, visited visitSet) (interface{}, error) {
	switch index {
	case slotTypeDefs:
		return m.buildTypeDefs(mm, visited)
	case slotResolvers:
		return m.buildResolvers(mm, visited)
	case slotSchema:
		return m.buildSchema(mm, visited)
	case slotSchemaDirectives:
		return m.buildSchemaDirectives(mm, visited)
	case slotDirectiveResolvers:
		return m.buildDirectiveResolvers(mm, visited)
	case slotExtraSchemas:
		return m.buildExtraSchemas(mm, visited)
	case slotContextBuilder:
		return m.buildOwnContextFn(), nil
	case slotInjector:
		return m.buildInjector(mm, visited)
	case slotSubscriptionHooks:
		return &SubscriptionHooks{module: m}, nil
	}
	return nil, NewError(fmt.Sprintf("unknown artifact slot %d", index), ErrKindInternal)
}

func (m *Module) buildTypeDefs(mm *ModulesMap, visited visitSet) (interface{}, error) {
	var defs []*TypeDef
	seen := make(map[*TypeDef]bool)

	appendDefs := func(incoming []*TypeDef) {
		for _, def := range incoming {
			if !seen[def] {
				seen[def] = true
				defs = append(defs, def)
			}
		}
	}

	imports, err := m.resolvedImports(mm)
	if err != nil {
		return nil, err
	}
	for _, imported := range imports {
		value, ok, err := m.importedArtifact(imported, mm, slotTypeDefs, visited)
		if err != nil {
			return nil, err
		}
		if ok {
			appendDefs(value.([]*TypeDef))
		}
	}

	own, err := m.resolveOwn()
	if err != nil {
		return nil, err
	}
	appendDefs(own.typeDefs)
	return defs, nil
}

func (m *Module) buildResolvers(mm *ModulesMap, visited visitSet) (interface{}, error) {
	var merged ResolverMap

	imports, err := m.resolvedImports(mm)
	if err != nil {
		return nil, err
	}
	for _, imported := range imports {
		value, ok, err := m.importedArtifact(imported, mm, slotResolvers, visited)
		if err != nil {
			return nil, err
		}
		if ok {
			merged = mergeResolverMapInto(merged, value.(ResolverMap))
		}
	}

	own, err := m.resolveOwn()
	if err != nil {
		return nil, err
	}
	merged = mergeResolverMapInto(merged, own.resolvers)
	if merged == nil {
		merged = ResolverMap{}
	}

	// Composition applies once per module level, over everything visible here. Imported maps
	// arrive already composed at their own level.
	return m.composer().Compose(merged, own.resolversComposition), nil
}

func (m *Module) buildSchemaDirectives(mm *ModulesMap, visited visitSet) (interface{}, error) {
	var merged SchemaDirectives

	imports, err := m.resolvedImports(mm)
	if err != nil {
		return nil, err
	}
	for _, imported := range imports {
		value, ok, err := m.importedArtifact(imported, mm, slotSchemaDirectives, visited)
		if err != nil {
			return nil, err
		}
		if ok {
			merged = mergeSchemaDirectivesInto(merged, value.(SchemaDirectives))
		}
	}

	own, err := m.resolveOwn()
	if err != nil {
		return nil, err
	}
	return mergeSchemaDirectivesInto(merged, own.schemaDirectives), nil
}

func (m *Module) buildDirectiveResolvers(mm *ModulesMap, visited visitSet) (interface{}, error) {
	var merged DirectiveResolvers

	imports, err := m.resolvedImports(mm)
	if err != nil {
		return nil, err
	}
	for _, imported := range imports {
		value, ok, err := m.importedArtifact(imported, mm, slotDirectiveResolvers, visited)
		if err != nil {
			return nil, err
		}
		if ok {
			merged = mergeDirectiveResolversInto(merged, value.(DirectiveResolvers))
		}
	}

	own, err := m.resolveOwn()
	if err != nil {
		return nil, err
	}
	return mergeDirectiveResolversInto(merged, own.directiveResolvers), nil
}

func (m *Module) buildExtraSchemas(mm *ModulesMap, visited visitSet) (interface{}, error) {
	var schemas []Schema
	seen := make(map[interface{}]bool)

	appendSchemas := func(incoming []Schema) {
		for _, schema := range incoming {
			if key, ok := identityKey(schema); ok {
				if seen[key] {
					continue
				}
				seen[key] = true
			}
			schemas = append(schemas, schema)
		}
	}

	imports, err := m.resolvedImports(mm)
	if err != nil {
		return nil, err
	}
	for _, imported := range imports {
		value, ok, err := m.importedArtifact(imported, mm, slotExtraSchemas, visited)
		if err != nil {
			return nil, err
		}
		if ok {
			appendSchemas(value.([]Schema))
		}
	}

	own, err := m.resolveOwn()
	if err != nil {
		return nil, err
	}
	appendSchemas(own.extraSchemas)
	return schemas, nil
}

func (m *Module) buildInjector(mm *ModulesMap, visited visitSet) (interface{}, error) {
	own, err := m.resolveOwn()
	if err != nil {
		return nil, err
	}

	injector := m.injectorFactory()()
	if len(own.providers) > 0 {
		injector.Provide(own.providers...)
	}

	imports, err := m.resolvedImports(mm)
	if err != nil {
		return nil, err
	}
	for _, imported := range imports {
		value, ok, err := m.importedArtifact(imported, mm, slotInjector, visited)
		if err != nil {
			return nil, err
		}
		if ok {
			injector.Link(value.(Injector))
		}
	}
	return injector, nil
}

func (m *Module) buildSchema(mm *ModulesMap, visited visitSet) (interface{}, error) {
	typeDefsValue, _, err := m.computeSlot(mm, slotTypeDefs, visited)
	if err != nil {
		return nil, err
	}
	typeDefs, _ := typeDefsValue.([]*TypeDef)

	resolversValue, _, err := m.computeSlot(mm, slotResolvers, visited)
	if err != nil {
		return nil, err
	}
	resolvers, _ := resolversValue.(ResolverMap)

	directivesValue, _, err := m.computeSlot(mm, slotSchemaDirectives, visited)
	if err != nil {
		return nil, err
	}
	directives, _ := directivesValue.(SchemaDirectives)

	extrasValue, _, err := m.computeSlot(mm, slotExtraSchemas, visited)
	if err != nil {
		return nil, err
	}
	extras, _ := extrasValue.([]Schema)

	own, err := m.resolveOwn()
	if err != nil {
		return nil, err
	}

	// No type definitions anywhere yields an absent schema, intentionally without error.
	var schema Schema
	if len(typeDefs) > 0 {
		sources := make([]string, len(typeDefs))
		for i, def := range typeDefs {
			sources[i] = def.Source
		}

		compiled, err := m.schemaCompiler().Compile(sources, resolvers, directives, own.validationOptions)
		if err != nil {
			return nil, classifySchemaError(m.name, err)
		}
		schema = compiled

		if len(extras) > 0 {
			merged, err := m.schemaMerger().Merge(append([]Schema{schema}, extras...), resolvers)
			if err != nil {
				return nil, classifySchemaError(m.name, err)
			}
			schema = merged
		}
	}

	if middleware := m.config.Middleware; middleware != nil {
		directiveResolversValue, _, err := m.computeSlot(mm, slotDirectiveResolvers, visited)
		if err != nil {
			return nil, err
		}
		directiveResolvers, _ := directiveResolversValue.(DirectiveResolvers)

		view := &CacheView{
			TypeDefs:           typeDefs,
			Resolvers:          resolvers,
			Schema:             schema,
			SchemaDirectives:   directives,
			DirectiveResolvers: directiveResolvers,
			ExtraSchemas:       extras,
		}
		if overrides := middleware(view); overrides != nil {
			if overrides.Resolvers != nil {
				m.cache.store(slotResolvers, overrides.Resolvers, mm)
			}
			if overrides.Schema != nil {
				schema = overrides.Schema
			}
		}
	}

	return schema, nil
}
