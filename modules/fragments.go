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
	"reflect"
)

// TypeDef is one schema definition document owned by a module. Documents are boxed once per
// module instance so aggregation can deduplicate by identity: two modules owning byte-identical
// text still contribute two entries, while one module reached through several import paths
// contributes its documents once.
type TypeDef struct {
	Source string
}

// ownFragments holds a module's resolved own fragments. It is computed at most once per module
// instance; for merged modules it is assembled from the members at merge time instead.
type ownFragments struct {
	typeDefs             []*TypeDef
	resolvers            ResolverMap
	providers            []Provider
	imports              []ModuleRef
	resolversComposition ResolversComposition
	schemaDirectives     SchemaDirectives
	directiveResolvers   DirectiveResolvers
	extraSchemas         []Schema
	validationOptions    ResolverValidationOptions
}

// resolveOwn resolves the module's option values, boxes the type definitions and wraps the
// function-valued resolvers with the resolver guard. The result is memoized per instance, so
// derived option functions run at most once per instance.
func (m *Module) resolveOwn() (*ownFragments, error) {
	if m.mergedOwn != nil {
		return m.mergedOwn, nil
	}

	m.ownMu.Lock()
	defer m.ownMu.Unlock()
	if m.own != nil {
		return m.own, nil
	}
	if m.ownErr != nil {
		return nil, m.ownErr
	}

	if err := m.ensureUsable(); err != nil {
		m.ownErr = err
		return nil, err
	}

	config := m.config
	own := &ownFragments{
		typeDefs:             boxTypeDefs(config.TypeDefs.resolve(m)),
		resolvers:            guardResolvers(m, config.Resolvers.resolve(m)),
		providers:            config.Providers.resolve(m),
		imports:              config.Imports.resolve(m),
		resolversComposition: config.ResolversComposition.resolve(m),
		schemaDirectives:     config.SchemaDirectives.resolve(m),
		directiveResolvers:   config.DirectiveResolvers.resolve(m),
		extraSchemas:         config.ExtraSchemas.resolve(m),
		validationOptions:    config.ResolverValidationOptions.resolve(m),
	}
	m.own = own
	return own, nil
}

// contextValues returns the module's own context contributions in application order.
func (m *Module) contextValues() []ContextValue {
	if m.memberNames != nil {
		return m.mergedContexts
	}
	if m.config.Context.set {
		return []ContextValue{m.config.Context}
	}
	return nil
}

func boxTypeDefs(sources []string) []*TypeDef {
	if len(sources) == 0 {
		return nil
	}
	defs := make([]*TypeDef, len(sources))
	for i, source := range sources {
		defs[i] = &TypeDef{Source: source}
	}
	return defs
}

//===----------------------------------------------------------------------------------------====//
// Fragment combination helpers
//===----------------------------------------------------------------------------------------====//

// mergeResolverMapInto merges src into dst key-wise, src winning on field collision. Inner maps
// of dst are always freshly allocated so cached maps owned by other modules are never written to.
func mergeResolverMapInto(dst ResolverMap, src ResolverMap) ResolverMap {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(ResolverMap, len(src))
	}
	for typeName, fields := range src {
		target := dst[typeName]
		if target == nil {
			target = make(map[string]Resolver, len(fields))
			dst[typeName] = target
		}
		for fieldName, resolver := range fields {
			target[fieldName] = resolver
		}
	}
	return dst
}

// mergeSchemaDirectivesInto merges src into dst, src winning on collision.
func mergeSchemaDirectivesInto(dst SchemaDirectives, src SchemaDirectives) SchemaDirectives {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(SchemaDirectives, len(src))
	}
	for name, handler := range src {
		dst[name] = handler
	}
	return dst
}

// mergeDirectiveResolversInto merges src into dst, src winning on collision.
func mergeDirectiveResolversInto(dst DirectiveResolvers, src DirectiveResolvers) DirectiveResolvers {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(DirectiveResolvers, len(src))
	}
	for name, resolver := range src {
		dst[name] = resolver
	}
	return dst
}

// mergeCompositionInto merges src into dst. Middleware chains are array-valued leaves, so
// colliding paths concatenate instead of overriding.
func mergeCompositionInto(dst ResolversComposition, src ResolversComposition) ResolversComposition {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(ResolversComposition, len(src))
	}
	for path, chain := range src {
		dst[path] = append(dst[path], chain...)
	}
	return dst
}

// mergeContextInto shallow-merges src into dst, src winning on collision.
func mergeContextInto(dst Context, src Context) Context {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(Context, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

// identityKey derives a map key identifying value by identity rather than structure. ok is false
// for values without a usable identity (plain structs, numbers), which aggregation keeps without
// deduplication.
func identityKey(value interface{}) (interface{}, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return rv.Pointer(), true
	}
	return nil, false
}
