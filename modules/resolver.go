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
	"context"
)

// Context is the composed per-session context map handed to resolvers and context builders.
type Context map[string]interface{}

// ResolveInfo carries the resolution metadata a transport supplies when invoking a resolver. The
// guard wrapped around every module-owned resolver reads Session (falling back to the "session"
// key of Context) and replaces Context with the module's composed session context before
// delegating.
type ResolveInfo struct {
	// Session is the opaque per-request identity, when the transport passes one explicitly.
	Session interface{}

	// Context is the context visible to the resolver. On invocation it holds whatever the
	// transport built; the guard substitutes the composed module context.
	Context Context
}

// ResolverFunc is the calling convention for field and subscription functions.
type ResolverFunc func(ctx context.Context, source interface{}, args map[string]interface{}, info *ResolveInfo) (interface{}, error)

// Resolver is a tagged resolver variant: FieldResolver, SubscriptionResolver or RawResolver.
type Resolver interface {
	isResolver()
}

// FieldResolver resolves a single field.
type FieldResolver ResolverFunc

// SubscriptionResolver resolves a subscription field. Subscribe establishes the event source;
// Resolve (optional) maps each event to the field value.
type SubscriptionResolver struct {
	Subscribe ResolverFunc
	Resolve   ResolverFunc
}

// RawResolver carries a non-function resolver value (an enum value map, a scalar configuration)
// that passes through aggregation untouched and unguarded.
type RawResolver struct {
	Value interface{}
}

func (FieldResolver) isResolver()        {}
func (SubscriptionResolver) isResolver() {}
func (RawResolver) isResolver()          {}

// ResolverMap maps type name to field name to resolver.
type ResolverMap map[string]map[string]Resolver

// ResolverMiddleware wraps a ResolverFunc with additional behavior.
type ResolverMiddleware func(next ResolverFunc) ResolverFunc

// ResolversComposition maps a "Type.field" path (the field part may be "*") to the middleware
// chain applied to matching resolvers. Chains are applied by the module's Composer; the first
// middleware in the chain is the outermost wrapper.
type ResolversComposition map[string][]ResolverMiddleware

// SchemaDirectives maps directive names to their handler implementations. Handlers are opaque to
// the engine; they are aggregated and forwarded to the schema compiler.
type SchemaDirectives map[string]interface{}

// DirectiveResolvers maps directive names to resolver functions.
type DirectiveResolvers map[string]ResolverFunc

// ResolverValidationOptions controls the resolver checks performed by the schema compiler.
type ResolverValidationOptions struct {
	// RequireResolversForAllFields fails compilation when a field of a declared object type has no
	// resolver entry.
	RequireResolversForAllFields bool

	// AllowResolversNotInSchema permits resolver entries for types the schema never declares.
	AllowResolversNotInSchema bool
}

// Schema is the opaque product of a SchemaCompiler. The built-in compiler produces a
// *CompositeSchema; a custom compiler may produce anything.
type Schema interface{}
