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

// Value is a module option that is either a literal or derived from the module instance it ends
// up bound to. Derivation matters together with ForRoot: a derived option sees the instance
// carrying the supplied configuration. The zero Value resolves to the zero value of T.
type Value[T any] struct {
	literal T
	derive  func(*Module) T
}

// Literal makes a Value holding value itself.
func Literal[T any](value T) Value[T] {
	return Value[T]{literal: value}
}

// Derived makes a Value computed from the module instance at first use.
func Derived[T any](derive func(*Module) T) Value[T] {
	return Value[T]{derive: derive}
}

// resolve produces the option value for m. Callers memoize the result (own-fragment resolution
// runs once per module instance), so derive functions run at most once per instance.
func (v Value[T]) resolve(m *Module) T {
	if v.derive != nil {
		return v.derive(m)
	}
	return v.literal
}

// SessionInfo describes the (module, session) pair a context build is running for. It is handed
// to ContextBuilder functions.
type SessionInfo struct {
	// Module is the module whose context is being built. After a cycle merge this is the merged
	// module, not the member the builder was declared on.
	Module *Module

	// Session is the unwrapped session the build is scoped to.
	Session interface{}

	// Injector is the per-session view of the module's injector.
	Injector Injector

	// Cache is the module's key-value store.
	Cache Store
}

// ContextBuilder computes a module's own context contribution. current holds the already-merged
// import contexts (including the "injector" entry); the returned map is merged over it, later
// keys overriding earlier ones.
type ContextBuilder func(ctx context.Context, session interface{}, current Context, info *SessionInfo) (Context, error)

// ContextValue is the tagged form of the context option: either a literal Context or a
// ContextBuilder invoked per session.
type ContextValue struct {
	literal Context
	builder ContextBuilder
	set     bool
}

// ContextLiteral makes a ContextValue holding a fixed context map.
func ContextLiteral(value Context) ContextValue {
	return ContextValue{literal: value, set: true}
}

// ContextBuilt makes a ContextValue computed per session by builder.
func ContextBuilt(builder ContextBuilder) ContextValue {
	return ContextValue{builder: builder, set: true}
}

// ModuleRef references a module in an import list, either by value or by a name resolved against
// the modules map once the graph is built.
type ModuleRef struct {
	module *Module
	name   string
}

// Ref references module by value.
func Ref(module *Module) ModuleRef {
	return ModuleRef{module: module}
}

// RefByName references a module by name. The name binds late: it must be discoverable through
// some by-value reference in the same graph, otherwise graph construction reports a
// DependencyModuleNotFound error.
func RefByName(name string) ModuleRef {
	return ModuleRef{name: name}
}

// Refs is a convenience wrapper building by-value references for an import list.
func Refs(modules ...*Module) []ModuleRef {
	refs := make([]ModuleRef, len(modules))
	for i, module := range modules {
		refs[i] = Ref(module)
	}
	return refs
}

// byValue reports whether the reference carries a module value (even a nil one; nil is diagnosed
// at discovery).
func (ref ModuleRef) byValue() bool {
	return len(ref.name) == 0
}

// refName is the name the reference resolves under in a modules map.
func (ref ModuleRef) refName() string {
	if ref.module != nil {
		return ref.module.name
	}
	return ref.name
}
