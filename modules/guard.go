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

// guardResolvers returns a deep copy of resolvers with every function-valued entry wrapped by the
// resolver guard, binding it to the module that declared it. Raw entries pass through untouched.
func guardResolvers(m *Module, resolvers ResolverMap) ResolverMap {
	if len(resolvers) == 0 {
		return resolvers
	}

	guarded := make(ResolverMap, len(resolvers))
	for typeName, fields := range resolvers {
		target := make(map[string]Resolver, len(fields))
		for fieldName, resolver := range fields {
			path := typeName + "." + fieldName
			switch r := resolver.(type) {
			case FieldResolver:
				target[fieldName] = FieldResolver(guardFunc(m, path, ResolverFunc(r)))
			case SubscriptionResolver:
				if r.Subscribe != nil {
					r.Subscribe = guardFunc(m, path, r.Subscribe)
				}
				target[fieldName] = r
			default:
				target[fieldName] = resolver
			}
		}
		guarded[typeName] = target
	}
	return guarded
}

// guardFunc wraps fn so every invocation runs against the owning module's composed session
// context instead of whatever context the transport supplied. The session comes from
// info.Session, falling back to the "session" key of info.Context. When the owning module has
// been collapsed into a merged module, the merged module's context is built.
func guardFunc(m *Module, path string, fn ResolverFunc) ResolverFunc {
	return func(ctx context.Context, source interface{}, args map[string]interface{}, info *ResolveInfo) (interface{}, error) {
		if info == nil {
			return nil, NewIllegalResolverInvocationError(m.name, path, "resolve info is missing")
		}

		session := info.Session
		if session == nil && info.Context != nil {
			session = info.Context[SessionKey]
		}
		if session == nil {
			return nil, NewIllegalResolverInvocationError(m.name, path, "no session found in resolve info or context")
		}

		composed, err := m.BuildContext(ctx, session)
		if err != nil {
			return nil, err
		}

		guarded := *info
		guarded.Session = unwrapSession(session)
		guarded.Context = composed
		return fn(ctx, source, args, &guarded)
	}
}
