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

package inject

import (
	"fmt"
)

// Scope selects the lifetime of instances created by a FactoryProvider.
type Scope uint8

// Enumeration of Scope
const (
	// Application-scoped instances are created once per injector and shared by every session.
	Application Scope = iota

	// Session-scoped instances are created once per session injector and dropped when the session
	// closes.
	Session
)

func (s Scope) String() string {
	switch s {
	case Application:
		return "application"
	case Session:
		return "session"
	}
	return "unknown scope"
}

// ValueProvider registers an already-built value under a token.
type ValueProvider struct {
	Token interface{}
	Value interface{}
}

// FactoryProvider registers a factory that builds the instance for a token on first resolution.
// The factory receives the injector performing the resolution so it can look up its own
// dependencies in the matching scope.
type FactoryProvider struct {
	Token   interface{}
	Scope   Scope
	Factory func(Injector) (interface{}, error)
}

// providerEntry is the normalized form providers take inside an injector.
type providerEntry struct {
	token    interface{}
	value    interface{}
	hasValue bool
	scope    Scope
	factory  func(Injector) (interface{}, error)
}

func newProviderEntry(provider interface{}) *providerEntry {
	switch provider := provider.(type) {
	case ValueProvider:
		if provider.Token == nil {
			panic("inject: ValueProvider without a token")
		}
		return &providerEntry{
			token:    provider.Token,
			value:    provider.Value,
			hasValue: true,
		}

	case *ValueProvider:
		return newProviderEntry(*provider)

	case FactoryProvider:
		if provider.Token == nil {
			panic("inject: FactoryProvider without a token")
		}
		if provider.Factory == nil {
			panic(fmt.Sprintf("inject: FactoryProvider for token %v without a factory", provider.Token))
		}
		return &providerEntry{
			token:   provider.Token,
			scope:   provider.Scope,
			factory: provider.Factory,
		}

	case *FactoryProvider:
		return newProviderEntry(*provider)
	}

	panic(fmt.Sprintf("inject: unknown provider type %T", provider))
}
