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

	"github.com/dsalazarm/graphql-modules/inject"
)

// WrappedSession is implemented by values that stand in for an underlying session (a websocket
// connection state wrapping the request that opened it). The engine keys its per-session tables
// by the innermost session, so a wrapper and its underlying session share contexts and scoped
// instances.
type WrappedSession interface {
	UnwrapSession() interface{}
}

// unwrapSession peels WrappedSession layers until a plain session value remains. A wrapper
// returning nil or itself stops the walk.
func unwrapSession(session interface{}) interface{} {
	for {
		wrapper, ok := session.(WrappedSession)
		if !ok {
			return session
		}
		inner := wrapper.UnwrapSession()
		if inner == nil || inner == session {
			return session
		}
		session = inner
	}
}

// CloseSession forgets everything memoized for session across the module's graph: composed
// contexts and session-scoped injector instances. The next BuildContext for the same session
// composes from scratch.
func (m *Module) CloseSession(session interface{}) {
	session = unwrapSession(session)

	for _, member := range graphModules(m.currentMapSnapshot(), m) {
		member.sessionsMu.Lock()
		delete(member.sessions, session)
		member.sessionsMu.Unlock()

		if value, ok := member.cache.load(slotInjector); ok {
			if injector, ok := value.(Injector); ok {
				injector.CloseSession(session)
			}
		}
	}
}

// graphModules lists the distinct modules a session-wide walk covers: the modules map contents
// when one exists, plus m itself when the map does not contain it.
func graphModules(mm *ModulesMap, m *Module) []*Module {
	if mm == nil {
		return []*Module{m}
	}
	members := mm.Modules()
	for _, member := range members {
		if member == m {
			return members
		}
	}
	return append(members, m)
}

// SubscriptionHooks are the handlers a subscription transport drives around a connection's
// lifetime. They are built once per module through the artifact cache.
type SubscriptionHooks struct {
	module *Module
}

// OnConnect builds the module's composed context for the connecting session. It differs from
// BuildContext only in the lifecycle hook dispatched once each module's context is stored:
// OnConnect instead of OnRequest.
func (h *SubscriptionHooks) OnConnect(ctx context.Context, session interface{}) (Context, error) {
	return h.module.BuildContext(ctx, session, withHook(inject.HookOnConnect))
}

// OnDisconnect dispatches the OnDisconnect lifecycle hooks of every module that built a context
// for session, then closes the session across the graph. Hook failures do not stop the walk; the
// first one is returned after everything is released.
func (h *SubscriptionHooks) OnDisconnect(ctx context.Context, session interface{}) error {
	session = unwrapSession(session)
	module := h.module

	var firstErr error
	for _, member := range graphModules(module.currentMapSnapshot(), module) {
		if !member.hasSessionEntry(session) {
			continue
		}
		value, ok := member.cache.load(slotInjector)
		if !ok {
			continue
		}
		injector, ok := value.(Injector)
		if !ok {
			continue
		}
		if err := injector.SessionInjector(session).DispatchHook(ctx, inject.HookOnDisconnect); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	module.CloseSession(session)
	return firstErr
}

func (m *Module) hasSessionEntry(session interface{}) bool {
	m.sessionsMu.Lock()
	_, ok := m.sessions[session]
	m.sessionsMu.Unlock()
	return ok
}
