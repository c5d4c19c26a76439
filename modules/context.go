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

	"golang.org/x/sync/errgroup"
)

// Context keys bound by BuildContext.
const (
	// InjectorKey binds the module's per-session injector in every composed context.
	InjectorKey = "injector"

	// SessionKey binds the session value in the context BuildContext returns.
	SessionKey = "session"
)

// ContextOption adjusts a single BuildContext call.
type ContextOption func(*contextConfig)

type contextConfig struct {
	excludeSession bool
	hook           string
}

// WithoutSession omits the "session" key from the returned context.
func WithoutSession() ContextOption {
	return func(cfg *contextConfig) {
		cfg.excludeSession = true
	}
}

// withHook selects the lifecycle hook dispatched after the context is stored. The default is
// OnRequest; the subscription transport path dispatches OnConnect instead.
func withHook(hook string) ContextOption {
	return func(cfg *contextConfig) {
		cfg.hook = hook
	}
}

// contextEntry is one (module, session) build. The builder stores the entry before composing so
// concurrent callers wait on done instead of building twice; context is assigned before lifecycle
// hooks run. Failed builds are memoized like successful ones until CloseSession.
type contextEntry struct {
	context Context
	err     error
	done    chan bool
}

// BuildContext returns the module's composed context for session, building it on first use: the
// imports' composed contexts merged in declared import order (later overriding earlier), the
// "injector" key bound to the module's per-session injector, the module's own context
// contribution merged last, and the module's OnRequest hooks dispatched once the composed map is
// stored. The result is memoized per (module, session) until CloseSession; repeated calls return
// a fresh shallow copy of the same composition with the "session" key attached unless
// WithoutSession is given.
//
// A ContextBuilder or lifecycle hook must not call BuildContext for the module it runs under:
// that call would wait on the build already in progress.
func (m *Module) BuildContext(ctx context.Context, session interface{}, opts ...ContextOption) (Context, error) {
	cfg := contextConfig{hook: inject.HookOnRequest}
	for _, opt := range opts {
		opt(&cfg)
	}
	session = unwrapSession(session)

	// prepare failures (a missing required configuration, an unresolvable import graph) are usage
	// errors, not context build failures; they keep their own classification.
	mm, canonical, err := m.prepare()
	if err != nil {
		return nil, err
	}

	composed, err := canonical.sessionContext(ctx, mm, session, cfg.hook)
	if err != nil {
		return nil, err
	}

	result := make(Context, len(composed)+1)
	for key, value := range composed {
		result[key] = value
	}
	if !cfg.excludeSession {
		result[SessionKey] = session
	}
	return result, nil
}

// sessionContext returns the stored composed context for session, composing it when this call is
// the first for the pair.
func (m *Module) sessionContext(ctx context.Context, mm *ModulesMap, session interface{}, hook string) (Context, error) {
	m.adoptMapIfUnset(mm)

	m.sessionsMu.Lock()
	if entry, ok := m.sessions[session]; ok {
		m.sessionsMu.Unlock()
		<-entry.done
		return entry.context, entry.err
	}
	entry := &contextEntry{done: make(chan bool)}
	m.sessions[session] = entry
	m.sessionsMu.Unlock()

	m.composeSessionContext(entry, ctx, mm, session, hook)
	close(entry.done)
	return entry.context, entry.err
}

// composeSessionContext fills entry for one (module, session) pair. Import contexts are built
// concurrently, merged in declared order. Every failure is recorded as a ContextBuilderError
// naming the module whose build actually failed; nested failures pass through unwrapped.
func (m *Module) composeSessionContext(entry *contextEntry, ctx context.Context, mm *ModulesMap, session interface{}, hook string) {
	imports, err := m.resolvedImports(mm)
	if err != nil {
		entry.err = NewContextBuilderError(m.name, err)
		return
	}

	results := make([]Context, len(imports))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, imported := range imports {
		i, imported := i, imported
		group.Go(func() error {
			composed, err := imported.sessionContext(groupCtx, mm, session, hook)
			if err != nil {
				return err
			}
			results[i] = composed
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		entry.err = NewContextBuilderError(m.name, err)
		return
	}

	composed := Context{}
	for _, imported := range results {
		composed = mergeContextInto(composed, imported)
	}

	injectorValue, _, err := m.computeSlot(mm, slotInjector, make(visitSet))
	if err != nil {
		entry.err = NewContextBuilderError(m.name, err)
		return
	}
	sessionInjector := injectorValue.(Injector).SessionInjector(session)
	composed[InjectorKey] = sessionInjector

	ownValue, _, err := m.computeSlot(mm, slotContextBuilder, make(visitSet))
	if err != nil {
		entry.err = NewContextBuilderError(m.name, err)
		return
	}
	info := &SessionInfo{
		Module:   m,
		Session:  session,
		Injector: sessionInjector,
		Cache:    m.cacheStore,
	}
	composed, err = ownValue.(ownContextFunc)(ctx, session, composed, info)
	if err != nil {
		entry.err = NewContextBuilderError(m.name, err)
		return
	}

	// The table must hold the context before hooks run: hooks observe a module whose context
	// already exists.
	entry.context = composed

	if err := sessionInjector.DispatchHook(ctx, hook); err != nil {
		entry.err = NewContextBuilderError(m.name, err)
	}
}

// ownContextFunc combines a module's own context contributions over the already-merged import
// contexts. It is the value stored in the context builder artifact slot.
type ownContextFunc func(ctx context.Context, session interface{}, current Context, info *SessionInfo) (Context, error)

func (m *Module) buildOwnContextFn() ownContextFunc {
	values := m.contextValues()
	return func(ctx context.Context, session interface{}, current Context, info *SessionInfo) (Context, error) {
		for _, value := range values {
			contribution, err := value.build(ctx, session, current, info)
			if err != nil {
				return nil, err
			}
			current = mergeContextInto(current, contribution)
		}
		return current, nil
	}
}

// build evaluates one context value for one session.
func (v ContextValue) build(ctx context.Context, session interface{}, current Context, info *SessionInfo) (Context, error) {
	if v.builder != nil {
		return v.builder(ctx, session, current, info)
	}
	return v.literal, nil
}
