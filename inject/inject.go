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

// Package inject implements a small hierarchical dependency injector. An injector owns a flat set
// of providers and may be linked to child injectors; token lookups fall through to the children in
// link order, so linked injectors share one instance per provider instead of re-instantiating it
// at every level. Sessions get their own view of an injector through SessionInjector, which scopes
// Session-lifetime providers and lifecycle hook dispatch to that session.
package inject

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Injector resolves provider tokens to instances.
type Injector interface {
	// Provide registers providers. Accepted shapes are ValueProvider and FactoryProvider (or
	// pointers to them); anything else panics. Re-providing a token replaces its definition for
	// future instantiations.
	Provide(providers ...interface{})

	// Link appends child injectors. Tokens not provided here are looked up in the children in
	// link order.
	Link(children ...Injector)

	// Get returns the instance registered for token, instantiating it on first use. The error
	// matches ErrUnknownToken when no provider in this injector or its children covers the token.
	Get(token interface{}) (interface{}, error)

	// SessionInjector returns the injector view for the given session, creating it on first use.
	// The view is memoized so every caller holding the same session value shares instances and
	// hook state. session must be a comparable value.
	SessionInjector(session interface{}) Injector

	// ScopeIDs enumerates the tokens visible through this injector, own providers first and then
	// children in link order, without duplicates.
	ScopeIDs() []interface{}

	// DispatchHook instantiates the providers registered directly on this injector and invokes
	// the named lifecycle hook on every instance implementing it, concurrently. Each (token,
	// hook) pair runs at most once per session view.
	DispatchHook(ctx context.Context, hook string) error

	// CloseSession drops the session view for the given session, here and in all children.
	CloseSession(session interface{})
}

// New returns an empty application-level injector.
func New() Injector {
	return &appInjector{
		byToken:  make(map[interface{}]*providerEntry),
		sessions: make(map[interface{}]*sessionInjector),
	}
}

// ErrUnknownToken is wrapped by errors returned from Get for unregistered tokens.
var ErrUnknownToken = errors.New("inject: no provider registered for token")

// errSessionScoped signals that a Session-scoped provider was resolved without a session view.
var errSessionScoped = errors.New("inject: session-scoped provider requires a session injector")

func unknownTokenError(token interface{}) error {
	return fmt.Errorf("%w %v", ErrUnknownToken, token)
}

//===----------------------------------------------------------------------------------------====//
// appInjector
//===----------------------------------------------------------------------------------------====//

type appInjector struct {
	// mu guards entries, byToken and children.
	mu       sync.Mutex
	entries  []*providerEntry
	byToken  map[interface{}]*providerEntry
	children []Injector

	// instances memoizes Application-scoped instantiation; it maps token to *instanceResult.
	instances sync.Map

	// ranHooks tracks (token, hook) pairs already dispatched at application level.
	ranHooks sync.Map

	// sessionsMu guards sessions which maps session values to their memoized views.
	sessionsMu sync.Mutex
	sessions   map[interface{}]*sessionInjector
}

var _ Injector = (*appInjector)(nil)

func (inj *appInjector) Provide(providers ...interface{}) {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	for _, provider := range providers {
		entry := newProviderEntry(provider)
		if existing, ok := inj.byToken[entry.token]; ok {
			*existing = *entry
			// Invalidate any instance built from the replaced definition.
			inj.instances.Delete(entry.token)
		} else {
			inj.byToken[entry.token] = entry
			inj.entries = append(inj.entries, entry)
		}
	}
}

func (inj *appInjector) Link(children ...Injector) {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	inj.children = append(inj.children, children...)
}

func (inj *appInjector) lookup(token interface{}) (*providerEntry, bool) {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	entry, ok := inj.byToken[token]
	return entry, ok
}

func (inj *appInjector) entriesSnapshot() []*providerEntry {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	entries := make([]*providerEntry, len(inj.entries))
	copy(entries, inj.entries)
	return entries
}

func (inj *appInjector) childrenSnapshot() []Injector {
	inj.mu.Lock()
	defer inj.mu.Unlock()
	children := make([]Injector, len(inj.children))
	copy(children, inj.children)
	return children
}

func (inj *appInjector) Get(token interface{}) (interface{}, error) {
	if entry, ok := inj.lookup(token); ok {
		return inj.resolveEntry(entry, nil)
	}
	for _, child := range inj.childrenSnapshot() {
		instance, err := child.Get(token)
		if err == nil {
			return instance, nil
		}
		if !errors.Is(err, ErrUnknownToken) {
			return nil, err
		}
	}
	return nil, unknownTokenError(token)
}

// resolveEntry produces the instance for entry. session carries the session view performing the
// resolution and is nil for application-level access.
func (inj *appInjector) resolveEntry(entry *providerEntry, session *sessionInjector) (interface{}, error) {
	if entry.hasValue {
		return entry.value, nil
	}

	switch entry.scope {
	case Application:
		// Application-scoped factories resolve their dependencies at application level even when
		// triggered from a session; a longer-lived instance must not capture session state.
		return resolveOnce(&inj.instances, entry, inj)

	case Session:
		if session == nil {
			return nil, errSessionScoped
		}
		return resolveOnce(&session.instances, entry, session)
	}

	return nil, fmt.Errorf("inject: provider for token %v has unknown scope %d", entry.token, entry.scope)
}

func (inj *appInjector) SessionInjector(session interface{}) Injector {
	inj.sessionsMu.Lock()
	defer inj.sessionsMu.Unlock()
	if s, ok := inj.sessions[session]; ok {
		return s
	}
	s := &sessionInjector{
		app:     inj,
		session: session,
	}
	inj.sessions[session] = s
	return s
}

func (inj *appInjector) ScopeIDs() []interface{} {
	seen := make(map[interface{}]bool)
	var tokens []interface{}
	for _, entry := range inj.entriesSnapshot() {
		if !seen[entry.token] {
			seen[entry.token] = true
			tokens = append(tokens, entry.token)
		}
	}
	for _, child := range inj.childrenSnapshot() {
		for _, token := range child.ScopeIDs() {
			if !seen[token] {
				seen[token] = true
				tokens = append(tokens, token)
			}
		}
	}
	return tokens
}

func (inj *appInjector) DispatchHook(ctx context.Context, hook string) error {
	return dispatchHook(ctx, hook, inj, nil)
}

func (inj *appInjector) CloseSession(session interface{}) {
	inj.sessionsMu.Lock()
	delete(inj.sessions, session)
	inj.sessionsMu.Unlock()

	for _, child := range inj.childrenSnapshot() {
		child.CloseSession(session)
	}
}

//===----------------------------------------------------------------------------------------====//
// sessionInjector
//===----------------------------------------------------------------------------------------====//

// sessionInjector is the per-session view of an appInjector. Session-scoped instances and hook
// bookkeeping live here; everything else delegates to the application injector.
type sessionInjector struct {
	app     *appInjector
	session interface{}

	// instances memoizes Session-scoped instantiation; it maps token to *instanceResult.
	instances sync.Map

	// ranHooks tracks (token, hook) pairs already dispatched for this session.
	ranHooks sync.Map
}

var _ Injector = (*sessionInjector)(nil)

func (s *sessionInjector) Provide(providers ...interface{}) {
	s.app.Provide(providers...)
}

func (s *sessionInjector) Link(children ...Injector) {
	s.app.Link(children...)
}

func (s *sessionInjector) Get(token interface{}) (interface{}, error) {
	if entry, ok := s.app.lookup(token); ok {
		return s.app.resolveEntry(entry, s)
	}
	for _, child := range s.app.childrenSnapshot() {
		instance, err := child.SessionInjector(s.session).Get(token)
		if err == nil {
			return instance, nil
		}
		if !errors.Is(err, ErrUnknownToken) {
			return nil, err
		}
	}
	return nil, unknownTokenError(token)
}

func (s *sessionInjector) SessionInjector(session interface{}) Injector {
	if session == s.session {
		return s
	}
	return s.app.SessionInjector(session)
}

func (s *sessionInjector) ScopeIDs() []interface{} {
	return s.app.ScopeIDs()
}

func (s *sessionInjector) DispatchHook(ctx context.Context, hook string) error {
	return dispatchHook(ctx, hook, s.app, s)
}

func (s *sessionInjector) CloseSession(session interface{}) {
	s.app.CloseSession(session)
}

//===----------------------------------------------------------------------------------------====//
// Shared resolution and dispatch machinery
//===----------------------------------------------------------------------------------------====//

// instanceResult holds the outcome of instantiating a provider. done is closed once value and err
// are settled; concurrent resolvers of the same token block on it instead of re-running the
// factory.
type instanceResult struct {
	value interface{}
	err   error
	done  chan bool
}

func (result *instanceResult) wait() (interface{}, error) {
	<-result.done
	return result.value, result.err
}

func resolveOnce(instances *sync.Map, entry *providerEntry, inj Injector) (interface{}, error) {
	if result, ok := instances.Load(entry.token); ok {
		return result.(*instanceResult).wait()
	}

	result := &instanceResult{
		done: make(chan bool),
	}
	if actual, loaded := instances.LoadOrStore(entry.token, result); loaded {
		return actual.(*instanceResult).wait()
	}

	result.value, result.err = entry.factory(inj)
	close(result.done)
	return result.value, result.err
}

// hookSeenKey identifies a dispatched (token, hook) pair.
type hookSeenKey struct {
	token interface{}
	hook  string
}

// dispatchHook runs the named hook over the providers registered directly on app. session selects
// the session view; it is nil for application-level dispatch, in which case Session-scoped
// providers are skipped.
func dispatchHook(ctx context.Context, hook string, app *appInjector, session *sessionInjector) error {
	invoke, ok := hookInvokers[hook]
	if !ok {
		return fmt.Errorf("inject: unknown lifecycle hook %q", hook)
	}

	ranHooks := &app.ranHooks
	var sessionValue interface{}
	if session != nil {
		ranHooks = &session.ranHooks
		sessionValue = session.session
	}

	var g errgroup.Group
	for _, entry := range app.entriesSnapshot() {
		entry := entry
		g.Go(func() error {
			instance, err := app.resolveEntry(entry, session)
			if err != nil {
				if session == nil && errors.Is(err, errSessionScoped) {
					return nil
				}
				return fmt.Errorf("inject: resolving token %v for %s hook: %w", entry.token, hook, err)
			}

			// Mark before invoking so a hook that fails is still not retried for this session.
			if _, ran := ranHooks.LoadOrStore(hookSeenKey{token: entry.token, hook: hook}, true); ran {
				return nil
			}

			_, err = invoke(instance, ctx, sessionValue)
			return err
		})
	}
	return g.Wait()
}
