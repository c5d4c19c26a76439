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

// Package kv provides the key-value cache capability carried by modules. A module exposes its
// Store to providers and context builders through the session info; the engine itself never
// interprets the stored values.
package kv

import (
	"context"
	"sync"
	"time"
)

// Store defines interfaces to a key-value cache. Values are opaque byte slices so that stores
// backed by external systems can hold them without knowing how they serialize. All methods must be
// safe for concurrent use by multiple goroutines.
type Store interface {
	// Get returns the value stored for a key. The second return value reports whether the key was
	// present; an absent key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value for a key. A non-zero ttl makes the entry expire after the given duration;
	// zero means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the value stored for a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

//===----------------------------------------------------------------------------------------====//
// InMemory
//===----------------------------------------------------------------------------------------====//

type inMemoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *inMemoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemory is the Store used when a module doesn't configure one. It keeps entries in a sync.Map
// and drops expired ones lazily on access.
type InMemory struct {
	m sync.Map

	// now is replaceable for tests.
	now func() time.Time
}

var _ Store = (*InMemory)(nil)

// NewInMemory initializes an empty in-process Store.
func NewInMemory() *InMemory {
	return &InMemory{now: time.Now}
}

// Get implements Store.
func (s *InMemory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := s.m.Load(key)
	if !ok {
		return nil, false, nil
	}
	entry := v.(*inMemoryEntry)
	if entry.expired(s.now()) {
		s.m.Delete(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set implements Store.
func (s *InMemory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := &inMemoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.m.Store(key, entry)
	return nil
}

// Delete implements Store.
func (s *InMemory) Delete(ctx context.Context, key string) error {
	s.m.Delete(key)
	return nil
}

// Clear resets the store.
func (s *InMemory) Clear() {
	m := &s.m
	m.Range(func(key, _ interface{}) bool {
		m.Delete(key)
		return true
	})
}
