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
	"sync"
)

// slotIndex enumerates the derived artifacts memoized per module.
type slotIndex uint8

// Enumeration of slotIndex
const (
	slotTypeDefs slotIndex = iota
	slotResolvers
	slotSchema
	slotSchemaDirectives
	slotDirectiveResolvers
	slotExtraSchemas
	slotContextBuilder
	slotInjector
	slotSubscriptionHooks

	numSlots
)

// cacheSlot is one memoization slot: Unset (computed is false, regardless of value) or Computed.
// mapID records the identity of the ModulesMap the value was computed against; importers compare
// it against their current map to detect values computed before a cycle-merge rewrite.
type cacheSlot struct {
	computed bool
	value    interface{}
	mapID    *ModulesMap
}

// cacheRecord is a module's artifact cache. Slots fill lazily on first read and are invalidated
// one at a time, never wholesale.
type cacheRecord struct {
	mu    sync.Mutex
	slots [numSlots]cacheSlot
}

func newCacheRecord() *cacheRecord {
	return &cacheRecord{}
}

// load returns the computed value for index, if any. A computed nil is a present value (the
// "absent schema" case), distinct from an unset slot.
func (r *cacheRecord) load(index slotIndex) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := &r.slots[index]
	return slot.value, slot.computed
}

// storeIfAbsent publishes value for index unless a concurrent computation already did, in which
// case the earlier value wins so repeated reads stay reference-stable.
func (r *cacheRecord) storeIfAbsent(index slotIndex, value interface{}, mm *ModulesMap) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := &r.slots[index]
	if slot.computed {
		return slot.value
	}
	slot.computed = true
	slot.value = value
	slot.mapID = mm
	return value
}

// store overwrites index unconditionally. Only middleware overrides use this.
func (r *cacheRecord) store(index slotIndex, value interface{}, mm *ModulesMap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[index] = cacheSlot{
		computed: true,
		value:    value,
		mapID:    mm,
	}
}

// invalidateIfStale resets index to Unset when its value was computed against a map other than
// current, reporting whether it did. The reset is narrow: every other slot keeps its value.
func (r *cacheRecord) invalidateIfStale(index slotIndex, current *ModulesMap) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := &r.slots[index]
	if slot.computed && slot.mapID != current {
		r.slots[index] = cacheSlot{}
		return true
	}
	return false
}

// CacheView is the read-only view of a module's computed artifacts handed to Middleware after
// schema compilation.
type CacheView struct {
	TypeDefs           []*TypeDef
	Resolvers          ResolverMap
	Schema             Schema
	SchemaDirectives   SchemaDirectives
	DirectiveResolvers DirectiveResolvers
	ExtraSchemas       []Schema
}

// CacheOverrides carries the artifact replacements a Middleware wants applied. Nil fields leave
// the computed values in place.
type CacheOverrides struct {
	Schema    Schema
	Resolvers ResolverMap
}

// Middleware observes a module's computed artifacts and may override some of them. It runs as
// the last step of schema computation.
type Middleware func(view *CacheView) *CacheOverrides
