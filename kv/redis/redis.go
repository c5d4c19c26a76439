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

// Package redis provides a kv.Store backed by a Redis server, for sharing module caches across
// processes.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/dsalazarm/graphql-modules/kv"

	goredis "github.com/redis/go-redis/v9"
)

// Store adapts a go-redis client to the kv.Store interface. Keys are namespaced with an optional
// prefix so several engines can share one server.
type Store struct {
	client goredis.UniversalClient
	prefix string
}

var _ kv.Store = (*Store)(nil)

// New wraps an existing client. The client remains owned by the caller and is not closed by the
// Store.
func New(client goredis.UniversalClient, opts ...Option) *Store {
	store := &Store{client: client}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix prepends the given prefix and a colon to every key.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

func (s *Store) key(key string) string {
	if len(s.prefix) == 0 {
		return key
	}
	return s.prefix + ":" + key
}

// Get implements kv.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, true, nil
}

// Set implements kv.Store.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(key), value, ttl).Err()
}

// Delete implements kv.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
