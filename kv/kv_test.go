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

package kv_test

import (
	"context"

	"github.com/dsalazarm/graphql-modules/kv"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("InMemory", func() {
	var (
		ctx   context.Context
		store *kv.InMemory
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = kv.NewInMemory()
	})

	It("stores and retrieves values", func() {
		Expect(store.Set(ctx, "greeting", []byte("hello"), 0)).Should(Succeed())

		value, ok, err := store.Get(ctx, "greeting")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ok).Should(BeTrue())
		Expect(value).Should(Equal([]byte("hello")))
	})

	It("reports absent keys without error", func() {
		value, ok, err := store.Get(ctx, "missing")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ok).Should(BeFalse())
		Expect(value).Should(BeNil())
	})

	It("overwrites values for an existing key", func() {
		Expect(store.Set(ctx, "key", []byte("first"), 0)).Should(Succeed())
		Expect(store.Set(ctx, "key", []byte("second"), 0)).Should(Succeed())

		value, ok, _ := store.Get(ctx, "key")
		Expect(ok).Should(BeTrue())
		Expect(value).Should(Equal([]byte("second")))
	})

	It("deletes values", func() {
		Expect(store.Set(ctx, "key", []byte("value"), 0)).Should(Succeed())
		Expect(store.Delete(ctx, "key")).Should(Succeed())

		_, ok, err := store.Get(ctx, "key")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ok).Should(BeFalse())
	})

	It("deletes absent keys without error", func() {
		Expect(store.Delete(ctx, "missing")).Should(Succeed())
	})

	It("clears all entries", func() {
		Expect(store.Set(ctx, "a", []byte("1"), 0)).Should(Succeed())
		Expect(store.Set(ctx, "b", []byte("2"), 0)).Should(Succeed())
		store.Clear()

		_, ok, _ := store.Get(ctx, "a")
		Expect(ok).Should(BeFalse())
		_, ok, _ = store.Get(ctx, "b")
		Expect(ok).Should(BeFalse())
	})
})
