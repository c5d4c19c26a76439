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

package kv

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("InMemory expiry", func() {
	var (
		ctx   context.Context
		now   time.Time
		store *InMemory
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Unix(1500000000, 0)
		store = NewInMemory()
		// Drive the clock manually so expiry is deterministic.
		store.now = func() time.Time { return now }
	})

	It("keeps an entry until its TTL elapses", func() {
		Expect(store.Set(ctx, "ephemeral", []byte("value"), 10*time.Second)).Should(Succeed())

		_, ok, err := store.Get(ctx, "ephemeral")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ok).Should(BeTrue())

		now = now.Add(11 * time.Second)

		_, ok, err = store.Get(ctx, "ephemeral")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ok).Should(BeFalse())
	})

	It("never expires an entry stored without a TTL", func() {
		Expect(store.Set(ctx, "durable", []byte("value"), 0)).Should(Succeed())

		now = now.Add(1000 * time.Hour)

		_, ok, err := store.Get(ctx, "durable")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(ok).Should(BeTrue())
	})

	It("drops an expired entry on access instead of merely hiding it", func() {
		Expect(store.Set(ctx, "ephemeral", []byte("value"), 10*time.Second)).Should(Succeed())

		now = now.Add(11 * time.Second)

		_, ok, _ := store.Get(ctx, "ephemeral")
		Expect(ok).Should(BeFalse())

		_, loaded := store.m.Load("ephemeral")
		Expect(loaded).Should(BeFalse())
	})
})
