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

package modules_test

import (
	"errors"
	"sync/atomic"

	"github.com/dsalazarm/graphql-modules/internal/testutil"
	"github.com/dsalazarm/graphql-modules/modules"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// countingCompiler counts Compile invocations and otherwise behaves like the built-in compiler's
// happy path.
type countingCompiler struct {
	compiles *int32
}

func (c countingCompiler) Compile(
	typeDefs []string,
	resolvers modules.ResolverMap,
	directives modules.SchemaDirectives,
	opts modules.ResolverValidationOptions,
) (modules.Schema, error) {
	atomic.AddInt32(c.compiles, 1)
	return &modules.CompositeSchema{TypeDefs: typeDefs, Resolvers: resolvers, Directives: directives}, nil
}

// flakyCompiler fails its first invocation and succeeds afterwards.
type flakyCompiler struct {
	compiles *int32
}

func (c flakyCompiler) Compile(
	typeDefs []string,
	resolvers modules.ResolverMap,
	directives modules.SchemaDirectives,
	opts modules.ResolverValidationOptions,
) (modules.Schema, error) {
	if atomic.AddInt32(c.compiles, 1) == 1 {
		return nil, errors.New("transient failure")
	}
	return &modules.CompositeSchema{TypeDefs: typeDefs}, nil
}

var _ = Describe("Artifact cache", func() {
	It("compiles the schema once and returns the same instance afterwards", func() {
		var compiles int32
		module := modules.MustNewModule(&modules.ModuleConfig{
			Name:           "app",
			TypeDefs:       modules.Literal([]string{"type Query { ok: Boolean }"}),
			SchemaCompiler: countingCompiler{compiles: &compiles},
		})

		first, err := module.Schema()
		Expect(err).ShouldNot(HaveOccurred())
		second, err := module.Schema()
		Expect(err).ShouldNot(HaveOccurred())

		Expect(first).Should(BeIdenticalTo(second))
		Expect(atomic.LoadInt32(&compiles)).Should(Equal(int32(1)))
	})

	It("returns an absent schema without error when no documents exist", func() {
		module := modules.MustNewModule(&modules.ModuleConfig{Name: "empty"})

		schema, err := module.Schema()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(schema).Should(BeNil())
	})

	It("does not store failed computations", func() {
		var compiles int32
		module := modules.MustNewModule(&modules.ModuleConfig{
			Name:           "app",
			TypeDefs:       modules.Literal([]string{"type Query { ok: Boolean }"}),
			SchemaCompiler: flakyCompiler{compiles: &compiles},
		})

		_, err := module.Schema()
		Expect(err).Should(testutil.MatchModuleError(
			testutil.KindIs(modules.ErrKindSchemaNotValid),
			testutil.ModuleIs("app"),
		))

		schema, err := module.Schema()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(schema).ShouldNot(BeNil())
		Expect(atomic.LoadInt32(&compiles)).Should(Equal(int32(2)))
	})

	It("keeps document identity when a second root invalidates the slot", func() {
		shared := modules.MustNewModule(&modules.ModuleConfig{
			Name:     "shared",
			TypeDefs: modules.Literal([]string{"type Shared { id: ID }"}),
		})
		first := modules.MustNewModule(&modules.ModuleConfig{
			Name:     "first",
			TypeDefs: modules.Literal([]string{"type First { id: ID }"}),
			Imports:  modules.Literal(modules.Refs(shared)),
		})
		second := modules.MustNewModule(&modules.ModuleConfig{
			Name:     "second",
			TypeDefs: modules.Literal([]string{"type Second { id: ID }"}),
			Imports:  modules.Literal(modules.Refs(shared)),
		})

		firstDefs, err := first.TypeDefs()
		Expect(err).ShouldNot(HaveOccurred())
		secondDefs, err := second.TypeDefs()
		Expect(err).ShouldNot(HaveOccurred())

		// The shared module recomputed its documents under the second root's map, but the boxed
		// documents themselves are stable per module instance.
		Expect(firstDefs[0].Source).Should(ContainSubstring("type Shared"))
		Expect(secondDefs[0]).Should(BeIdenticalTo(firstDefs[0]))
	})

	It("keeps unrelated slots when a new importer invalidates one", func() {
		var compiles int32
		shared := modules.MustNewModule(&modules.ModuleConfig{
			Name:           "shared",
			TypeDefs:       modules.Literal([]string{"type Shared { id: ID }"}),
			SchemaCompiler: countingCompiler{compiles: &compiles},
		})
		first := modules.MustNewModule(&modules.ModuleConfig{
			Name:    "first",
			Imports: modules.Literal(modules.Refs(shared)),
		})
		second := modules.MustNewModule(&modules.ModuleConfig{
			Name:    "second",
			Imports: modules.Literal(modules.Refs(shared)),
		})

		_, err := first.TypeDefs()
		Expect(err).ShouldNot(HaveOccurred())
		schema, err := shared.Schema()
		Expect(err).ShouldNot(HaveOccurred())

		// Importing from a new root resets the shared module's document slot only.
		_, err = second.TypeDefs()
		Expect(err).ShouldNot(HaveOccurred())

		again, err := shared.Schema()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(again).Should(BeIdenticalTo(schema))
		Expect(atomic.LoadInt32(&compiles)).Should(Equal(int32(1)))
	})

	Describe("middleware", func() {
		It("observes the computed artifacts", func() {
			var observed *modules.CacheView
			module := modules.MustNewModule(&modules.ModuleConfig{
				Name:     "app",
				TypeDefs: modules.Literal([]string{"type Query { ok: Boolean }"}),
				Middleware: func(view *modules.CacheView) *modules.CacheOverrides {
					observed = view
					return nil
				},
			})

			_, err := module.Schema()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(observed).ShouldNot(BeNil())
			Expect(observed.TypeDefs).Should(HaveLen(1))
			Expect(observed.Schema).ShouldNot(BeNil())
		})

		It("replaces the schema with an override", func() {
			replacement := &modules.CompositeSchema{}
			module := modules.MustNewModule(&modules.ModuleConfig{
				Name:     "app",
				TypeDefs: modules.Literal([]string{"type Query { ok: Boolean }"}),
				Middleware: func(view *modules.CacheView) *modules.CacheOverrides {
					return &modules.CacheOverrides{Schema: replacement}
				},
			})

			schema, err := module.Schema()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(schema).Should(BeIdenticalTo(replacement))
		})

		It("stores resolver overrides for later reads", func() {
			override := modules.ResolverMap{
				"Query": {"ok": modules.RawResolver{Value: true}},
			}
			module := modules.MustNewModule(&modules.ModuleConfig{
				Name:     "app",
				TypeDefs: modules.Literal([]string{"type Query { ok: Boolean }"}),
				Middleware: func(view *modules.CacheView) *modules.CacheOverrides {
					return &modules.CacheOverrides{Resolvers: override}
				},
			})

			_, err := module.Schema()
			Expect(err).ShouldNot(HaveOccurred())

			resolvers, err := module.Resolvers()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(resolvers).Should(Equal(override))
		})

		It("runs for modules without documents", func() {
			ran := false
			module := modules.MustNewModule(&modules.ModuleConfig{
				Name: "empty",
				Middleware: func(view *modules.CacheView) *modules.CacheOverrides {
					ran = true
					Expect(view.Schema).Should(BeNil())
					return nil
				},
			})

			schema, err := module.Schema()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(schema).Should(BeNil())
			Expect(ran).Should(BeTrue())
		})
	})
})
