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
	"context"
	"errors"

	"github.com/dsalazarm/graphql-modules/internal/testutil"
	"github.com/dsalazarm/graphql-modules/internal/util"
	"github.com/dsalazarm/graphql-modules/modules"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// staticErrorCompiler fails every compilation with a fixed error.
type staticErrorCompiler struct {
	err error
}

func (c staticErrorCompiler) Compile(
	typeDefs []string, resolvers modules.ResolverMap, directives modules.SchemaDirectives,
	opts modules.ResolverValidationOptions,
) (modules.Schema, error) {
	return nil, c.err
}

// opaqueSchema stands in for a schema built by some other compiler.
type opaqueSchema struct{}

func noopResolver() modules.FieldResolver {
	return func(
		ctx context.Context, source interface{}, args map[string]interface{}, info *modules.ResolveInfo,
	) (interface{}, error) {
		return nil, nil
	}
}

var _ = Describe("schema compilation", func() {
	It("compiles the aggregated documents and resolvers", func() {
		users := modules.MustNewModule(&modules.ModuleConfig{
			Name:     "users",
			TypeDefs: modules.Literal([]string{"type User { id: ID }"}),
			Resolvers: modules.Literal(modules.ResolverMap{
				"User": {"id": noopResolver()},
			}),
		})
		app := modules.MustNewModule(&modules.ModuleConfig{
			Name:     "app",
			Imports:  modules.Literal(modules.Refs(users)),
			TypeDefs: modules.Literal([]string{"type Query { me: User }"}),
			Resolvers: modules.Literal(modules.ResolverMap{
				"Query": {"me": noopResolver()},
			}),
		})

		schema, err := app.Schema()
		Expect(err).ShouldNot(HaveOccurred())

		composite, ok := schema.(*modules.CompositeSchema)
		Expect(ok).Should(BeTrue())
		Expect(composite.TypeDefs).Should(Equal([]string{
			"type User { id: ID }",
			"type Query { me: User }",
		}))
		Expect(composite.Resolvers["User"]).Should(HaveKey("id"))
		Expect(composite.Resolvers["Query"]).Should(HaveKey("me"))
	})

	It("accepts extensions of types some other module declares", func() {
		users := modules.MustNewModule(&modules.ModuleConfig{
			Name:     "users",
			TypeDefs: modules.Literal([]string{"type Query { me: String }"}),
		})
		app := modules.MustNewModule(&modules.ModuleConfig{
			Name:     "app",
			Imports:  modules.Literal(modules.Refs(users)),
			TypeDefs: modules.Literal([]string{"extend type Query { version: String }"}),
		})

		schema, err := app.Schema()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(schema.(*modules.CompositeSchema).TypeDefs).Should(HaveLen(2))
	})

	It("reports extensions of types no module declares", func() {
		app := modules.MustNewModule(&modules.ModuleConfig{
			Name:     "app",
			TypeDefs: modules.Literal([]string{"extend type Query { version: String }"}),
		})

		_, err := app.Schema()
		Expect(err).Should(testutil.MatchModuleError(
			testutil.KindIs(modules.ErrKindTypeDefNotFound),
			testutil.ModuleIs("app"),
			testutil.MessageEqual(`schema of module "app" references type "Query" which is not defined anywhere`),
		))
		Expect(err.Error()).Should(ContainSubstring(`Type "Query" not found in document`))
	})

	Describe("resolver validation", func() {
		It("rejects resolvers for types the schema does not declare", func() {
			app := modules.MustNewModule(&modules.ModuleConfig{
				Name:     "app",
				TypeDefs: modules.Literal([]string{"type Known { id: ID }"}),
				Resolvers: modules.Literal(modules.ResolverMap{
					"Ghost": {"walk": noopResolver()},
				}),
			})

			_, err := app.Schema()
			Expect(err).Should(testutil.MatchModuleError(
				testutil.KindIs(modules.ErrKindSchemaNotValid),
				testutil.ModuleIs("app"),
				testutil.MessageEqual(`failed to compile schema for module "app"`),
			))
			Expect(err.Error()).Should(ContainSubstring(`resolver defined for type "Ghost" which the schema does not declare`))
		})

		It("can be told to allow resolvers outside the schema", func() {
			app := modules.MustNewModule(&modules.ModuleConfig{
				Name:     "app",
				TypeDefs: modules.Literal([]string{"type Known { id: ID }"}),
				Resolvers: modules.Literal(modules.ResolverMap{
					"Ghost": {"walk": noopResolver()},
				}),
				ResolverValidationOptions: modules.Literal(modules.ResolverValidationOptions{
					AllowResolversNotInSchema: true,
				}),
			})

			_, err := app.Schema()
			Expect(err).ShouldNot(HaveOccurred())
		})

		It("can require a resolver for every declared field", func() {
			app := modules.MustNewModule(&modules.ModuleConfig{
				Name: "app",
				TypeDefs: modules.Literal([]string{util.Dedent(`
					type Query {
						me: String
						age: Int
					}
				`)}),
				Resolvers: modules.Literal(modules.ResolverMap{
					"Query": {"me": noopResolver()},
				}),
				ResolverValidationOptions: modules.Literal(modules.ResolverValidationOptions{
					RequireResolversForAllFields: true,
				}),
			})

			_, err := app.Schema()
			Expect(err).Should(testutil.MatchModuleError(
				testutil.KindIs(modules.ErrKindSchemaNotValid),
				testutil.ModuleIs("app"),
			))
			Expect(err.Error()).Should(ContainSubstring(`no resolver defined for field "age" of type "Query"`))
		})
	})

	Describe("custom compilers", func() {
		It("classifies missing-type reports as missing type definitions", func() {
			app := modules.MustNewModule(&modules.ModuleConfig{
				Name:           "app",
				TypeDefs:       modules.Literal([]string{"type Query { me: Profile }"}),
				SchemaCompiler: staticErrorCompiler{err: errors.New(`Type "Profile" not found in document`)},
			})

			_, err := app.Schema()
			Expect(err).Should(testutil.MatchModuleError(
				testutil.KindIs(modules.ErrKindTypeDefNotFound),
				testutil.ModuleIs("app"),
				testutil.MessageEqual(`schema of module "app" references type "Profile" which is not defined anywhere`),
			))
		})

		It("classifies everything else as an invalid schema", func() {
			app := modules.MustNewModule(&modules.ModuleConfig{
				Name:           "app",
				TypeDefs:       modules.Literal([]string{"type Query { me: String }"}),
				SchemaCompiler: staticErrorCompiler{err: errors.New(`type "Profile" is unknown`)},
			})

			_, err := app.Schema()
			Expect(err).Should(testutil.MatchModuleError(
				testutil.KindIs(modules.ErrKindSchemaNotValid),
				testutil.ModuleIs("app"),
				testutil.MessageEqual(`failed to compile schema for module "app"`),
			))
		})
	})

	Describe("extra schemas", func() {
		It("folds extra schemas in after the compiled one", func() {
			extra := &modules.CompositeSchema{
				TypeDefs: []string{"type Extra { kind: String }"},
				Resolvers: modules.ResolverMap{
					"Extra": {"kind": noopResolver()},
				},
			}
			app := modules.MustNewModule(&modules.ModuleConfig{
				Name:         "app",
				TypeDefs:     modules.Literal([]string{"type Query { extra: Extra }"}),
				ExtraSchemas: modules.Literal([]modules.Schema{extra}),
				Resolvers: modules.Literal(modules.ResolverMap{
					"Query": {"extra": noopResolver()},
				}),
				ResolverValidationOptions: modules.Literal(modules.ResolverValidationOptions{
					AllowResolversNotInSchema: true,
				}),
			})

			schema, err := app.Schema()
			Expect(err).ShouldNot(HaveOccurred())

			composite := schema.(*modules.CompositeSchema)
			Expect(composite.TypeDefs).Should(Equal([]string{
				"type Query { extra: Extra }",
				"type Extra { kind: String }",
			}))
			Expect(composite.Resolvers["Extra"]).Should(HaveKey("kind"))
			Expect(composite.Resolvers["Query"]).Should(HaveKey("extra"))
		})

		It("keeps one copy of an extra schema shared by several imports", func() {
			extra := &modules.CompositeSchema{TypeDefs: []string{"type Shared { id: ID }"}}
			first := modules.MustNewModule(&modules.ModuleConfig{
				Name:         "first",
				ExtraSchemas: modules.Literal([]modules.Schema{extra}),
			})
			second := modules.MustNewModule(&modules.ModuleConfig{
				Name:         "second",
				ExtraSchemas: modules.Literal([]modules.Schema{extra}),
			})
			app := modules.MustNewModule(&modules.ModuleConfig{
				Name:     "app",
				Imports:  modules.Literal(modules.Refs(first, second)),
				TypeDefs: modules.Literal([]string{"type Query { ok: Boolean }"}),
			})

			schema, err := app.Schema()
			Expect(err).ShouldNot(HaveOccurred())
			Expect(schema.(*modules.CompositeSchema).TypeDefs).Should(Equal([]string{
				"type Query { ok: Boolean }",
				"type Shared { id: ID }",
			}))
		})

		It("refuses extra schemas built by a different compiler", func() {
			app := modules.MustNewModule(&modules.ModuleConfig{
				Name:         "app",
				TypeDefs:     modules.Literal([]string{"type Query { ok: Boolean }"}),
				ExtraSchemas: modules.Literal([]modules.Schema{opaqueSchema{}}),
			})

			_, err := app.Schema()
			Expect(err).Should(testutil.MatchModuleError(
				testutil.KindIs(modules.ErrKindSchemaNotValid),
				testutil.ModuleIs("app"),
			))
			Expect(err.Error()).Should(ContainSubstring("cannot merge schema of type"))
		})
	})
})

var _ = Describe("resolver composition", func() {
	ctx := context.Background()

	// tag records the invocation order of a middleware chain.
	tag := func(order *[]string, label string) modules.ResolverMiddleware {
		return func(next modules.ResolverFunc) modules.ResolverFunc {
			return func(
				resolveCtx context.Context, source interface{}, args map[string]interface{}, info *modules.ResolveInfo,
			) (interface{}, error) {
				*order = append(*order, label)
				return next(resolveCtx, source, args, info)
			}
		}
	}

	terminal := func(order *[]string) modules.FieldResolver {
		return func(
			resolveCtx context.Context, source interface{}, args map[string]interface{}, info *modules.ResolveInfo,
		) (interface{}, error) {
			*order = append(*order, "resolve")
			return nil, nil
		}
	}

	It("applies the wildcard chain outside the exact chain", func() {
		var order []string
		app := modules.MustNewModule(&modules.ModuleConfig{
			Name: "app",
			Resolvers: modules.Literal(modules.ResolverMap{
				"Query": {"me": terminal(&order)},
			}),
			ResolversComposition: modules.Literal(modules.ResolversComposition{
				"Query.*":  {tag(&order, "wildcard")},
				"Query.me": {tag(&order, "exact-1"), tag(&order, "exact-2")},
			}),
		})

		resolvers, err := app.Resolvers()
		Expect(err).ShouldNot(HaveOccurred())

		_, err = resolvers["Query"]["me"].(modules.FieldResolver)(ctx, nil, nil, &modules.ResolveInfo{Session: "session-1"})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(order).Should(Equal([]string{"wildcard", "exact-1", "exact-2", "resolve"}))
	})

	It("ignores composition entries without a matching resolver", func() {
		var order []string
		app := modules.MustNewModule(&modules.ModuleConfig{
			Name: "app",
			Resolvers: modules.Literal(modules.ResolverMap{
				"Query": {"me": terminal(&order)},
			}),
			ResolversComposition: modules.Literal(modules.ResolversComposition{
				"Query.missing": {tag(&order, "never")},
			}),
		})

		resolvers, err := app.Resolvers()
		Expect(err).ShouldNot(HaveOccurred())
		Expect(resolvers["Query"]).ShouldNot(HaveKey("missing"))

		_, err = resolvers["Query"]["me"].(modules.FieldResolver)(ctx, nil, nil, &modules.ResolveInfo{Session: "session-1"})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(order).Should(Equal([]string{"resolve"}))
	})

	It("composes once per module level, importer outermost", func() {
		var order []string
		users := modules.MustNewModule(&modules.ModuleConfig{
			Name: "users",
			Resolvers: modules.Literal(modules.ResolverMap{
				"Query": {"me": terminal(&order)},
			}),
			ResolversComposition: modules.Literal(modules.ResolversComposition{
				"Query.me": {tag(&order, "users")},
			}),
		})
		app := modules.MustNewModule(&modules.ModuleConfig{
			Name:    "app",
			Imports: modules.Literal(modules.Refs(users)),
			ResolversComposition: modules.Literal(modules.ResolversComposition{
				"Query.me": {tag(&order, "app")},
			}),
		})

		resolvers, err := app.Resolvers()
		Expect(err).ShouldNot(HaveOccurred())

		_, err = resolvers["Query"]["me"].(modules.FieldResolver)(ctx, nil, nil, &modules.ResolveInfo{Session: "session-1"})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(order).Should(Equal([]string{"app", "users", "resolve"}))
	})

	It("wraps subscription Subscribe functions", func() {
		var order []string
		app := modules.MustNewModule(&modules.ModuleConfig{
			Name: "app",
			Resolvers: modules.Literal(modules.ResolverMap{
				"Subscription": {"updates": modules.SubscriptionResolver{
					Subscribe: func(
						resolveCtx context.Context, source interface{}, args map[string]interface{}, info *modules.ResolveInfo,
					) (interface{}, error) {
						order = append(order, "subscribe")
						return nil, nil
					},
				}},
			}),
			ResolversComposition: modules.Literal(modules.ResolversComposition{
				"Subscription.updates": {tag(&order, "audit")},
			}),
		})

		resolvers, err := app.Resolvers()
		Expect(err).ShouldNot(HaveOccurred())

		subscription := resolvers["Subscription"]["updates"].(modules.SubscriptionResolver)
		_, err = subscription.Subscribe(ctx, nil, nil, &modules.ResolveInfo{Session: "session-1"})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(order).Should(Equal([]string{"audit", "subscribe"}))
	})
})
