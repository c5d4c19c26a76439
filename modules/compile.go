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
	"fmt"
	"sort"
	"strings"
)

//===----------------------------------------------------------------------------------------====//
// Compilation capabilities
//===----------------------------------------------------------------------------------------====//

// SchemaCompiler turns the type definition documents visible to a module into a Schema. Errors
// whose text has the form
//
//	Type "X" not found in document
//
// are classified as missing type definitions; everything else is reported as an invalid schema.
type SchemaCompiler interface {
	Compile(typeDefs []string, resolvers ResolverMap, directives SchemaDirectives, opts ResolverValidationOptions) (Schema, error)
}

// SchemaMerger folds a module's compiled schema together with its extra schemas. schemas[0] is
// always the compiled one; extraResolvers are the module's aggregated resolvers, merged last.
type SchemaMerger interface {
	Merge(schemas []Schema, extraResolvers ResolverMap) (Schema, error)
}

// Composer applies a resolver composition to a resolver map and returns the composed map. The
// input map must not be mutated.
type Composer interface {
	Compose(resolvers ResolverMap, composition ResolversComposition) ResolverMap
}

// Built-in capability implementations. A module falls back to these when its configuration leaves
// the corresponding collaborator nil.
var (
	defaultSchemaCompiler SchemaCompiler = documentCompiler{}
	defaultSchemaMerger   SchemaMerger   = compositeMerger{}
	defaultComposer       Composer       = chainComposer{}
)

// CompositeSchema is the Schema produced by the built-in compiler and merger: the composed
// documents and resolvers, ready to be handed to an executor.
type CompositeSchema struct {
	TypeDefs   []string
	Resolvers  ResolverMap
	Directives SchemaDirectives
}

//===----------------------------------------------------------------------------------------====//
// Built-in compiler
//===----------------------------------------------------------------------------------------====//

// documentCompiler is a structural compiler: it scans the documents line by line to find the
// declared and extended type names, checks that every extension has a declaration and that the
// resolver map is consistent with the documents, and packages the inputs as a CompositeSchema.
// It is not a full SDL parser; modules needing one plug their own SchemaCompiler in.
type documentCompiler struct{}

var _ SchemaCompiler = documentCompiler{}

func (documentCompiler) Compile(typeDefs []string, resolvers ResolverMap, directives SchemaDirectives, opts ResolverValidationOptions) (Schema, error) {
	scan := scanDocuments(typeDefs)

	for _, name := range scan.extended {
		if !scan.declared[name] {
			return nil, fmt.Errorf("%s%s%s", missingTypePrefix, name, missingTypeSuffix)
		}
	}

	if !opts.AllowResolversNotInSchema {
		var unknown []string
		for typeName := range resolvers {
			if !scan.declared[typeName] {
				unknown = append(unknown, typeName)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return nil, fmt.Errorf("resolver defined for type %q which the schema does not declare", unknown[0])
		}
	}

	if opts.RequireResolversForAllFields {
		for _, typeName := range scan.objectOrder {
			fields := resolvers[typeName]
			for _, field := range scan.objectFields[typeName] {
				if _, ok := fields[field]; !ok {
					return nil, fmt.Errorf("no resolver defined for field %q of type %q", field, typeName)
				}
			}
		}
	}

	return &CompositeSchema{TypeDefs: typeDefs, Resolvers: resolvers, Directives: directives}, nil
}

// documentScan is the structural summary of a set of documents.
type documentScan struct {
	declared     map[string]bool
	extendedSeen map[string]bool
	extended     []string

	// objectFields records field names per object type for the RequireResolversForAllFields
	// check. objectOrder preserves the order types first gained a field.
	objectOrder  []string
	objectFields map[string][]string
	fieldSeen    map[string]bool
}

func scanDocuments(typeDefs []string) *documentScan {
	scan := &documentScan{
		declared:     make(map[string]bool),
		extendedSeen: make(map[string]bool),
		objectFields: make(map[string][]string),
		fieldSeen:    make(map[string]bool),
	}

	for _, doc := range typeDefs {
		depth := 0
		objectName := ""
		for _, rawLine := range strings.Split(doc, "\n") {
			line := strings.TrimSpace(rawLine)
			if len(line) == 0 || strings.HasPrefix(line, "#") {
				continue
			}

			if depth == 0 {
				if keyword, name, extend := declaredName(line); len(keyword) > 0 {
					if extend {
						if !scan.extendedSeen[name] {
							scan.extendedSeen[name] = true
							scan.extended = append(scan.extended, name)
						}
					} else {
						scan.declared[name] = true
					}
					if keyword == "type" {
						objectName = name
					}
				}
			} else if len(objectName) > 0 {
				if name := fieldName(line); len(name) > 0 {
					scan.addField(objectName, name)
				}
			}

			depth += strings.Count(line, "{") - strings.Count(line, "}")
			if depth <= 0 {
				depth = 0
				if strings.Contains(line, "}") {
					objectName = ""
				}
			}
		}
	}
	return scan
}

func (s *documentScan) addField(typeName string, field string) {
	key := typeName + "." + field
	if s.fieldSeen[key] {
		return
	}
	s.fieldSeen[key] = true
	if s.objectFields[typeName] == nil {
		s.objectOrder = append(s.objectOrder, typeName)
	}
	s.objectFields[typeName] = append(s.objectFields[typeName], field)
}

var declarationKeywords = map[string]bool{
	"type":      true,
	"interface": true,
	"enum":      true,
	"input":     true,
	"union":     true,
	"scalar":    true,
}

// declaredName extracts the keyword and type name from a declaration line. keyword is "" when the
// line does not start a declaration; extend reports an "extend" prefix.
func declaredName(line string) (keyword string, name string, extend bool) {
	words := strings.Fields(line)
	if len(words) > 0 && words[0] == "extend" {
		extend = true
		words = words[1:]
	}
	if len(words) < 2 || !declarationKeywords[words[0]] {
		return "", "", false
	}

	name = words[1]
	if i := strings.IndexAny(name, "{(=@"); i >= 0 {
		name = name[:i]
	}
	if len(name) == 0 {
		return "", "", false
	}
	return words[0], name, extend
}

// fieldName extracts the field name from a line inside an object type block, returning "" for
// lines that do not look like field definitions.
func fieldName(line string) string {
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return ""
	}

	name := line[:colon]
	if paren := strings.IndexByte(name, '('); paren >= 0 {
		name = name[:paren]
	}
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return ""
	}
	for _, r := range name {
		if !isNameRune(r) {
			return ""
		}
	}
	return name
}

func isNameRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}

//===----------------------------------------------------------------------------------------====//
// Built-in merger
//===----------------------------------------------------------------------------------------====//

// compositeMerger concatenates CompositeSchema values. It refuses foreign schema types; a module
// mixing extra schemas from another compiler also needs a matching SchemaMerger.
type compositeMerger struct{}

var _ SchemaMerger = compositeMerger{}

func (compositeMerger) Merge(schemas []Schema, extraResolvers ResolverMap) (Schema, error) {
	merged := &CompositeSchema{}
	for _, schema := range schemas {
		composite, ok := schema.(*CompositeSchema)
		if !ok {
			return nil, fmt.Errorf(
				"cannot merge schema of type %T; the built-in merger only understands schemas built by the built-in compiler",
				schema)
		}
		merged.TypeDefs = append(merged.TypeDefs, composite.TypeDefs...)
		merged.Resolvers = mergeResolverMapInto(merged.Resolvers, composite.Resolvers)
		merged.Directives = mergeSchemaDirectivesInto(merged.Directives, composite.Directives)
	}
	merged.Resolvers = mergeResolverMapInto(merged.Resolvers, extraResolvers)
	return merged, nil
}

//===----------------------------------------------------------------------------------------====//
// Built-in composer
//===----------------------------------------------------------------------------------------====//

// chainComposer wraps field and subscription resolvers with the middleware chains registered for
// their paths. For a field both the "Type.*" wildcard chain and the exact "Type.field" chain
// apply, wildcard outermost; within a chain the first middleware is the outermost wrapper.
// Composition entries for paths without a resolver are ignored.
type chainComposer struct{}

var _ Composer = chainComposer{}

func (chainComposer) Compose(resolvers ResolverMap, composition ResolversComposition) ResolverMap {
	if len(resolvers) == 0 || len(composition) == 0 {
		return resolvers
	}

	composed := make(ResolverMap, len(resolvers))
	for typeName, fields := range resolvers {
		wildcard := composition[typeName+".*"]

		target := make(map[string]Resolver, len(fields))
		for fieldName, resolver := range fields {
			chain := wildcard
			if exact := composition[typeName+"."+fieldName]; len(exact) > 0 {
				chain = append(append([]ResolverMiddleware(nil), wildcard...), exact...)
			}
			target[fieldName] = applyMiddleware(resolver, chain)
		}
		composed[typeName] = target
	}
	return composed
}

func applyMiddleware(resolver Resolver, chain []ResolverMiddleware) Resolver {
	if len(chain) == 0 {
		return resolver
	}
	switch r := resolver.(type) {
	case FieldResolver:
		return FieldResolver(wrapChain(ResolverFunc(r), chain))
	case SubscriptionResolver:
		if r.Subscribe != nil {
			r.Subscribe = wrapChain(r.Subscribe, chain)
		}
		return r
	}
	return resolver
}

func wrapChain(fn ResolverFunc, chain []ResolverMiddleware) ResolverFunc {
	for i := len(chain) - 1; i >= 0; i-- {
		fn = chain[i](fn)
	}
	return fn
}
