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

package testutil

import (
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/gstruct"
	"github.com/onsi/gomega/types"
)

// ErrorFieldsMatcher sets up fields to match.
type ErrorFieldsMatcher func(gstruct.Fields)

// MessageEqual matches the message in a modules.Error to be the same as the specified string.
func MessageEqual(s string) ErrorFieldsMatcher {
	return func(fields gstruct.Fields) {
		fields["Message"] = gomega.Equal(s)
	}
}

// MessageContainSubstring matches the message in a modules.Error to contain the specified string.
func MessageContainSubstring(s string) ErrorFieldsMatcher {
	return func(fields gstruct.Fields) {
		fields["Message"] = gomega.ContainSubstring(s)
	}
}

// ModuleIs matches the module name carried by the error.
func ModuleIs(name string) ErrorFieldsMatcher {
	return func(fields gstruct.Fields) {
		fields["Module"] = gomega.BeEquivalentTo(name)
	}
}

// FieldIs matches the "Type.field" resolver path carried by the error.
func FieldIs(path string) ErrorFieldsMatcher {
	return func(fields gstruct.Fields) {
		fields["Field"] = gomega.BeEquivalentTo(path)
	}
}

// KindIs matches the kind in the error to be the same as the given one. kind should be a
// modules.ErrKind value.
func KindIs(kind interface{}) ErrorFieldsMatcher {
	return func(fields gstruct.Fields) {
		fields["Kind"] = gomega.Equal(kind)
	}
}

// MatchModuleError matches a modules.Error with given fields.
//
// The following example matches a modules.Error including "circular imports" in the message with
// the error kind modules.ErrKindSchemaNotValid.
//
//	Expect(err).Should(MatchModuleError(
//		MessageContainSubstring("circular imports"),
//		KindIs(modules.ErrKindSchemaNotValid),
//	))
func MatchModuleError(matchers ...ErrorFieldsMatcher) types.GomegaMatcher {
	fields := gstruct.Fields{}
	for _, matcher := range matchers {
		matcher(fields)
	}
	return gstruct.PointTo(gstruct.MatchFields(gstruct.IgnoreExtras, fields))
}
