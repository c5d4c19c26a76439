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

package logging_test

import (
	"bytes"

	"github.com/dsalazarm/graphql-modules/logging"
	"github.com/dsalazarm/graphql-modules/modules"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logger", func() {
	var buf bytes.Buffer

	BeforeEach(func() {
		buf.Reset()
	})

	It("writes messages to the given writer", func() {
		logger := logging.New(&buf)
		logger.Log("module registry initialized")

		Expect(buf.String()).Should(ContainSubstring("module registry initialized"))
	})

	It("prefixes messages with the default prefix", func() {
		logger := logging.New(&buf)
		logger.Log("hello")

		Expect(buf.String()).Should(ContainSubstring("modules"))
	})

	It("honors a custom prefix", func() {
		logger := logging.New(&buf, logging.WithPrefix("registry"))
		logger.Warn("circular imports found")

		Expect(buf.String()).Should(ContainSubstring("registry"))
		Expect(buf.String()).Should(ContainSubstring("circular imports found"))
	})

	It("distinguishes levels", func() {
		logger := logging.New(&buf)
		logger.Error("schema compilation failed")

		Expect(buf.String()).Should(ContainSubstring("ERRO"))
	})

	It("plugs into a module configuration", func() {
		var logger modules.Logger = logging.New(&buf)
		module := modules.MustNewModule(&modules.ModuleConfig{
			Name:   "app",
			Logger: logger,
		})

		Expect(module.Name()).Should(Equal("app"))
		logger.Log("registry ready")
		Expect(buf.String()).Should(ContainSubstring("registry ready"))
	})
})
