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

// Package logging adapts charmbracelet/log to the Logger interface consumed by the modules
// package. Modules that want their diagnostics (such as circular-import warnings) on a terminal
// or in a log stream pass a *Logger through their configuration.
package logging

import (
	"io"
	"os"

	charm "github.com/charmbracelet/log"
)

// Logger forwards module diagnostics to a charmbracelet logger.
type Logger struct {
	logger *charm.Logger
}

// Option customizes the underlying charmbracelet logger.
type Option func(*charm.Options)

// WithPrefix sets the prefix printed before every message.
func WithPrefix(prefix string) Option {
	return func(o *charm.Options) {
		o.Prefix = prefix
	}
}

// WithTimestamp enables the timestamp column.
func WithTimestamp() Option {
	return func(o *charm.Options) {
		o.ReportTimestamp = true
	}
}

// New returns a Logger writing to w.
func New(w io.Writer, opts ...Option) *Logger {
	options := charm.Options{
		Prefix: "modules",
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Logger{
		logger: charm.NewWithOptions(w, options),
	}
}

// Default returns a Logger writing to standard error with timestamps enabled.
func Default() *Logger {
	return New(os.Stderr, WithTimestamp())
}

// Log emits message at info level.
func (l *Logger) Log(message string) {
	l.logger.Info(message)
}

// Warn emits message at warn level.
func (l *Logger) Warn(message string) {
	l.logger.Warn(message)
}

// Error emits message at error level.
func (l *Logger) Error(message string) {
	l.logger.Error(message)
}
