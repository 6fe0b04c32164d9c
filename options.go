// Copyright 2024 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/wurl/blob/master/LICENSE.txt.

package wurl

import (
	"context"
	"log/slog"
)

// Reporter receives the non-fatal validation errors the WHATWG standard
// calls "validation errors". They never change the parse result.
type Reporter func(err error)

type config struct {
	reporter     Reporter
	transitional bool
}

type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (o optionFunc) apply(c *config) {
	o(c)
}

// WithReporter registers a callback invoked for each validation error
// observed while parsing. A nil reporter disables reporting, which is the
// default.
func WithReporter(r Reporter) Option {
	return optionFunc(func(c *config) {
		c.reporter = r
	})
}

// LogReporter returns a [Reporter] that logs each validation error at debug
// level using the provided slog.Handler.
func LogReporter(handler slog.Handler) Reporter {
	log := slog.New(handler)
	return func(err error) {
		log.LogAttrs(context.Background(), slog.LevelDebug, "url validation error", slog.String("reason", err.Error()))
	}
}

// WithIDNATransitional enables IDNA 2003 transitional processing for
// domain-to-ascii conversion. Browsers no longer use transitional
// processing and it is off by default.
func WithIDNATransitional(enable bool) Option {
	return optionFunc(func(c *config) {
		c.transitional = enable
	})
}

func (c *config) report(err error) {
	if c.reporter != nil {
		c.reporter(err)
	}
}
