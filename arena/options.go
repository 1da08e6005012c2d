/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package arena

import "log/slog"

type options struct {
	name     string
	softFail bool
	abort    func(error)
	logger   *slog.Logger
}

func defaultOptions() *options {
	return &options{
		name:   "arena",
		logger: slog.New(slog.DiscardHandler),
	}
}

// Option configures an Arena. Options are shared with every scratch and
// scope arena derived from it.
type Option func(*options)

// WithSoftFail makes every failed allocation return an error, as if each
// call passed SoftFail.
func WithSoftFail() Option {
	return func(o *options) {
		o.softFail = true
	}
}

// WithAbort sets the hook receiving fatal errors: invalid arguments,
// invariant violations and hard-fail allocation failures with no checkpoint.
// The arena panics with the same error if fn returns.
func WithAbort(fn func(error)) Option {
	return func(o *options) {
		o.abort = fn
	}
}

// WithLogger sets the logger used for debug records (commit growth,
// checkpoint unwinds, scope and scratch discards) and by (*Arena).Log.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithName sets the name attached to log records.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}
