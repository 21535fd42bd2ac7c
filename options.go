// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jsonrest

import (
	"log/slog"
	"net/http"

	"rivaas.dev/jsonrest/apierror"
)

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithLogger sets the structured logger for request completion and failure
// entries. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithErrorFormatter replaces the JSON error formatter that renders
// taxonomy errors into response bodies.
func WithErrorFormatter(formatter apierror.Formatter) Option {
	return func(d *Dispatcher) {
		d.formatter = formatter
	}
}

// WithObservability attaches the request observability lifecycle hooks.
func WithObservability(recorder ObservabilityRecorder) Option {
	return func(d *Dispatcher) {
		d.observability = recorder
	}
}

// WithNotFoundHandler replaces the built-in not-found responder used for
// unknown paths, malformed version segments, and unmatched versions. The
// handler runs with the CORS headers already applied.
func WithNotFoundHandler(handler http.Handler) Option {
	return func(d *Dispatcher) {
		d.notFound = handler
	}
}

// WithDefaultOrigin sets the Access-Control-Allow-Origin value applied when
// no auth policy set one. Defaults to "*"; an empty string disables the
// automatic fill.
func WithDefaultOrigin(origin string) Option {
	return func(d *Dispatcher) {
		d.defaultOrigin = origin
	}
}

// WithMaxBodyBytes caps the request body size read during decoding. Bodies
// beyond the cap fail with status 413. Zero means unlimited.
func WithMaxBodyBytes(limit int64) Option {
	return func(d *Dispatcher) {
		d.maxBodyBytes = limit
	}
}
