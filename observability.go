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
	"context"
	"net/http"
)

// ObservabilityRecorder provides the observability lifecycle hooks for
// dispatched requests. Implementations typically combine metrics, tracing,
// and access logging; the metrics package ships one.
//
// Lifecycle per request:
//  1. OnRequestStart(ctx, req) → (enrichedCtx, state). The enriched context
//     always replaces the request context (trace propagation works even for
//     excluded requests). A nil state excludes the request from the
//     remaining hooks.
//  2. WrapResponseWriter(w, state) wraps the writer so the implementation
//     can capture status and size; only called when state != nil.
//  3. OnRequestEnd(ctx, state, writer, routePattern) after the response is
//     written; only called when state != nil. routePattern is the matched
//     "path@version" pattern or the "_not_found" sentinel, never the raw
//     URL, keeping attribute cardinality bounded.
//
// All methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	// OnRequestStart is called before resolution begins. Return a nil
	// state to exclude the request from wrapping and OnRequestEnd.
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)

	// WrapResponseWriter wraps the writer to capture response metadata.
	// The wrapped writer should implement ResponseInfo.
	WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter

	// OnRequestEnd completes the lifecycle for non-excluded requests.
	OnRequestEnd(ctx context.Context, state any, writer http.ResponseWriter, routePattern string)
}

// ResponseInfo is implemented by response writers that track response
// metadata, letting OnRequestEnd extract status and size from the wrapped
// writer.
type ResponseInfo interface {
	StatusCode() int
	Size() int64
}
