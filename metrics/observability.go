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

package metrics

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/jsonrest"
)

// Observability adapts the recorder to the dispatcher's observability
// hooks. One adapter can serve any number of dispatchers.
func (r *Recorder) Observability() jsonrest.ObservabilityRecorder {
	return &observer{recorder: r}
}

type observer struct {
	recorder *Recorder
}

// requestState carries per-request timing and attributes between the hooks.
type requestState struct {
	start       time.Time
	method      string
	requestSize int64
}

func (o *observer) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if o.recorder.shutdown.Load() {
		return ctx, nil
	}

	state := &requestState{
		start:       time.Now(),
		method:      req.Method,
		requestSize: req.ContentLength,
	}

	o.recorder.activeRequests.Add(ctx, 1,
		metric.WithAttributes(o.recorder.serviceAttrs...))

	return ctx, state
}

func (o *observer) WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter {
	return &countingWriter{ResponseWriter: w, status: http.StatusOK}
}

func (o *observer) OnRequestEnd(ctx context.Context, state any, writer http.ResponseWriter, routePattern string) {
	st, ok := state.(*requestState)
	if !ok {
		return
	}
	r := o.recorder

	status := http.StatusOK
	var size int64
	if info, ok := writer.(jsonrest.ResponseInfo); ok {
		status = info.StatusCode()
		size = info.Size()
	}

	route, apiVersion := splitRoutePattern(routePattern)
	attrs := make([]attribute.KeyValue, 0, len(r.serviceAttrs)+5)
	attrs = append(attrs, r.serviceAttrs...)
	attrs = append(attrs,
		attribute.String("http.method", st.method),
		attribute.Int("http.status_code", status),
		attribute.String("http.status_class", statusClass(status)),
		attribute.String("http.route", route),
		attribute.String("api.version", apiVersion),
	)
	set := metric.WithAttributes(attrs...)

	r.requestDuration.Record(ctx, time.Since(st.start).Seconds(), set)
	r.requestCount.Add(ctx, 1, set)
	r.activeRequests.Add(ctx, -1, metric.WithAttributes(r.serviceAttrs...))

	if status >= http.StatusBadRequest {
		r.errorCount.Add(ctx, 1, set)
	}
	if st.requestSize > 0 {
		r.requestSize.Record(ctx, st.requestSize, set)
	}
	if size > 0 {
		r.responseSize.Record(ctx, size, set)
	}
}

// splitRoutePattern separates a "path@version" route pattern. Sentinel
// patterns without a version part keep their full text as the route.
func splitRoutePattern(pattern string) (route, apiVersion string) {
	if path, v, ok := strings.Cut(pattern, "@"); ok {
		return path, v
	}
	return pattern, ""
}

func statusClass(status int) string {
	switch status / 100 {
	case 2:
		return "2xx"
	case 3:
		return "3xx"
	case 4:
		return "4xx"
	case 5:
		return "5xx"
	default:
		return "unknown"
	}
}

// countingWriter tracks the status and body size of a response. It
// implements the jsonrest.ResponseInfo capability the OnRequestEnd hook
// reads back.
type countingWriter struct {
	http.ResponseWriter
	status      int
	size        int64
	wroteHeader bool
}

func (w *countingWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *countingWriter) StatusCode() int {
	return w.status
}

func (w *countingWriter) Size() int64 {
	return w.size
}

// Flush passes through to the underlying writer when it supports streaming.
func (w *countingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack passes through for upgrade-capable servers.
func (w *countingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("response writer does not support hijacking")
}
