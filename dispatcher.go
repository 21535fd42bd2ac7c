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
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/auth"
	"rivaas.dev/jsonrest/version"
)

// stage names the pipeline phase a request is in. Failure logs and
// observability attributes carry the stage the request failed in.
type stage uint8

const (
	stageResolving stage = iota
	stageAuthenticating
	stageDecoding
	stageHandling
	stageEncoding
	stageDone
)

func (s stage) String() string {
	switch s {
	case stageResolving:
		return "resolving"
	case stageAuthenticating:
		return "authenticating"
	case stageDecoding:
		return "decoding"
	case stageHandling:
		return "handling"
	case stageEncoding:
		return "encoding"
	case stageDone:
		return "done"
	default:
		return "unknown"
	}
}

// notFoundPattern is the observability route pattern for requests that
// resolved to no endpoint.
const notFoundPattern = "_not_found"

// Dispatcher serves a frozen Registry as an http.Handler: it resolves the
// requested version and path to an endpoint and runs the request through
// the pipeline of authentication, body decoding, conditional-GET check,
// handling, and envelope encoding. Every failure renders as a JSON error
// body; nothing escapes as a bare transport error.
//
// A Dispatcher is immutable after New and safe for concurrent use.
type Dispatcher struct {
	registry      *Registry
	logger        *slog.Logger
	formatter     apierror.Formatter
	observability ObservabilityRecorder
	notFound      http.Handler
	defaultOrigin string
	maxBodyBytes  int64

	contexts sync.Pool
}

// New creates a Dispatcher over the given registry and freezes it. The
// registry must carry every registration already; routes cannot be added
// once a dispatcher serves it.
//
// Example:
//
//	reg := jsonrest.NewRegistry()
//	reg.MustAdd(jsonrest.InfoRoute(jsonrest.AppInfo{Name: "orders"}))
//
//	d, err := jsonrest.New(reg, jsonrest.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", d)
func New(registry *Registry, opts ...Option) (*Dispatcher, error) {
	if registry == nil {
		return nil, apierror.Wrap(ErrNilRegistry, apierror.KindConfiguration,
			"dispatcher requires a registry")
	}

	d := &Dispatcher{
		registry:      registry,
		logger:        slog.Default(),
		formatter:     apierror.NewJSON(),
		defaultOrigin: "*",
	}
	d.contexts.New = func() any { return new(Context) }

	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.formatter == nil {
		d.formatter = apierror.NewJSON()
	}

	registry.Freeze()
	return d, nil
}

// MustNew is New for startup wiring; it panics when construction fails.
func MustNew(registry *Registry, opts ...Option) *Dispatcher {
	d, err := New(registry, opts...)
	if err != nil {
		panic(fmt.Sprintf("jsonrest.MustNew: %v", err))
	}
	return d
}

// Registry returns the frozen registry the dispatcher serves.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	var obsState any

	if d.observability != nil {
		enriched, state := d.observability.OnRequestStart(ctx, req)
		if enriched != ctx {
			ctx = enriched
			req = req.WithContext(ctx)
		}
		obsState = state
		if obsState != nil {
			w = d.observability.WrapResponseWriter(w, obsState)
		}
	}

	pattern := d.dispatch(w, req)

	if d.observability != nil && obsState != nil {
		d.observability.OnRequestEnd(ctx, obsState, w, pattern)
	}
}

// dispatch resolves the request and serves it, returning the route pattern
// for observability.
func (d *Dispatcher) dispatch(w http.ResponseWriter, req *http.Request) string {
	start := time.Now()

	requested, path, ok := splitVersionPath(req.URL.Path)
	if !ok {
		d.respondNotFound(w, req, start)
		return notFoundPattern
	}

	table, ok := d.registry.Table(path)
	if !ok {
		d.respondNotFound(w, req, start)
		return notFoundPattern
	}

	bucket, ok := table.Resolve(requested)
	if !ok {
		d.respondNotFound(w, req, start)
		return notFoundPattern
	}

	pattern := bucket.path + "@" + bucket.version.String()

	endpoint := bucket.Endpoint(req.Method)
	if endpoint == methodNotAllowed {
		d.respondMethodNotAllowed(w, req, bucket, start)
		return pattern
	}

	d.serve(w, req, bucket, endpoint, requested, start)
	return pattern
}

// splitVersionPath reads the first path segment as the requested version
// and returns the remaining, normalized endpoint path. Segments that are
// not a well-formed version never match any route.
func splitVersionPath(urlPath string) (version.Number, string, bool) {
	segment, rest, _ := strings.Cut(strings.TrimPrefix(urlPath, "/"), "/")
	requested, err := version.ParseNumber(segment)
	if err != nil {
		return version.Number{}, "", false
	}
	return requested, rest, true
}

// serve runs the resolved endpoint's pipeline. Each stage fails the request
// with a taxonomy error; panics anywhere in the pipeline degrade to a
// masked 500 with the same response guarantees.
func (d *Dispatcher) serve(w http.ResponseWriter, req *http.Request, bucket *VersionBucket, endpoint *MethodEndpoint, requested version.Number, start time.Time) {
	logger := d.logger.With(
		slog.String("route", endpoint.name),
		slog.String("version", requested.String()),
	)

	c := d.contexts.Get().(*Context)
	c.request = req
	c.endpoint = endpoint
	c.version = requested
	c.logger = logger
	defer func() {
		c.reset()
		d.contexts.Put(c)
	}()

	var policy auth.Policy
	st := stageAuthenticating

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic during dispatch",
				slog.String("stage", st.String()),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			failure := apierror.NewConfiguration(fmt.Sprintf("panic during %s", st))
			d.respondError(w, req, policy, logger, endpoint, st, failure, start)
		}
	}()

	policy = endpoint.auth()

	identity, err := policy.Authenticate(req)
	if err != nil {
		d.respondError(w, req, policy, logger, endpoint, st, err, start)
		return
	}
	c.identity = identity

	st = stageDecoding
	if err := d.decodeBody(c, w, req); err != nil {
		d.respondError(w, req, policy, logger, endpoint, st, err, start)
		return
	}

	var etag string
	var lastModified time.Time
	if req.Method == http.MethodGet && bucket.cache != nil {
		etag, lastModified = bucket.cache(req)
		etag = quoteETag(etag)
		if requestNotModified(req, etag, lastModified) {
			d.applyCORS(w.Header(), req, policy)
			setValidators(w.Header(), etag, lastModified)
			w.WriteHeader(http.StatusNotModified)
			logger.Debug("request completed",
				slog.Int("status", http.StatusNotModified),
				slog.Duration("duration", time.Since(start)),
			)
			return
		}
	}

	st = stageHandling
	result, err := endpoint.handler(c)
	if err != nil {
		d.respondError(w, req, policy, logger, endpoint, st, err, start)
		return
	}

	st = stageEncoding
	body, err := encodeJSON(envelope(result))
	if err != nil {
		failure := apierror.Wrap(err, apierror.KindConfiguration, "response payload is not encodable")
		d.respondError(w, req, policy, logger, endpoint, st, failure, start)
		return
	}

	st = stageDone
	d.applyCORS(w.Header(), req, policy)
	setValidators(w.Header(), etag, lastModified)
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)

	logger.Debug("request completed",
		slog.Int("status", http.StatusOK),
		slog.Duration("duration", time.Since(start)),
	)
}
