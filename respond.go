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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/auth"
)

// Fixed route-miss responses rendered through the error formatter, so a
// custom formatter restyles them together with every other error body.
var (
	errRouteNotFound    = apierror.WithStatus(errors.New("Route not found"), http.StatusNotFound)
	errMethodNotAllowed = apierror.WithStatus(errors.New("Method not allowed"), http.StatusMethodNotAllowed)
)

// respondError renders a pipeline failure as a JSON error body. Failures of
// a kind the endpoint or the active policy declares as tolerated log at
// warning; everything else logs at error severity, flagging a failure mode
// nobody anticipated.
func (d *Dispatcher) respondError(w http.ResponseWriter, req *http.Request, policy auth.Policy, logger *slog.Logger, endpoint *MethodEndpoint, st stage, err error, start time.Time) {
	resp := d.formatter.Format(req, err)

	d.applyCORS(w.Header(), req, policy)
	d.writeResponse(w, resp)

	kind := apierror.KindOf(err)
	attrs := []any{
		slog.String("stage", st.String()),
		slog.String("kind", kind.String()),
		slog.Int("status", resp.Status),
		slog.Duration("duration", time.Since(start)),
		slog.String("error", err.Error()),
	}
	if d.tolerated(endpoint, policy, kind) {
		logger.Warn("request failed", attrs...)
	} else {
		logger.Error("request failed", attrs...)
	}
}

// tolerated reports whether the endpoint or the request's active policy
// declared the kind as expected during normal operation.
func (d *Dispatcher) tolerated(endpoint *MethodEndpoint, policy auth.Policy, kind apierror.Kind) bool {
	if endpoint.tolerates(kind) {
		return true
	}
	if policy == nil {
		return false
	}
	for _, k := range policy.Tolerated() {
		if k == kind {
			return true
		}
	}
	return false
}

// respondNotFound answers unknown paths, malformed version segments, and
// requests no declared version matches. A handler configured through
// WithNotFoundHandler replaces the built-in body.
func (d *Dispatcher) respondNotFound(w http.ResponseWriter, req *http.Request, start time.Time) {
	d.applyCORS(w.Header(), req, nil)
	if d.notFound != nil {
		d.notFound.ServeHTTP(w, req)
	} else {
		d.writeResponse(w, d.formatter.Format(req, errRouteNotFound))
	}
	d.logMiss(req, http.StatusNotFound, start)
}

// respondMethodNotAllowed answers method slots holding the built-in
// sentinel, listing the bucket's registered methods in the Allow header.
func (d *Dispatcher) respondMethodNotAllowed(w http.ResponseWriter, req *http.Request, bucket *VersionBucket, start time.Time) {
	d.applyCORS(w.Header(), req, nil)
	w.Header().Set("Allow", strings.Join(bucket.AllowedMethods(), ", "))
	d.writeResponse(w, d.formatter.Format(req, errMethodNotAllowed))
	d.logMiss(req, http.StatusMethodNotAllowed, start)
}

// logMiss writes the completion entry for route misses, keeping the access
// log complete for requests that never resolved to an endpoint.
func (d *Dispatcher) logMiss(req *http.Request, status int, start time.Time) {
	d.logger.Debug("request completed",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
	)
}

// writeResponse writes a formatted error response: extra headers first,
// then content type, status, and the JSON body.
func (d *Dispatcher) writeResponse(w http.ResponseWriter, resp apierror.Response) {
	for key, values := range resp.Headers {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	if resp.Body != nil {
		_ = json.NewEncoder(w).Encode(resp.Body)
	}
}

// applyCORS emits the wire contract's CORS headers. The policy's
// Postprocess runs first, so a consumer-scoped origin wins over the
// configured default; the default fills the origin only when nothing set
// one and it is not disabled.
func (d *Dispatcher) applyCORS(header http.Header, req *http.Request, policy auth.Policy) {
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	header.Set("Access-Control-Allow-Credentials", "true")

	if policy != nil {
		policy.Postprocess(req, header)
	}
	if header.Get("Access-Control-Allow-Origin") == "" && d.defaultOrigin != "" {
		header.Set("Access-Control-Allow-Origin", d.defaultOrigin)
	}
}
