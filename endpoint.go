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
	"net/http"
	"slices"
	"time"

	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/auth"
	"rivaas.dev/jsonrest/version"
)

// HandlerFunc is the signature of an endpoint handler. The returned payload
// is wrapped into the {"data": ...} envelope unless it is a map already
// carrying a top-level "data" key. A returned error maps through the
// apierror taxonomy into a JSON error response.
type HandlerFunc func(c *Context) (any, error)

// CacheValidator computes conditional-GET validators for a request. A zero
// time or empty tag means "unknown" and is skipped. Validators run after
// authentication and before the handler; a match short-circuits with 304.
type CacheValidator func(r *http.Request) (etag string, lastModified time.Time)

// MethodEndpoint binds one handler to a (path, declared version, method)
// triple together with its authentication factory, cache validator, and
// tolerated error kinds.
//
// Endpoints are created during registration and immutable afterward, so
// concurrent request dispatch reads them without locking.
type MethodEndpoint struct {
	method    string
	path      string
	version   version.Spec
	handler   HandlerFunc
	auth      auth.Factory
	cache     CacheValidator
	tolerated []apierror.Kind
	name      string
}

// methodNotAllowed is the endpoint every unregistered method slot points
// at, so method lookup never needs an existence check. The dispatcher
// recognizes it and answers 405 before authentication.
var methodNotAllowed = &MethodEndpoint{name: "method_not_allowed"}

// Method returns the HTTP method, e.g. "GET".
func (e *MethodEndpoint) Method() string {
	return e.method
}

// Path returns the normalized endpoint path (no leading separator).
func (e *MethodEndpoint) Path() string {
	return e.path
}

// Version returns the declared version spec.
func (e *MethodEndpoint) Version() version.Spec {
	return e.version
}

// Auth returns the factory that builds the per-request auth policy.
func (e *MethodEndpoint) Auth() auth.Factory {
	return e.auth
}

// CacheValidator returns the endpoint's cache validator, or nil.
func (e *MethodEndpoint) CacheValidator() CacheValidator {
	return e.cache
}

// Tolerated returns the error kinds the endpoint declares as expected
// during normal operation.
func (e *MethodEndpoint) Tolerated() []apierror.Kind {
	return slices.Clone(e.tolerated)
}

// Name returns the endpoint's stable name, for logs and route listings.
func (e *MethodEndpoint) Name() string {
	return e.name
}

// String renders "GET auth/consumer@0.0++".
func (e *MethodEndpoint) String() string {
	return e.method + " " + e.path + "@" + e.version.String()
}

func (e *MethodEndpoint) tolerates(kind apierror.Kind) bool {
	return slices.Contains(e.tolerated, kind)
}
