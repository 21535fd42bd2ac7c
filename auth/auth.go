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

package auth

import (
	"net/http"

	"rivaas.dev/jsonrest/apierror"
)

// Identity is whoever a policy authenticated: a consumer, a user, or
// Anonymous for public endpoints.
type Identity interface {
	// Principal returns a stable identifier for the authenticated party,
	// suitable for logs.
	Principal() string
}

// Anonymous is the identity of requests admitted without credentials.
var Anonymous Identity = anonymous{}

type anonymous struct{}

func (anonymous) Principal() string {
	return "anonymous"
}

// Policy authenticates a single request and may adjust its response.
//
// A Policy instance serves exactly one request. The dispatcher builds one
// through the endpoint's Factory, calls Authenticate during the
// authentication stage, and calls Postprocess on the instance right before
// the response is written, whether the request succeeded or failed.
type Policy interface {
	// Authenticate inspects the request and returns the authenticated
	// Identity. Failures are Authentication-kind (bad or missing
	// credentials) or Access-kind (authorization rule denied) errors.
	Authenticate(r *http.Request) (Identity, error)

	// Postprocess mutates response headers after the handler ran. It must
	// be a no-op unless this instance authenticated the request.
	Postprocess(r *http.Request, header http.Header)

	// Tolerated lists the error kinds this policy produces during normal
	// operation. Tolerated failures are logged at warning instead of
	// error severity; the response is unaffected.
	Tolerated() []apierror.Kind
}

// Factory builds the per-request Policy instance for an endpoint.
type Factory func() Policy

// Public is a Factory (and the resulting Policy) that admits every request
// as Anonymous.
func Public() Policy {
	return publicPolicy{}
}

type publicPolicy struct{}

func (publicPolicy) Authenticate(*http.Request) (Identity, error) {
	return Anonymous, nil
}

func (publicPolicy) Postprocess(*http.Request, http.Header) {}

func (publicPolicy) Tolerated() []apierror.Kind {
	return nil
}
