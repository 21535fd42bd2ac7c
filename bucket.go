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
	"net/http"

	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/version"
)

// supportedMethods is the fixed method table order, also used for the Allow
// header on 405 responses.
var supportedMethods = [...]string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// VersionBucket holds the endpoints of one (path, declared version) pair as
// a fixed five-slot method table. Unregistered slots point at the built-in
// method-not-allowed endpoint, never nil.
//
// The bucket caches its GET endpoint's cache validator so the dispatcher's
// conditional-GET check needs no method lookup.
type VersionBucket struct {
	path    string
	version version.Spec

	get    *MethodEndpoint
	post   *MethodEndpoint
	put    *MethodEndpoint
	patch  *MethodEndpoint
	delete *MethodEndpoint

	cache CacheValidator
}

func newVersionBucket(path string, v version.Spec) *VersionBucket {
	return &VersionBucket{
		path:    path,
		version: v,
		get:     methodNotAllowed,
		post:    methodNotAllowed,
		put:     methodNotAllowed,
		patch:   methodNotAllowed,
		delete:  methodNotAllowed,
	}
}

// Path returns the bucket's normalized path.
func (b *VersionBucket) Path() string {
	return b.path
}

// Version returns the declared version spec shared by all endpoints in the
// bucket.
func (b *VersionBucket) Version() version.Spec {
	return b.version
}

// Endpoint returns the endpoint registered for the method. Unregistered or
// unsupported methods return the method-not-allowed endpoint, so the result
// is never nil.
func (b *VersionBucket) Endpoint(method string) *MethodEndpoint {
	switch method {
	case http.MethodGet:
		return b.get
	case http.MethodPost:
		return b.post
	case http.MethodPut:
		return b.put
	case http.MethodPatch:
		return b.patch
	case http.MethodDelete:
		return b.delete
	default:
		return methodNotAllowed
	}
}

// Allows reports whether a handler is registered for the method.
func (b *VersionBucket) Allows(method string) bool {
	return b.Endpoint(method) != methodNotAllowed
}

// AllowedMethods lists the registered methods in table order, as rendered
// into the Allow header of 405 responses.
func (b *VersionBucket) AllowedMethods() []string {
	methods := make([]string, 0, len(supportedMethods))
	for _, m := range supportedMethods {
		if b.Allows(m) {
			methods = append(methods, m)
		}
	}
	return methods
}

// CacheValidator returns the validator cached from the GET endpoint, or nil.
func (b *VersionBucket) CacheValidator() CacheValidator {
	return b.cache
}

func (b *VersionBucket) slot(method string) **MethodEndpoint {
	switch method {
	case http.MethodGet:
		return &b.get
	case http.MethodPost:
		return &b.post
	case http.MethodPut:
		return &b.put
	case http.MethodPatch:
		return &b.patch
	case http.MethodDelete:
		return &b.delete
	default:
		return nil
	}
}

// add places the endpoint into its method slot. Occupied slots are a
// registration defect.
func (b *VersionBucket) add(e *MethodEndpoint) error {
	slot := b.slot(e.method)
	if slot == nil {
		return apierror.Wrap(ErrUnsupportedMethod, apierror.KindInvalidRoute,
			fmt.Sprintf("method %s is not dispatchable", e.method))
	}
	if *slot != methodNotAllowed {
		return apierror.Wrap(ErrDuplicateRoute, apierror.KindInvalidRoute,
			fmt.Sprintf("%s is already registered", e))
	}

	*slot = e
	if e.method == http.MethodGet {
		b.cache = e.cache
	}
	return nil
}
