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

import "errors"

// Registration errors returned by Registry.Add and the route builders. All
// of them surface wrapped in an InvalidRoute-kind *apierror.Error, so both
// errors.Is against the sentinel and apierror.KindOf work.
var (
	// ErrNilRegistry is returned by New when no registry is provided.
	ErrNilRegistry = errors.New("registry is nil")

	// ErrRegistryFrozen is returned by Add once the registry serves traffic.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrNilHandler is returned when a route carries no handler.
	ErrNilHandler = errors.New("route handler is nil")

	// ErrUnsupportedMethod is returned for methods outside
	// GET/POST/PUT/PATCH/DELETE.
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")

	// ErrDuplicateRoute is returned when a (path, version, method) triple
	// is registered twice.
	ErrDuplicateRoute = errors.New("route already registered")

	// ErrPolicyConflict is returned when one (path, version) pair is
	// registered under two different match policies.
	ErrPolicyConflict = errors.New("conflicting match policy for version")

	// ErrShadowedPath is returned when a path starts with a version-like
	// segment, which request resolution would consume as the version.
	ErrShadowedPath = errors.New("path starts with a version-like segment")
)
