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

	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/version"
)

// RouteTable holds every version bucket registered under one path, keyed by
// declared version number. Numbers are unique within a table, so resolution
// always produces exactly one winner.
type RouteTable struct {
	path    string
	buckets map[version.Number]*VersionBucket
}

func newRouteTable(path string) *RouteTable {
	return &RouteTable{
		path:    path,
		buckets: make(map[version.Number]*VersionBucket),
	}
}

// Path returns the table's normalized path.
func (t *RouteTable) Path() string {
	return t.path
}

// Resolve picks the bucket serving the requested version: among all buckets
// whose declared spec matches, the highest declared (major, minor) wins.
// The second return is false when no declared version matches, which the
// dispatcher maps to the not-found responder.
func (t *RouteTable) Resolve(requested version.Number) (*VersionBucket, bool) {
	var winner *VersionBucket
	for _, b := range t.buckets {
		if !b.version.Matches(requested) {
			continue
		}
		if winner == nil || b.version.Number().Compare(winner.version.Number()) > 0 {
			winner = b
		}
	}
	if winner == nil {
		return nil, false
	}
	return winner, true
}

// bucket returns the bucket for the declared spec, creating it on first
// registration. Re-declaring a version number under a different match
// policy is a registration defect.
func (t *RouteTable) bucket(v version.Spec) (*VersionBucket, error) {
	if b, ok := t.buckets[v.Number()]; ok {
		if b.version.Policy() != v.Policy() {
			return nil, apierror.Wrap(ErrPolicyConflict, apierror.KindInvalidRoute,
				fmt.Sprintf("path %q version %s is declared %s, cannot redeclare as %s",
					t.path, v.Number(), b.version.Policy(), v.Policy()))
		}
		return b, nil
	}

	b := newVersionBucket(t.path, v)
	t.buckets[v.Number()] = b
	return b, nil
}
