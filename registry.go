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
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/version"
)

// Registry maps paths to their route tables. It is populated during the
// application's startup discovery phase and frozen before traffic arrives;
// after that every read is lock-free.
//
// Population is single-threaded: Add is not safe for concurrent use, Freeze
// publishes the registry for concurrent readers.
type Registry struct {
	tables map[string]*RouteTable
	frozen atomic.Bool
}

// NewRegistry creates an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{
		tables: make(map[string]*RouteTable),
	}
}

// Add validates and registers the given route descriptors. The first defect
// aborts with an InvalidRoute-kind error: nil handler, unsupported method,
// version-shadowed path, duplicate (path, version, method) triple, or a
// match-policy conflict. Adding to a frozen registry always fails.
func (reg *Registry) Add(routes ...*Route) error {
	if reg.frozen.Load() {
		return apierror.Wrap(ErrRegistryFrozen, apierror.KindInvalidRoute,
			"routes must be registered before the registry serves traffic")
	}

	for _, r := range routes {
		if err := reg.add(r); err != nil {
			return err
		}
	}
	return nil
}

// MustAdd is Add for startup registration blocks; it panics on the first
// registration defect.
func (reg *Registry) MustAdd(routes ...*Route) {
	if err := reg.Add(routes...); err != nil {
		panic(fmt.Sprintf("jsonrest: %v", err))
	}
}

func (reg *Registry) add(r *Route) error {
	if r.handler == nil {
		return apierror.Wrap(ErrNilHandler, apierror.KindInvalidRoute,
			fmt.Sprintf("%s %s@%s has no handler", r.method, r.path, r.version))
	}

	path := normalizePath(r.path)
	if err := validatePath(path); err != nil {
		return err
	}

	name := r.name
	if name == "" {
		name = r.method + " " + path + "@" + r.version.String()
	}

	table, ok := reg.tables[path]
	if !ok {
		table = newRouteTable(path)
		reg.tables[path] = table
	}

	bucket, err := table.bucket(r.version)
	if err != nil {
		return err
	}

	return bucket.add(&MethodEndpoint{
		method:    r.method,
		path:      path,
		version:   r.version,
		handler:   r.handler,
		auth:      r.auth,
		cache:     r.cache,
		tolerated: slices.Clone(r.tolerated),
		name:      name,
	})
}

// Freeze flips the registry read-only. It is idempotent and must happen
// before the registry is shared with concurrent readers; Dispatcher
// construction calls it.
func (reg *Registry) Freeze() {
	reg.frozen.Store(true)
}

// Frozen reports whether the registry has been frozen.
func (reg *Registry) Frozen() bool {
	return reg.frozen.Load()
}

// Table returns the route table registered for the normalized path.
func (reg *Registry) Table(path string) (*RouteTable, bool) {
	t, ok := reg.tables[normalizePath(path)]
	return t, ok
}

// RouteInfo describes one registration, for startup logs and diagnostics.
type RouteInfo struct {
	Method  string
	Path    string
	Version string
	Policy  string
	Name    string
}

// Routes lists every registration sorted by path, declared version, and
// method table order.
func (reg *Registry) Routes() []RouteInfo {
	type entry struct {
		info        RouteInfo
		number      version.Number
		methodIndex int
	}

	var entries []entry
	for path, table := range reg.tables {
		for number, bucket := range table.buckets {
			for i, method := range supportedMethods {
				if !bucket.Allows(method) {
					continue
				}
				e := bucket.Endpoint(method)
				entries = append(entries, entry{
					info: RouteInfo{
						Method:  method,
						Path:    path,
						Version: number.String(),
						Policy:  bucket.version.Policy().String(),
						Name:    e.name,
					},
					number:      number,
					methodIndex: i,
				})
			}
		}
	}

	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.info.Path, b.info.Path); c != 0 {
			return c
		}
		if c := a.number.Compare(b.number); c != 0 {
			return c
		}
		return cmp.Compare(a.methodIndex, b.methodIndex)
	})

	infos := make([]RouteInfo, len(entries))
	for i, e := range entries {
		infos[i] = e.info
	}
	return infos
}

// normalizePath strips one leading separator; registration and resolution
// both use the stripped form.
func normalizePath(path string) string {
	return strings.TrimPrefix(path, "/")
}

// validatePath rejects paths whose first segment would be consumed as the
// requested version during resolution.
func validatePath(path string) error {
	first := path
	if i := strings.IndexByte(path, '/'); i >= 0 {
		first = path[:i]
	}
	if _, err := version.ParseNumber(first); err == nil {
		return apierror.Wrap(ErrShadowedPath, apierror.KindInvalidRoute,
			fmt.Sprintf("path %q starts with %q, which resolution reads as the requested version", path, first))
	}
	return nil
}
