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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/version"
)

func okHandler(*Context) (any, error) {
	return map[string]any{"ok": true}, nil
}

func TestRegistry_AddAndResolveRoundTrip(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Add(
		GET("orders", version.MustNew(1, 0, version.FollowingMinor), okHandler),
	))

	table, ok := reg.Table("orders")
	require.True(t, ok)

	bucket, ok := table.Resolve(version.Number{Major: 1, Minor: 0})
	require.True(t, ok)

	endpoint := bucket.Endpoint(http.MethodGet)
	assert.Equal(t, http.MethodGet, endpoint.Method())
	assert.Equal(t, "orders", endpoint.Path())
	assert.Equal(t, version.Number{Major: 1, Minor: 0}, endpoint.Version().Number())
}

func TestRegistry_NormalizesLeadingSeparator(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Add(
		GET("/orders", version.MustNew(1, 0, version.Exact), okHandler),
	))

	_, ok := reg.Table("orders")
	assert.True(t, ok)

	// Lookup accepts either form.
	_, ok = reg.Table("/orders")
	assert.True(t, ok)
}

func TestRegistry_AddDefects(t *testing.T) {
	t.Parallel()

	v1 := version.MustNew(1, 0, version.FollowingMinor)

	tests := []struct {
		name     string
		routes   []*Route
		sentinel error
	}{
		{
			name:     "nil handler",
			routes:   []*Route{GET("orders", v1, nil)},
			sentinel: ErrNilHandler,
		},
		{
			name: "duplicate triple",
			routes: []*Route{
				GET("orders", v1, okHandler),
				GET("orders", v1, okHandler),
			},
			sentinel: ErrDuplicateRoute,
		},
		{
			name: "policy conflict on one version",
			routes: []*Route{
				GET("orders", v1, okHandler),
				POST("orders", version.MustNew(1, 0, version.Exact), okHandler),
			},
			sentinel: ErrPolicyConflict,
		},
		{
			name:     "version-shadowed path",
			routes:   []*Route{GET("1.0/orders", v1, okHandler)},
			sentinel: ErrShadowedPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg := NewRegistry()
			err := reg.Add(tt.routes...)
			require.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, apierror.KindInvalidRoute, apierror.KindOf(err))
		})
	}
}

func TestRegistry_UnsupportedMethod(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	route := GET("orders", version.MustNew(1, 0, version.Exact), okHandler)
	route.method = http.MethodHead

	err := reg.Add(route)
	require.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestRegistry_AddAfterFreezeFails(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Add(
		GET("orders", version.MustNew(1, 0, version.Exact), okHandler),
	))

	reg.Freeze()
	require.True(t, reg.Frozen())

	err := reg.Add(GET("users", version.MustNew(1, 0, version.Exact), okHandler))
	require.ErrorIs(t, err, ErrRegistryFrozen)
}

func TestRegistry_MustAddPanicsOnDefect(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	assert.Panics(t, func() {
		reg.MustAdd(GET("orders", version.MustNew(1, 0, version.Exact), nil))
	})
}

func TestRegistry_RoutesListing(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Add(
		POST("orders", version.MustNew(1, 0, version.FollowingMinor), okHandler),
		GET("orders", version.MustNew(1, 0, version.FollowingMinor), okHandler),
		GET("orders", version.MustNew(2, 0, version.Exact), okHandler),
		GET("accounts", version.MustNew(1, 0, version.Exact), okHandler, WithRouteName("list_accounts")),
	))

	infos := reg.Routes()
	require.Len(t, infos, 4)

	// Sorted by path, then version, then method table order.
	assert.Equal(t, RouteInfo{
		Method: http.MethodGet, Path: "accounts", Version: "1.0",
		Policy: "exact", Name: "list_accounts",
	}, infos[0])
	assert.Equal(t, http.MethodGet, infos[1].Method)
	assert.Equal(t, http.MethodPost, infos[2].Method)
	assert.Equal(t, "2.0", infos[3].Version)
	assert.Equal(t, "GET orders@1.0+", infos[1].Name)
}

func TestRouteTable_ResolveHighestMatchWins(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Add(
		GET("things", version.MustNew(1, 0, version.FollowingMinor), okHandler),
		GET("things", version.MustNew(1, 5, version.FollowingMinor), okHandler),
		GET("things", version.MustNew(2, 0, version.Exact), okHandler),
	))

	table, ok := reg.Table("things")
	require.True(t, ok)

	tests := []struct {
		name      string
		requested version.Number
		want      version.Number
		found     bool
	}{
		{name: "both 1.x match, highest wins", requested: version.Number{Major: 1, Minor: 7}, want: version.Number{Major: 1, Minor: 5}, found: true},
		{name: "only the lower 1.x matches", requested: version.Number{Major: 1, Minor: 2}, want: version.Number{Major: 1, Minor: 0}, found: true},
		{name: "exact major two", requested: version.Number{Major: 2, Minor: 0}, want: version.Number{Major: 2, Minor: 0}, found: true},
		{name: "nothing matches", requested: version.Number{Major: 3, Minor: 0}, found: false},
		{name: "below every declaration", requested: version.Number{Major: 0, Minor: 9}, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bucket, ok := table.Resolve(tt.requested)
			if !tt.found {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, bucket.Version().Number())

			// The winner really does serve the requested version.
			assert.True(t, bucket.Version().Matches(tt.requested))
		})
	}
}

func TestRouteTable_ResolveWinnerDominatesEveryCandidate(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Add(
		GET("things", version.MustNew(0, 0, version.FollowingMajorMinor), okHandler),
		GET("things", version.MustNew(1, 0, version.FollowingMinor), okHandler),
		GET("things", version.MustNew(1, 4, version.FollowingMinor), okHandler),
	))

	table, _ := reg.Table("things")
	requested := version.Number{Major: 1, Minor: 9}

	winner, ok := table.Resolve(requested)
	require.True(t, ok)

	for _, b := range table.buckets {
		if b.Version().Matches(requested) {
			assert.GreaterOrEqual(t, winner.Version().Number().Compare(b.Version().Number()), 0)
		}
	}
	assert.Equal(t, version.Number{Major: 1, Minor: 4}, winner.Version().Number())
}

func TestVersionBucket_MethodTable(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Add(
		GET("orders", version.MustNew(1, 0, version.Exact), okHandler),
		DELETE("orders", version.MustNew(1, 0, version.Exact), okHandler),
	))

	table, _ := reg.Table("orders")
	bucket, ok := table.Resolve(version.Number{Major: 1, Minor: 0})
	require.True(t, ok)

	assert.True(t, bucket.Allows(http.MethodGet))
	assert.True(t, bucket.Allows(http.MethodDelete))
	assert.False(t, bucket.Allows(http.MethodPost))

	// Unregistered slots hold the sentinel, never nil.
	assert.Same(t, methodNotAllowed, bucket.Endpoint(http.MethodPost))
	assert.Same(t, methodNotAllowed, bucket.Endpoint(http.MethodHead))

	assert.Equal(t, []string{http.MethodGet, http.MethodDelete}, bucket.AllowedMethods())
}

func TestVersionBucket_CachesGETValidator(t *testing.T) {
	t.Parallel()

	validator := func(*http.Request) (string, time.Time) { return "tag", time.Time{} }

	reg := NewRegistry()
	require.NoError(t, reg.Add(
		GET("orders", version.MustNew(1, 0, version.Exact), okHandler, WithCache(validator)),
	))

	table, _ := reg.Table("orders")
	bucket, _ := table.Resolve(version.Number{Major: 1, Minor: 0})
	require.NotNil(t, bucket.CacheValidator())

	etag, _ := bucket.CacheValidator()(nil)
	assert.Equal(t, "tag", etag)
}

func TestRegistry_FrozenConcurrentResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Add(
		GET("orders", version.MustNew(1, 0, version.FollowingMinor), okHandler),
		GET("orders", version.MustNew(2, 0, version.FollowingMinor), okHandler),
	))
	reg.Freeze()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				table, ok := reg.Table("orders")
				if !ok {
					t.Error("table disappeared")
					return
				}
				if _, ok := table.Resolve(version.Number{Major: 2, Minor: 3}); !ok {
					t.Error("resolve failed under concurrency")
					return
				}
			}
		}()
	}
	wg.Wait()
}
