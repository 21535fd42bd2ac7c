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

package jsonrest_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"rivaas.dev/jsonrest"
	"rivaas.dev/jsonrest/version"
)

// ExampleNew demonstrates registering a versioned endpoint and dispatching
// a request to it.
func ExampleNew() {
	reg := jsonrest.NewRegistry()
	reg.MustAdd(
		jsonrest.GET("greeting", version.MustNew(1, 0, version.FollowingMinor),
			func(c *jsonrest.Context) (any, error) {
				return map[string]any{"greeting": "hello"}, nil
			}),
	)

	d := jsonrest.MustNew(reg)

	req := httptest.NewRequest(http.MethodGet, "/1.5/greeting", nil)
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)

	fmt.Println(rec.Code)
	fmt.Println(rec.Body.String())
	// Output:
	// 200
	// {"data":{"greeting":"hello"}}
}

// ExampleInfoRoute demonstrates the conventional application metadata
// endpoint served at the bare version segment.
func ExampleInfoRoute() {
	reg := jsonrest.NewRegistry()
	reg.MustAdd(jsonrest.InfoRoute(jsonrest.AppInfo{
		Name:    "orders",
		Author:  "Rivaas",
		Version: "1.0.0",
	}))

	d := jsonrest.MustNew(reg)

	req := httptest.NewRequest(http.MethodGet, "/0.0", nil)
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, req)

	fmt.Println(rec.Body.String())
	// Output:
	// {"data":{"author":"Rivaas","name":"orders","version":"1.0.0"}}
}

// ExampleRegistry_Routes demonstrates listing every registration for
// startup logs.
func ExampleRegistry_Routes() {
	reg := jsonrest.NewRegistry()
	reg.MustAdd(
		jsonrest.GET("orders", version.MustNew(1, 0, version.FollowingMinor),
			func(c *jsonrest.Context) (any, error) { return nil, nil }),
		jsonrest.POST("orders", version.MustNew(1, 0, version.FollowingMinor),
			func(c *jsonrest.Context) (any, error) { return nil, nil }),
	)

	for _, info := range reg.Routes() {
		fmt.Printf("%s %s@%s (%s)\n", info.Method, info.Path, info.Version, info.Policy)
	}
	// Output:
	// GET orders@1.0 (following_minor)
	// POST orders@1.0 (following_minor)
}
