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

	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/auth"
	"rivaas.dev/jsonrest/version"
)

// Route is an inert registration descriptor produced by the method builders.
// Nothing happens until it is passed to Registry.Add, which validates it and
// materializes the MethodEndpoint.
//
// Example:
//
//	reg := jsonrest.NewRegistry()
//	err := reg.Add(
//	    jsonrest.GET("orders", version.MustNew(1, 0, version.FollowingMinor), listOrders),
//	    jsonrest.POST("orders", version.MustNew(1, 0, version.FollowingMinor), createOrder,
//	        jsonrest.WithRouteAuth(consumerAuth),
//	    ),
//	)
type Route struct {
	method    string
	path      string
	version   version.Spec
	handler   HandlerFunc
	auth      auth.Factory
	cache     CacheValidator
	tolerated []apierror.Kind
	name      string
}

// RouteOption adjusts a Route descriptor at build time.
type RouteOption func(*Route)

// WithRouteAuth sets the endpoint's authentication factory. Routes without
// it are public.
func WithRouteAuth(factory auth.Factory) RouteOption {
	return func(r *Route) {
		r.auth = factory
	}
}

// WithCache attaches a conditional-GET validator. Only meaningful on GET
// routes; the bucket serves it for If-None-Match / If-Modified-Since checks.
func WithCache(validator CacheValidator) RouteOption {
	return func(r *Route) {
		r.cache = validator
	}
}

// WithTolerated declares error kinds this endpoint produces during normal
// operation. Tolerated failures log at warning instead of error severity.
func WithTolerated(kinds ...apierror.Kind) RouteOption {
	return func(r *Route) {
		r.tolerated = kinds
	}
}

// WithRouteName overrides the generated endpoint name used in logs and
// route listings.
func WithRouteName(name string) RouteOption {
	return func(r *Route) {
		r.name = name
	}
}

// GET builds a GET route descriptor for the path and declared version.
func GET(path string, v version.Spec, handler HandlerFunc, opts ...RouteOption) *Route {
	return newRoute(http.MethodGet, path, v, handler, opts)
}

// POST builds a POST route descriptor.
func POST(path string, v version.Spec, handler HandlerFunc, opts ...RouteOption) *Route {
	return newRoute(http.MethodPost, path, v, handler, opts)
}

// PUT builds a PUT route descriptor.
func PUT(path string, v version.Spec, handler HandlerFunc, opts ...RouteOption) *Route {
	return newRoute(http.MethodPut, path, v, handler, opts)
}

// PATCH builds a PATCH route descriptor.
func PATCH(path string, v version.Spec, handler HandlerFunc, opts ...RouteOption) *Route {
	return newRoute(http.MethodPatch, path, v, handler, opts)
}

// DELETE builds a DELETE route descriptor.
func DELETE(path string, v version.Spec, handler HandlerFunc, opts ...RouteOption) *Route {
	return newRoute(http.MethodDelete, path, v, handler, opts)
}

func newRoute(method, path string, v version.Spec, handler HandlerFunc, opts []RouteOption) *Route {
	r := &Route{
		method:  method,
		path:    path,
		version: v,
		handler: handler,
		auth:    auth.Public,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AppInfo describes the application served by the info route.
type AppInfo struct {
	Name    string
	Author  string
	Version string
}

// InfoRoute builds the conventional root endpoint: GET "" at version 0.0
// with FollowingMajorMinor, publicly answering the application metadata as
// {"name": ..., "author": ..., "version": ...}.
func InfoRoute(info AppInfo) *Route {
	return GET("", version.MustNew(0, 0, version.FollowingMajorMinor),
		func(*Context) (any, error) {
			return map[string]any{
				"name":    info.Name,
				"author":  info.Author,
				"version": info.Version,
			}, nil
		},
		WithRouteName("app_info"),
	)
}
