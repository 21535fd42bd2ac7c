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

// Package jsonrest routes versioned JSON API requests to the handler
// registered for the requested path, version, and HTTP method.
//
// Endpoints are registered as Route descriptors into a Registry during the
// application's startup phase. Each registration binds one handler to a
// (path, declared version, method) triple, where the declared version.Spec
// decides which requested versions the endpoint serves. A Dispatcher wraps
// the frozen Registry as an http.Handler:
//
//	reg := jsonrest.NewRegistry()
//	reg.MustAdd(
//	    jsonrest.InfoRoute(jsonrest.AppInfo{Name: "orders", Version: "1.0.0"}),
//	    jsonrest.GET("orders", version.MustNew(1, 0, version.FollowingMinor), listOrders),
//	    jsonrest.POST("orders", version.MustNew(1, 0, version.FollowingMinor), createOrder,
//	        jsonrest.WithRouteAuth(consumerAuth),
//	    ),
//	)
//
//	d := jsonrest.MustNew(reg, jsonrest.WithLogger(logger))
//	http.ListenAndServe(":8080", d)
//
// Requests address an endpoint as /<version>/<path>, for example
// /1.5/orders. The first URL segment must match major.minor with a one or
// two digit minor; among all declared versions whose match policy covers
// the requested one, the highest declared version wins.
//
// Each request runs through a fixed pipeline: resolve the endpoint,
// authenticate through the endpoint's auth.Policy, decode the JSON body,
// check conditional-GET validators, invoke the handler, and encode the
// result into the {"data": ...} envelope. Every failure at any stage
// renders as a structured JSON error body through the apierror taxonomy;
// nothing escapes as a bare transport error.
//
// Registration defects — duplicate registrations, conflicting match
// policies, malformed version literals — fail at startup, never at request
// time. After the Dispatcher freezes the Registry, all routing state is
// immutable and served lock-free to concurrent requests.
package jsonrest
