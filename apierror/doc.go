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

// Package apierror defines the error taxonomy of the jsonrest dispatch
// pipeline and the formatting of errors into HTTP responses.
//
// Every failure a dispatched request can produce is classified by a Kind
// with a fixed default status code:
//
//   - KindRequest (400): malformed or missing required request data
//   - KindEncoding (400): request body is not valid structured data
//   - KindAuthentication (401): credentials or tokens invalid, expired, missing
//   - KindAccess (403): an authorization rule denied the request
//   - KindConfiguration (500): missing or broken server-side configuration
//   - KindInvalidRoute: a registration defect, caught at startup and never
//     rendered to clients
//
// Authentication errors additionally carry a machine-readable code
// (CodeSessionExpired, CodeTokenInvalid, CodeConsumerInvalid) so clients can
// react without parsing human-readable text.
//
// The Formatter interface converts any error into HTTP response components.
// The JSON formatter renders the wire contract used by the dispatcher:
//
//	{"message": "Session expired", "code": "session_expired"}
//
// Server-side failures (status 500 and above, including unclassified errors)
// are masked: the response body never exposes internal detail.
package apierror
