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

// Package version models declared API versions and the policies that decide
// which requested versions they serve.
//
// A Number is the (major, minor) pair a client requests through the URL, for
// example "1.5". A Spec is what an endpoint declares at registration time: a
// Number plus a MatchPolicy that widens or pins the set of requested versions
// the endpoint accepts:
//
//   - Exact: serves exactly the declared version
//   - FollowingMinor: serves the declared minor and every later minor of the
//     same major
//   - FollowingMajorMinor: additionally serves every later major
//
// Minors are integers between 0 and 99 (two decimal digits on the wire), and
// versions order lexicographically on (major, minor). Specs are built through
// New or FromFloat, which validate at registration time so malformed version
// literals fail startup instead of requests.
package version
