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

// Package auth defines how endpoints authenticate requests.
//
// A Policy inspects one request and either produces an Identity or fails
// with an Authentication or Access error from the apierror taxonomy. After
// the response payload is produced, the policy gets a Postprocess call to
// adjust response headers, which is how a consumer-scoped CORS origin
// replaces the default one.
//
// Endpoints hold a Factory rather than a Policy: some policies remember
// which sub-policy authenticated the request, so a fresh instance is built
// per request and never shared.
//
// Public admits every request as Anonymous. Hybrid combines factories, with
// the OR operator trying them in declared order until one succeeds.
// Credential-checking policies live in subpackages such as jwtauth.
package auth
