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

// Package jwtauth provides JWT-based authentication policies for jsonrest
// endpoints: consumer key credentials, consumer bearer tokens, and user
// bearer tokens in weak and strong flavors.
//
// Tokens are signed JWTs whose jti claim references a Token record kept in
// a TokenStore, so individual tokens can be revoked by deleting the record.
// Consumers are machine clients identified by a UUID and a secret key; each
// carries an allowed CORS origin and optional IP rules. Users are resolved
// through a UserStore collaborator, keeping account storage external.
//
// The Signer loads PEM-encoded keys from the configured files on first use
// and maps verification failures to the authentication taxonomy: expired
// tokens fail with code "session_expired", everything else with
// "token_invalid".
//
// Routes returns the ready-made token-issuing endpoints (POST auth/consumer,
// GET auth/consumer, POST auth/user, GET auth/user), all declared at version
// 0.0 with the FollowingMajorMinor policy.
package jwtauth
