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

package jwtauth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"rivaas.dev/jsonrest/apierror"
)

// Token audiences. The audience pins what a token is good for and which
// policy accepts it.
const (
	// AudienceConsumer marks tokens issued to machine consumers.
	AudienceConsumer = "consumer"

	// AudienceUserWeak marks long-lived user session tokens.
	AudienceUserWeak = "user_weak"

	// AudienceUserStrong marks short-lived user tokens gating sensitive
	// operations.
	AudienceUserStrong = "user_strong"
)

// Token is the persisted record behind an issued JWT. The ID doubles as
// the jti claim: verification resolves the claim through a TokenStore, so
// deleting the record revokes the token before its expiry.
type Token struct {
	// ID is a 64-character random hex string, the JWT jti.
	ID string

	// IssuedAt is when the token was created.
	IssuedAt time.Time

	// ExpireAt is when the token stops verifying.
	ExpireAt time.Time

	// Subject identifies the token holder: a consumer UID or a user
	// subject.
	Subject string

	// Audience is one of the Audience constants.
	Audience string
}

// NewToken mints a token record with a fresh random ID expiring after ttl.
func NewToken(subject, audience string, ttl time.Duration) (*Token, error) {
	id, err := generateTokenID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Token{
		ID:       id,
		IssuedAt: now,
		ExpireAt: now.Add(ttl),
		Subject:  subject,
		Audience: audience,
	}, nil
}

// Expired reports whether the record itself has passed its expiry,
// independent of JWT verification.
func (t *Token) Expired() bool {
	return !t.ExpireAt.IsZero() && time.Now().After(t.ExpireAt)
}

// generateTokenID returns 32 random bytes as 64 hex characters.
func generateTokenID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", apierror.Wrap(err, apierror.KindConfiguration, "token id generation failed")
	}
	return hex.EncodeToString(buf), nil
}
