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
	"net/http"
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/auth"
)

// jwtTolerated is what every policy in this package declares: failed and
// denied credentials are expected traffic, not operator-attention events.
var jwtTolerated = []apierror.Kind{apierror.KindAuthentication, apierror.KindAccess}

func errConsumerInvalid() *apierror.Error {
	return apierror.NewAuthentication("Invalid consumer credentials", apierror.CodeConsumerInvalid)
}

func errTokenInvalid() *apierror.Error {
	return apierror.NewAuthentication("Invalid authentication token", apierror.CodeTokenInvalid)
}

// ConsumerKey authenticates requests by consumer UID and secret key sent
// as HTTP basic auth, checked against the ConsumerStore. On success the
// consumer's IP rules are enforced and its allowed origin is emitted
// during postprocessing.
func ConsumerKey(consumers ConsumerStore) auth.Factory {
	return func() auth.Policy {
		return &consumerKeyPolicy{consumers: consumers}
	}
}

type consumerKeyPolicy struct {
	consumers ConsumerStore

	// set by a successful Authenticate, read by Postprocess
	origin origin
}

func (p *consumerKeyPolicy) Authenticate(r *http.Request) (auth.Identity, error) {
	username, key, ok := r.BasicAuth()
	if !ok {
		return nil, errConsumerInvalid()
	}

	uid, err := uuid.Parse(username)
	if err != nil {
		return nil, errConsumerInvalid()
	}

	consumer, err := p.consumers.Consumer(r.Context(), uid)
	if err != nil || !consumer.CheckKey(key) {
		return nil, errConsumerInvalid()
	}

	if err := consumer.CheckRules(r); err != nil {
		return nil, err
	}

	p.origin.set(consumer.AllowedOrigin)
	return &ConsumerIdentity{consumer: consumer}, nil
}

func (p *consumerKeyPolicy) Postprocess(r *http.Request, header http.Header) {
	p.origin.apply(header)
}

func (p *consumerKeyPolicy) Tolerated() []apierror.Kind {
	return jwtTolerated
}

// ConsumerToken authenticates bearer tokens with the consumer audience.
// The token's jti must resolve to a live record in the TokenStore and its
// subject to a consumer, whose IP rules are then enforced.
func ConsumerToken(signer *Signer, tokens TokenStore, consumers ConsumerStore) auth.Factory {
	return func() auth.Policy {
		return &consumerTokenPolicy{signer: signer, tokens: tokens, consumers: consumers}
	}
}

type consumerTokenPolicy struct {
	signer    *Signer
	tokens    TokenStore
	consumers ConsumerStore

	origin origin
}

func (p *consumerTokenPolicy) Authenticate(r *http.Request) (auth.Identity, error) {
	claims, err := p.signer.VerifyRequest(r, AudienceConsumer)
	if err != nil {
		return nil, err
	}

	token, err := resolveToken(r, p.tokens, claims)
	if err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(token.Subject)
	if err != nil {
		return nil, errTokenInvalid()
	}
	consumer, err := p.consumers.Consumer(r.Context(), uid)
	if err != nil {
		return nil, errTokenInvalid()
	}

	if err := consumer.CheckRules(r); err != nil {
		return nil, err
	}

	p.origin.set(consumer.AllowedOrigin)
	return &ConsumerIdentity{consumer: consumer}, nil
}

func (p *consumerTokenPolicy) Postprocess(r *http.Request, header http.Header) {
	p.origin.apply(header)
}

func (p *consumerTokenPolicy) Tolerated() []apierror.Kind {
	return jwtTolerated
}

// User authenticates bearer tokens carrying either user audience. The
// token's jti must resolve through the TokenStore and its subject through
// the UserStore.
func User(signer *Signer, tokens TokenStore, users UserStore) auth.Factory {
	return userPolicyFactory(signer, tokens, users, "")
}

// UserStrong is User pinned to the strong audience.
func UserStrong(signer *Signer, tokens TokenStore, users UserStore) auth.Factory {
	return userPolicyFactory(signer, tokens, users, AudienceUserStrong)
}

// UserWeak is User pinned to the weak audience.
func UserWeak(signer *Signer, tokens TokenStore, users UserStore) auth.Factory {
	return userPolicyFactory(signer, tokens, users, AudienceUserWeak)
}

func userPolicyFactory(signer *Signer, tokens TokenStore, users UserStore, audience string) auth.Factory {
	return func() auth.Policy {
		return &userTokenPolicy{signer: signer, tokens: tokens, users: users, audience: audience}
	}
}

type userTokenPolicy struct {
	signer   *Signer
	tokens   TokenStore
	users    UserStore
	audience string
}

func (p *userTokenPolicy) Authenticate(r *http.Request) (auth.Identity, error) {
	claims, err := p.signer.VerifyRequest(r, p.audience)
	if err != nil {
		return nil, err
	}

	// Unpinned: the token must still carry one of the user audiences, so
	// a consumer token never authenticates as a user.
	if p.audience == "" {
		audiences, err := claims.GetAudience()
		if err != nil || !containsAny(audiences, AudienceUserWeak, AudienceUserStrong) {
			return nil, errTokenInvalid()
		}
	}

	token, err := resolveToken(r, p.tokens, claims)
	if err != nil {
		return nil, err
	}

	identity, err := p.users.User(r.Context(), token.Subject)
	if err != nil {
		return nil, errTokenInvalid()
	}
	return identity, nil
}

func (p *userTokenPolicy) Postprocess(*http.Request, http.Header) {}

func (p *userTokenPolicy) Tolerated() []apierror.Kind {
	return jwtTolerated
}

// resolveToken looks the verified jti claim up in the token store. A
// missing claim or record means the token was revoked or never issued.
func resolveToken(r *http.Request, tokens TokenStore, claims jwt.MapClaims) (*Token, error) {
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return nil, errTokenInvalid()
	}
	token, err := tokens.Token(r.Context(), jti)
	if err != nil {
		return nil, errTokenInvalid()
	}
	return token, nil
}

func containsAny(haystack []string, needles ...string) bool {
	for _, n := range needles {
		if slices.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// origin carries a consumer's allowed origin from Authenticate to
// Postprocess within one policy instance.
type origin struct {
	value string
	ok    bool
}

func (o *origin) set(value string) {
	o.value = value
	o.ok = true
}

// apply emits the origin and marks responses as origin-dependent for
// caches. Nothing happens before a successful Authenticate.
func (o *origin) apply(header http.Header) {
	if !o.ok || o.value == "" {
		return
	}
	header.Set("Access-Control-Allow-Origin", o.value)
	header.Add("Vary", "Origin")
}
