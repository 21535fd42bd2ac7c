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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/auth"
)

type fixture struct {
	signer    *Signer
	consumers *MemoryConsumers
	tokens    *MemoryTokens
	users     *MemoryUsers
	consumer  *Consumer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hash, err := HashKey("the-consumer-key")
	require.NoError(t, err)

	consumer := &Consumer{
		UID:           uuid.New(),
		KeyHash:       hash,
		Subject:       "service-account",
		AllowedOrigin: "https://acme.example.com",
	}

	consumers := NewMemoryConsumers()
	consumers.Put(consumer)

	users := NewMemoryUsers()
	users.Put("jane", "janes-password")

	return &fixture{
		signer:    NewSigner(testSettings(t)),
		consumers: consumers,
		tokens:    NewMemoryTokens(),
		users:     users,
		consumer:  consumer,
	}
}

// issueToken mints, stores, and signs a token for the fixture.
func (f *fixture) issueToken(t *testing.T, subject, audience string, ttl time.Duration) string {
	t.Helper()

	token := mustToken(t, subject, audience, ttl)
	require.NoError(t, f.tokens.Save(context.Background(), token))
	signed, _, err := f.signer.Sign(token)
	require.NoError(t, err)
	return signed
}

func bearerRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/1.0/auth/consumer", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func assertAuthCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, code, apiErr.Code())
}

func TestConsumerKeyPolicy(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	factory := ConsumerKey(f.consumers)

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		policy := factory()
		req := httptest.NewRequest(http.MethodGet, "/1.0/things", nil)
		req.SetBasicAuth(f.consumer.UID.String(), "the-consumer-key")

		identity, err := policy.Authenticate(req)
		require.NoError(t, err)
		assert.Equal(t, f.consumer.UID.String(), identity.Principal())

		// Postprocess emits the consumer's origin and varies on it.
		header := make(http.Header)
		policy.Postprocess(req, header)
		assert.Equal(t, "https://acme.example.com", header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", header.Get("Vary"))
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()

		policy := factory()
		req := httptest.NewRequest(http.MethodGet, "/1.0/things", nil)
		req.SetBasicAuth(f.consumer.UID.String(), "wrong")

		_, err := policy.Authenticate(req)
		require.Error(t, err)
		assertAuthCode(t, err, apierror.CodeConsumerInvalid)
	})

	t.Run("unknown uid", func(t *testing.T) {
		t.Parallel()

		policy := factory()
		req := httptest.NewRequest(http.MethodGet, "/1.0/things", nil)
		req.SetBasicAuth(uuid.NewString(), "the-consumer-key")

		_, err := policy.Authenticate(req)
		assertAuthCode(t, err, apierror.CodeConsumerInvalid)
	})

	t.Run("missing basic auth", func(t *testing.T) {
		t.Parallel()

		policy := factory()
		req := httptest.NewRequest(http.MethodGet, "/1.0/things", nil)

		_, err := policy.Authenticate(req)
		assertAuthCode(t, err, apierror.CodeConsumerInvalid)

		// No successful authentication, no origin leak.
		header := make(http.Header)
		policy.Postprocess(req, header)
		assert.Empty(t, header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("tolerates auth and access failures", func(t *testing.T) {
		t.Parallel()

		assert.ElementsMatch(t,
			[]apierror.Kind{apierror.KindAuthentication, apierror.KindAccess},
			factory().Tolerated())
	})
}

func TestConsumerKeyPolicy_IPRules(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.consumer.RulesActive = true
	f.consumer.Rules = []IPRule{MustParseIPRule("10.0.0.0/8", Deny)}

	policy := ConsumerKey(f.consumers)()
	req := httptest.NewRequest(http.MethodGet, "/1.0/things", nil)
	req.SetBasicAuth(f.consumer.UID.String(), "the-consumer-key")
	req.RemoteAddr = "10.1.2.3:4711"

	_, err := policy.Authenticate(req)
	require.Error(t, err)
	assert.Equal(t, apierror.KindAccess, apierror.KindOf(err))
}

func TestConsumerTokenPolicy(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	factory := ConsumerToken(f.signer, f.tokens, f.consumers)

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()

		signed := f.issueToken(t, f.consumer.UID.String(), AudienceConsumer, time.Hour)
		policy := factory()

		identity, err := policy.Authenticate(bearerRequest(signed))
		require.NoError(t, err)

		consumerIdentity, ok := identity.(*ConsumerIdentity)
		require.True(t, ok)
		assert.Equal(t, f.consumer, consumerIdentity.Consumer())

		header := make(http.Header)
		policy.Postprocess(bearerRequest(signed), header)
		assert.Equal(t, "https://acme.example.com", header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("revoked token", func(t *testing.T) {
		t.Parallel()

		signed := f.issueToken(t, f.consumer.UID.String(), AudienceConsumer, time.Hour)

		// Revocation: the JWT still verifies, the record is gone.
		claims, err := f.signer.Verify(signed, AudienceConsumer)
		require.NoError(t, err)
		f.tokens.Revoke(claims["jti"].(string))

		_, err = factory().Authenticate(bearerRequest(signed))
		require.Error(t, err)
		assertAuthCode(t, err, apierror.CodeTokenInvalid)
	})

	t.Run("user token rejected", func(t *testing.T) {
		t.Parallel()

		signed := f.issueToken(t, "jane", AudienceUserWeak, time.Hour)

		_, err := factory().Authenticate(bearerRequest(signed))
		require.Error(t, err)
		assertAuthCode(t, err, apierror.CodeTokenInvalid)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		signed := f.issueToken(t, f.consumer.UID.String(), AudienceConsumer, -time.Minute)

		_, err := factory().Authenticate(bearerRequest(signed))
		require.Error(t, err)
		assertAuthCode(t, err, apierror.CodeSessionExpired)
	})

	t.Run("subject without consumer record", func(t *testing.T) {
		t.Parallel()

		signed := f.issueToken(t, uuid.NewString(), AudienceConsumer, time.Hour)

		_, err := factory().Authenticate(bearerRequest(signed))
		require.Error(t, err)
		assertAuthCode(t, err, apierror.CodeTokenInvalid)
	})
}

func TestUserTokenPolicies(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	weak := f.issueToken(t, "jane", AudienceUserWeak, time.Hour)
	strong := f.issueToken(t, "jane", AudienceUserStrong, time.Hour)
	consumerToken := f.issueToken(t, f.consumer.UID.String(), AudienceConsumer, time.Hour)

	tests := []struct {
		name   string
		policy string
		token  string
		wantOK bool
	}{
		{name: "user accepts weak", policy: "user", token: weak, wantOK: true},
		{name: "user accepts strong", policy: "user", token: strong, wantOK: true},
		{name: "user rejects consumer audience", policy: "user", token: consumerToken},
		{name: "strong accepts strong", policy: "strong", token: strong, wantOK: true},
		{name: "strong rejects weak", policy: "strong", token: weak},
		{name: "weak accepts weak", policy: "weak", token: weak, wantOK: true},
		{name: "weak rejects strong", policy: "weak", token: strong},
	}

	factories := map[string]auth.Factory{
		"user":   User(f.signer, f.tokens, f.users),
		"strong": UserStrong(f.signer, f.tokens, f.users),
		"weak":   UserWeak(f.signer, f.tokens, f.users),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			identity, err := factories[tt.policy]().Authenticate(bearerRequest(tt.token))
			if !tt.wantOK {
				require.Error(t, err)
				assertAuthCode(t, err, apierror.CodeTokenInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "jane", identity.Principal())
		})
	}
}

func TestUserTokenPolicy_UnknownSubject(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	signed := f.issueToken(t, "nobody", AudienceUserWeak, time.Hour)

	_, err := User(f.signer, f.tokens, f.users)().Authenticate(bearerRequest(signed))
	require.Error(t, err)
	assertAuthCode(t, err, apierror.CodeTokenInvalid)
}
