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
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rivaas.dev/jsonrest/apierror"
)

// Signer signs token records into JWTs and verifies presented ones. Keys
// are loaded lazily from the configured PEM files, so a verify-only
// deployment never needs the private key and a missing key file surfaces
// as a Configuration-kind error on first use, not at startup.
//
// A Signer is safe for concurrent use.
type Signer struct {
	settings Settings

	mu      sync.Mutex
	private any
	public  any
}

// NewSigner creates a Signer over the given settings.
func NewSigner(settings Settings) *Signer {
	return &Signer{settings: settings}
}

// Settings returns the signer's configuration.
func (s *Signer) Settings() Settings {
	return s.settings
}

// Sign encodes the token record as a signed JWT and returns it together
// with the claims it carries. The exp claim prefers the record's ExpireAt
// and falls back to the default token lifetime.
func (s *Signer) Sign(t *Token) (string, jwt.MapClaims, error) {
	method := jwt.GetSigningMethod(s.settings.Algorithm)
	if method == nil {
		return "", nil, apierror.NewConfiguration(
			fmt.Sprintf("unknown jwt signing algorithm %q", s.settings.Algorithm))
	}

	key, err := s.privateKey()
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	expire := now.Add(s.settings.DefaultTokenTTL)
	if !t.ExpireAt.IsZero() {
		expire = t.ExpireAt
	}

	claims := jwt.MapClaims{
		"iss": s.settings.Issuer,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(expire),
		"aud": t.Audience,
		"sub": t.Subject,
		"jti": t.ID,
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		return "", nil, apierror.Wrap(err, apierror.KindConfiguration, "token signing failed")
	}
	return signed, claims, nil
}

// Verify checks the signature, issuer, expiry, and (when non-empty) the
// audience of a presented token. Expired tokens fail with code
// "session_expired", every other verification failure with "token_invalid".
func (s *Signer) Verify(raw, audience string) (jwt.MapClaims, error) {
	key, err := s.publicKey()
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.settings.Algorithm}),
		jwt.WithIssuer(s.settings.Issuer),
		jwt.WithExpirationRequired(),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	claims := jwt.MapClaims{}
	_, err = jwt.NewParser(opts...).ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apierror.Wrap(err, apierror.KindAuthentication, "Session expired").
				WithCode(apierror.CodeSessionExpired)
		}
		return nil, apierror.Wrap(err, apierror.KindAuthentication, "Invalid authentication token").
			WithCode(apierror.CodeTokenInvalid)
	}
	return claims, nil
}

// VerifyRequest extracts the bearer token from the Authorization header
// and verifies it.
func (s *Signer) VerifyRequest(r *http.Request, audience string) (jwt.MapClaims, error) {
	raw, err := BearerToken(r)
	if err != nil {
		return nil, err
	}
	return s.Verify(raw, audience)
}

// BearerToken reads the bearer token out of the Authorization header. A
// missing header or wrong part count fails with "Authentication token
// required"; a scheme other than Bearer with "Authentication token
// malformed".
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apierror.NewAuthentication("Authentication token required", "")
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || token == "" || strings.ContainsRune(token, ' ') {
		return "", apierror.NewAuthentication("Authentication token required", "")
	}
	if scheme != "Bearer" {
		return "", apierror.NewAuthentication("Authentication token malformed", "")
	}
	return token, nil
}

// privateKey loads and caches the PEM signing key.
func (s *Signer) privateKey() (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.private != nil {
		return s.private, nil
	}
	if s.settings.PrivateKeyFile == "" {
		return nil, apierror.NewConfiguration("jwt private key not configured")
	}

	pemBytes, err := os.ReadFile(s.settings.PrivateKeyFile)
	if err != nil {
		return nil, apierror.Wrap(err, apierror.KindConfiguration, "jwt private key not readable")
	}

	key, err := parsePrivateKey(pemBytes)
	if err != nil {
		return nil, apierror.Wrap(err, apierror.KindConfiguration, "jwt private key not parseable")
	}
	s.private = key
	return key, nil
}

// publicKey loads and caches the PEM verification key.
func (s *Signer) publicKey() (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.public != nil {
		return s.public, nil
	}
	if s.settings.PublicKeyFile == "" {
		return nil, apierror.NewConfiguration("jwt public key not configured")
	}

	pemBytes, err := os.ReadFile(s.settings.PublicKeyFile)
	if err != nil {
		return nil, apierror.Wrap(err, apierror.KindConfiguration, "jwt public key not readable")
	}

	key, err := parsePublicKey(pemBytes)
	if err != nil {
		return nil, apierror.Wrap(err, apierror.KindConfiguration, "jwt public key not parseable")
	}
	s.public = key
	return key, nil
}

// parsePrivateKey tries the PEM private key shapes golang-jwt supports,
// in the order of the algorithms this package is typically run with.
func parsePrivateKey(pemBytes []byte) (any, error) {
	if key, err := jwt.ParseECPrivateKeyFromPEM(pemBytes); err == nil {
		return key, nil
	}
	if key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes); err == nil {
		return key, nil
	}
	if key, err := jwt.ParseEdPrivateKeyFromPEM(pemBytes); err == nil {
		return key, nil
	}
	return nil, errors.New("not an EC, RSA, or Ed25519 private key")
}

func parsePublicKey(pemBytes []byte) (any, error) {
	if key, err := jwt.ParseECPublicKeyFromPEM(pemBytes); err == nil {
		return key, nil
	}
	if key, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes); err == nil {
		return key, nil
	}
	if key, err := jwt.ParseEdPublicKeyFromPEM(pemBytes); err == nil {
		return key, nil
	}
	return nil, errors.New("not an EC, RSA, or Ed25519 public key")
}
