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
	"fmt"
	"os"
	"strconv"
	"time"

	"rivaas.dev/jsonrest/apierror"
)

// EnvPrefix is the environment variable prefix for jwtauth settings.
const EnvPrefix = "JSONREST_"

// Environment variable names read by SettingsFromEnv.
const (
	EnvIssuer               = "JWT_ISSUER"                  // token issuer, e.g. "orders-api"
	EnvAlgorithm            = "JWT_ALGORITHM"               // signing algorithm, e.g. "ES512"
	EnvPrivateKeyFile       = "JWT_PRIVATE_KEY_FILE"        // PEM private key path
	EnvPublicKeyFile        = "JWT_PUBLIC_KEY_FILE"         // PEM public key path
	EnvDefaultTokenTTL      = "JWT_DEFAULT_EXPIRE"          // fallback token lifetime (e.g. "1h")
	EnvConsumerTokenTTL     = "JWT_CONSUMER_TOKEN_TTL"      // consumer token lifetime
	EnvUserStrongTokenTTL   = "JWT_USER_STRONG_TOKEN_TTL"   // strong user token lifetime
	EnvUserWeakTokenTTL     = "JWT_USER_WEAK_TOKEN_TTL"     // weak user token lifetime
	EnvIssueStrongWithLogin = "JWT_ISSUE_STRONG_WITH_LOGIN" // "true" or "false"
)

// Settings configures token signing, verification, and lifetimes.
//
// Strong user tokens are short-lived and gate sensitive operations; weak
// tokens are long-lived session tokens.
type Settings struct {
	// Issuer is the iss claim written into every token and required on
	// every verified one.
	Issuer string

	// Algorithm is the JWT signing algorithm, e.g. "ES512" or "RS256".
	Algorithm string

	// PrivateKeyFile is the path of the PEM-encoded signing key. Only
	// needed when issuing tokens.
	PrivateKeyFile string

	// PublicKeyFile is the path of the PEM-encoded verification key.
	PublicKeyFile string

	// DefaultTokenTTL applies to tokens without an explicit expiry.
	DefaultTokenTTL time.Duration

	// ConsumerTokenTTL is the lifetime of consumer tokens.
	ConsumerTokenTTL time.Duration

	// UserStrongTokenTTL is the lifetime of strong user tokens.
	UserStrongTokenTTL time.Duration

	// UserWeakTokenTTL is the lifetime of weak user tokens.
	UserWeakTokenTTL time.Duration

	// IssueStrongWithLogin additionally issues a strong token with every
	// user login.
	IssueStrongWithLogin bool
}

// DefaultSettings returns the settings used when nothing is configured:
// ES512 signing, one hour default and strong-token lifetimes, four hour
// consumer tokens, and thirty day weak user tokens.
func DefaultSettings() Settings {
	return Settings{
		Issuer:               "jsonrest",
		Algorithm:            "ES512",
		DefaultTokenTTL:      time.Hour,
		ConsumerTokenTTL:     4 * time.Hour,
		UserStrongTokenTTL:   time.Hour,
		UserWeakTokenTTL:     720 * time.Hour,
		IssueStrongWithLogin: true,
	}
}

// SettingsFromEnv builds settings from JSONREST_-prefixed environment
// variables on top of DefaultSettings. Durations accept Go duration
// strings ("90m") or bare integers read as seconds. Malformed values fail
// with a Configuration-kind error.
func SettingsFromEnv() (Settings, error) {
	s := DefaultSettings()

	if v := os.Getenv(EnvPrefix + EnvIssuer); v != "" {
		s.Issuer = v
	}
	if v := os.Getenv(EnvPrefix + EnvAlgorithm); v != "" {
		s.Algorithm = v
	}
	if v := os.Getenv(EnvPrefix + EnvPrivateKeyFile); v != "" {
		s.PrivateKeyFile = v
	}
	if v := os.Getenv(EnvPrefix + EnvPublicKeyFile); v != "" {
		s.PublicKeyFile = v
	}

	durations := []struct {
		name   string
		target *time.Duration
	}{
		{EnvDefaultTokenTTL, &s.DefaultTokenTTL},
		{EnvConsumerTokenTTL, &s.ConsumerTokenTTL},
		{EnvUserStrongTokenTTL, &s.UserStrongTokenTTL},
		{EnvUserWeakTokenTTL, &s.UserWeakTokenTTL},
	}
	for _, d := range durations {
		raw := os.Getenv(EnvPrefix + d.name)
		if raw == "" {
			continue
		}
		parsed, err := parseDuration(raw)
		if err != nil {
			return Settings{}, apierror.Wrap(err, apierror.KindConfiguration,
				fmt.Sprintf("invalid environment variable %s%s", EnvPrefix, d.name))
		}
		*d.target = parsed
	}

	if raw := os.Getenv(EnvPrefix + EnvIssueStrongWithLogin); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return Settings{}, apierror.Wrap(err, apierror.KindConfiguration,
				fmt.Sprintf("invalid environment variable %s%s", EnvPrefix, EnvIssueStrongWithLogin))
		}
		s.IssueStrongWithLogin = parsed
	}

	return s, nil
}

// parseDuration accepts "1h30m" style duration strings and bare integer
// second counts, matching how deployments commonly express lifetimes.
func parseDuration(raw string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("duration %q must not be negative", raw)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", raw)
	}
	return d, nil
}
