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
	"net"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rivaas.dev/jsonrest/apierror"
)

// RuleAction decides what a matching IP rule does.
type RuleAction uint8

const (
	// Allow admits requests from the rule's network.
	Allow RuleAction = iota

	// Deny rejects requests from the rule's network.
	Deny
)

// IPRule restricts a consumer to (or bans it from) a network.
type IPRule struct {
	// Network is the rule's CIDR range.
	Network *net.IPNet

	// Action is Allow or Deny.
	Action RuleAction
}

// MustParseIPRule builds a rule from CIDR notation, panicking on malformed
// input. Intended for fixture and wiring code.
func MustParseIPRule(cidr string, action RuleAction) IPRule {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("jwtauth: bad CIDR %q: %v", cidr, err))
	}
	return IPRule{Network: network, Action: action}
}

// Consumer is a machine client of the API: a UUID identity with a secret
// key, a CORS origin it may call from, optional IP rules, and the subject
// label its requests act as.
type Consumer struct {
	// UID is the consumer's identifier, presented as the basic-auth
	// username and stored as the token subject.
	UID uuid.UUID

	// KeyHash is the bcrypt hash of the consumer's secret key. Set it
	// through HashKey; the clear key is never stored.
	KeyHash []byte

	// Subject is the acting user label reported for this consumer's
	// requests.
	Subject string

	// AllowedOrigin is emitted as Access-Control-Allow-Origin on
	// responses this consumer authenticated.
	AllowedOrigin string

	// RulesActive turns IP rule checking on.
	RulesActive bool

	// Rules are evaluated against the request's remote IP when
	// RulesActive is set.
	Rules []IPRule
}

// HashKey hashes a consumer key for storage.
func HashKey(key string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierror.Wrap(err, apierror.KindConfiguration, "consumer key hashing failed")
	}
	return hash, nil
}

// CheckKey reports whether the presented key matches the stored hash.
func (c *Consumer) CheckKey(key string) bool {
	return bcrypt.CompareHashAndPassword(c.KeyHash, []byte(key)) == nil
}

// CheckRules enforces the consumer's IP rules against the request's remote
// address. Any matching deny rule rejects the request; when allow rules
// exist, at least one must match. Violations fail with an Access-kind
// error. Inactive rules always pass.
func (c *Consumer) CheckRules(r *http.Request) error {
	if !c.RulesActive {
		return nil
	}

	ip := remoteIP(r)
	if ip == nil {
		return apierror.NewAccess("IP address not allowed")
	}

	hasAllow := false
	allowed := false
	for _, rule := range c.Rules {
		match := rule.Network != nil && rule.Network.Contains(ip)
		switch rule.Action {
		case Deny:
			if match {
				return apierror.NewAccess("IP address not allowed")
			}
		case Allow:
			hasAllow = true
			if match {
				allowed = true
			}
		}
	}

	if hasAllow && !allowed {
		return apierror.NewAccess("IP address not allowed")
	}
	return nil
}

// remoteIP extracts the request's remote IP, tolerating addresses without
// a port (as httptest and some proxies produce).
func remoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

// ConsumerIdentity is the identity of requests authenticated by a consumer
// policy. The acting subject comes from the consumer record.
type ConsumerIdentity struct {
	consumer *Consumer
}

// Principal returns the consumer UID.
func (c *ConsumerIdentity) Principal() string {
	return c.consumer.UID.String()
}

// Consumer returns the authenticated consumer record.
func (c *ConsumerIdentity) Consumer() *Consumer {
	return c.consumer
}
