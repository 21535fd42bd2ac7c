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

package version

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"rivaas.dev/jsonrest/apierror"
)

// MatchPolicy decides which requested Numbers a declared Spec serves.
type MatchPolicy uint8

const (
	// Exact serves only the declared version itself.
	Exact MatchPolicy = iota

	// FollowingMinor serves the declared minor and every later minor of
	// the same major. A major bump never matches.
	FollowingMinor

	// FollowingMajorMinor serves everything FollowingMinor serves plus any
	// later major, at any minor. Intended for endpoints that stay stable
	// across major version bumps.
	FollowingMajorMinor
)

// String returns the policy name as used in logs and route listings.
func (p MatchPolicy) String() string {
	switch p {
	case Exact:
		return "exact"
	case FollowingMinor:
		return "following_minor"
	case FollowingMajorMinor:
		return "following_major_minor"
	default:
		return "invalid"
	}
}

// Spec is the version an endpoint declares at registration time: a Number
// plus the MatchPolicy that widens it toward later requested versions.
//
// Specs are immutable values constructed through New or FromFloat and are
// safe for concurrent use.
type Spec struct {
	number Number
	policy MatchPolicy
}

// New builds a Spec from an explicit (major, minor) pair. The major must not
// be negative and the minor must lie in [0, 99]. Violations return a
// Configuration-kind error so registration fails at startup.
func New(major, minor int, policy MatchPolicy) (Spec, error) {
	if major < 0 {
		return Spec{}, apierror.NewConfiguration(fmt.Sprintf("version major %d must not be negative", major))
	}
	if minor < 0 || minor > 99 {
		return Spec{}, apierror.NewConfiguration(fmt.Sprintf("version minor %d out of range [0, 99]", minor))
	}
	if policy > FollowingMajorMinor {
		return Spec{}, apierror.NewConfiguration(fmt.Sprintf("unknown match policy %d", policy))
	}
	return Spec{number: Number{Major: major, Minor: minor}, policy: policy}, nil
}

// MustNew is New for registration literals; it panics on invalid input.
func MustNew(major, minor int, policy MatchPolicy) Spec {
	s, err := New(major, minor, policy)
	if err != nil {
		panic(err)
	}
	return s
}

// FromFloat builds a Spec from a float literal such as 1.5. The fractional
// digits are read as the integer minor: FromFloat(1.5, p) declares version
// (1, 5) and FromFloat(1.23, p) declares (1, 23). Literals with more than two
// fractional decimal digits, such as 1.234, are rejected with a
// Configuration-kind error.
//
// The digit check runs on the shortest decimal rendering of the float, so
// binary representation noise never rejects a two-digit literal.
func FromFloat(v float64, policy MatchPolicy) (Spec, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Spec{}, apierror.NewConfiguration(fmt.Sprintf("version literal %v is not a valid version", v))
	}

	rendered := strconv.FormatFloat(v, 'f', -1, 64)
	majorPart, minorPart, _ := strings.Cut(rendered, ".")

	if len(minorPart) > 2 {
		return Spec{}, apierror.NewConfiguration(fmt.Sprintf("version literal %s carries more than two decimal places", rendered))
	}

	major, err := strconv.Atoi(majorPart)
	if err != nil {
		return Spec{}, apierror.NewConfiguration(fmt.Sprintf("version literal %s is out of range", rendered))
	}

	minor := 0
	if minorPart != "" {
		minor, _ = strconv.Atoi(minorPart)
	}

	return New(major, minor, policy)
}

// MustFromFloat is FromFloat for registration literals; it panics on invalid
// input.
func MustFromFloat(v float64, policy MatchPolicy) Spec {
	s, err := FromFloat(v, policy)
	if err != nil {
		panic(err)
	}
	return s
}

// Number returns the declared (major, minor) pair.
func (s Spec) Number() Number {
	return s.number
}

// Policy returns the declared match policy.
func (s Spec) Policy() MatchPolicy {
	return s.policy
}

// Matches reports whether the Spec serves the requested Number under its
// match policy.
func (s Spec) Matches(n Number) bool {
	d := s.number
	switch s.policy {
	case Exact:
		return n == d
	case FollowingMinor:
		return n.Major == d.Major && n.Minor >= d.Minor
	case FollowingMajorMinor:
		return n.Major > d.Major || (n.Major == d.Major && n.Minor >= d.Minor)
	default:
		return false
	}
}

// String renders the declared number with a compact policy marker: "1.5" for
// Exact, "1.5+" for FollowingMinor, "1.5++" for FollowingMajorMinor. Route
// listings and metric attributes use this form.
func (s Spec) String() string {
	switch s.policy {
	case FollowingMinor:
		return s.number.String() + "+"
	case FollowingMajorMinor:
		return s.number.String() + "++"
	default:
		return s.number.String()
	}
}
