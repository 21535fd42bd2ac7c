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
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedNumber is returned by ParseNumber for segments that are not a
// major.minor version. The dispatcher treats such segments as matching no
// route at all.
var ErrMalformedNumber = errors.New("malformed version segment")

// segmentPattern is the wire shape of a requested version: a major number,
// a dot, and a one or two digit minor.
var segmentPattern = regexp.MustCompile(`^\d+\.\d{1,2}$`)

// Number is a concrete (major, minor) version pair, either requested by a
// client or declared by an endpoint.
//
// Numbers order lexicographically: majors compare first, minors (integers in
// [0, 99]) break ties. "1.12" is therefore a later version than "1.9".
type Number struct {
	Major int
	Minor int
}

// ParseNumber parses a URL segment of the form "1.5" into a Number. Minors
// are read as integers, so "1.05" parses to the same Number as "1.5".
func ParseNumber(segment string) (Number, error) {
	if !segmentPattern.MatchString(segment) {
		return Number{}, ErrMalformedNumber
	}

	majorPart, minorPart, _ := strings.Cut(segment, ".")

	major, err := strconv.Atoi(majorPart)
	if err != nil {
		// Only reachable when the major overflows int.
		return Number{}, ErrMalformedNumber
	}
	minor, _ := strconv.Atoi(minorPart)

	return Number{Major: major, Minor: minor}, nil
}

// Compare orders n against other lexicographically on (major, minor). It
// returns -1 when n is the earlier version, +1 when it is the later one, and
// 0 when they are equal.
func (n Number) Compare(other Number) int {
	if n.Major != other.Major {
		if n.Major < other.Major {
			return -1
		}
		return 1
	}
	if n.Minor != other.Minor {
		if n.Minor < other.Minor {
			return -1
		}
		return 1
	}
	return 0
}

// String renders the canonical "major.minor" form, e.g. "1.5".
func (n Number) String() string {
	return strconv.Itoa(n.Major) + "." + strconv.Itoa(n.Minor)
}
