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

package auth

import (
	"fmt"
	"net/http"

	"rivaas.dev/jsonrest/apierror"
)

// Operator selects how Hybrid combines its sub-policies.
type Operator uint8

const (
	// OR tries sub-policies in declared order; the first success wins.
	OR Operator = iota

	// AND is reserved. Hybrid policies built with it fail every request
	// with a Configuration-kind error instead of silently passing.
	AND
)

// String returns the operator name.
func (o Operator) String() string {
	switch o {
	case OR:
		return "or"
	case AND:
		return "and"
	default:
		return "invalid"
	}
}

// Hybrid combines sub-policy factories under an Operator.
//
// With OR, Authenticate tries the sub-policies in declared order and the
// first to succeed becomes the active policy: Postprocess and Tolerated
// delegate to it, so the winning policy's response behavior applies. When
// every sub-policy fails, the hybrid fails with the last sub-policy's error.
//
// Before a successful Authenticate there is no active policy: Postprocess is
// a no-op and Tolerated is empty.
func Hybrid(op Operator, subs ...Factory) Factory {
	return func() Policy {
		policies := make([]Policy, len(subs))
		for i, build := range subs {
			policies[i] = build()
		}
		return &hybrid{op: op, subs: policies}
	}
}

type hybrid struct {
	op     Operator
	subs   []Policy
	active Policy
}

func (h *hybrid) Authenticate(r *http.Request) (Identity, error) {
	switch h.op {
	case OR:
		return h.authenticateOR(r)
	case AND:
		return nil, apierror.NewConfiguration("and-combined authentication is not implemented")
	default:
		return nil, apierror.NewConfiguration(fmt.Sprintf("unknown hybrid operator %d", h.op))
	}
}

func (h *hybrid) authenticateOR(r *http.Request) (Identity, error) {
	var lastErr error
	for _, p := range h.subs {
		identity, err := p.Authenticate(r)
		if err == nil {
			h.active = p
			return identity, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return nil, apierror.NewConfiguration("or-combined authentication needs at least one sub-policy")
	}
	return nil, lastErr
}

func (h *hybrid) Postprocess(r *http.Request, header http.Header) {
	if h.active != nil {
		h.active.Postprocess(r, header)
	}
}

func (h *hybrid) Tolerated() []apierror.Kind {
	if h.active != nil {
		return h.active.Tolerated()
	}
	return nil
}
