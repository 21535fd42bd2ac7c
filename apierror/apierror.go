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

package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies an Error and selects its default HTTP status code.
type Kind uint8

const (
	// KindUnknown marks errors that did not originate from this package.
	KindUnknown Kind = iota

	// KindRequest covers malformed or incomplete request data (400).
	KindRequest

	// KindEncoding covers request bodies that are not valid structured
	// data, such as broken JSON (400).
	KindEncoding

	// KindAuthentication covers missing, malformed, expired, or otherwise
	// invalid credentials (401).
	KindAuthentication

	// KindAccess covers requests that authenticated fine but were denied
	// by an authorization rule (403).
	KindAccess

	// KindConfiguration covers server-side misconfiguration (500). The
	// message is logged but never rendered to clients.
	KindConfiguration

	// KindInvalidRoute covers route registration defects. These surface
	// during startup and are never rendered as HTTP responses.
	KindInvalidRoute
)

// String returns the kind name as used in logs and metric attributes.
func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindEncoding:
		return "encoding"
	case KindAuthentication:
		return "authentication"
	case KindAccess:
		return "access"
	case KindConfiguration:
		return "configuration"
	case KindInvalidRoute:
		return "invalid_route"
	default:
		return "unknown"
	}
}

// httpStatus returns the default status code for the kind. Kinds that never
// reach a client map to 500 so an accidental render stays masked.
func (k Kind) httpStatus() int {
	switch k {
	case KindRequest, KindEncoding:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAccess:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Machine-readable codes carried by authentication errors. Clients branch on
// these instead of parsing message text.
const (
	// CodeSessionExpired signals that a previously valid token has passed
	// its expiry and the client should reauthenticate.
	CodeSessionExpired = "session_expired"

	// CodeTokenInvalid signals that a presented token failed validation
	// for any reason other than expiry.
	CodeTokenInvalid = "token_invalid"

	// CodeConsumerInvalid signals that consumer key credentials were
	// rejected.
	CodeConsumerInvalid = "consumer_invalid"
)

// Error is a classified error with the wire-level attributes the dispatcher
// needs to render it: an HTTP status, a client-facing message, and an
// optional machine-readable code.
//
// Error values are immutable after construction and safe to share across
// goroutines.
type Error struct {
	kind    Kind
	message string
	code    string
	details any
	err     error
}

// NewRequest returns a request error (400) with a client-facing message.
func NewRequest(message string) *Error {
	return &Error{kind: KindRequest, message: message}
}

// NewEncoding returns an encoding error (400) for request bodies that could
// not be decoded.
func NewEncoding(message string) *Error {
	return &Error{kind: KindEncoding, message: message}
}

// NewAuthentication returns an authentication error (401). The code should
// be one of the Code constants, or empty when no machine code applies.
func NewAuthentication(message, code string) *Error {
	return &Error{kind: KindAuthentication, message: message, code: code}
}

// NewAccess returns an access error (403).
func NewAccess(message string) *Error {
	return &Error{kind: KindAccess, message: message}
}

// NewConfiguration returns a configuration error (500). The message is kept
// for logs; formatters mask it before it reaches a client.
func NewConfiguration(message string) *Error {
	return &Error{kind: KindConfiguration, message: message}
}

// NewInvalidRoute returns a route registration error. It is reported by
// Registry.Add and the route builders, never rendered over HTTP.
func NewInvalidRoute(message string) *Error {
	return &Error{kind: KindInvalidRoute, message: message}
}

// Wrap classifies an existing error under the given kind, keeping it
// reachable through Unwrap for errors.Is and errors.As.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{kind: kind, message: message, err: err}
}

// WithCode sets the machine-readable code on an error built through Wrap,
// which takes no code parameter.
func (e *Error) WithCode(code string) *Error {
	e.code = code
	return e
}

// WithDetails attaches structured details rendered alongside the message,
// such as the field violations of a schema validation failure.
func (e *Error) WithDetails(details any) *Error {
	e.details = details
	return e
}

// Error returns the client-facing message.
func (e *Error) Error() string {
	return e.message
}

// Kind returns the error classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// HTTPStatus returns the status code the error renders with.
func (e *Error) HTTPStatus() int {
	return e.kind.httpStatus()
}

// Code returns the machine-readable code, or an empty string when the error
// carries none.
func (e *Error) Code() string {
	return e.code
}

// Details returns the structured details attached with WithDetails, or nil.
func (e *Error) Details() any {
	return e.details
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// KindOf reports the classification of err. Errors that are not (and do not
// wrap) an *Error report KindUnknown.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.kind
	}
	return KindUnknown
}

// IsKind reports whether err is classified as the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
