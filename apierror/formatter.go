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

// Formatter defines how errors are formatted into HTTP responses.
// Implementations are framework-agnostic and work with any HTTP handler.
//
// Example:
//
//	formatter := apierror.NewJSON()
//	response := formatter.Format(req, err)
//	w.Header().Set("Content-Type", response.ContentType)
//	w.WriteHeader(response.Status)
//	json.NewEncoder(w).Encode(response.Body)
type Formatter interface {
	// Format converts an error into HTTP response components: status
	// code, content type, body, and optional extra headers.
	Format(req *http.Request, err error) Response
}

// Response represents a formatted error response. It contains all
// components needed to write an HTTP error response.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// ContentType is the Content-Type header value.
	ContentType string

	// Body is the response body (marshaled to JSON by the caller).
	Body any

	// Headers contains additional headers to set (optional).
	Headers http.Header
}

// ErrorType allows errors to declare their own HTTP status code. Errors
// produced by this package implement it; domain errors can too.
type ErrorType interface {
	error
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrorCode allows errors to expose a machine-readable code rendered in the
// "code" field of the wire format.
type ErrorCode interface {
	error
	// Code returns a machine-readable error code.
	Code() string
}

// ErrorDetails allows errors to expose additional structured information,
// such as field-level validation results.
type ErrorDetails interface {
	error
	// Details returns structured information about the error.
	Details() any
}

// payload is the wire shape of a formatted error. Code serializes to null
// when the error carries no machine code.
type payload struct {
	Message string  `json:"message"`
	Code    *string `json:"code"`
	Details any     `json:"details,omitempty"`
}

// JSON formats errors as compact JSON objects with Content-Type
// "application/json; charset=utf-8":
//
//	{"message": "Session expired", "code": "session_expired"}
//
// Errors resolving to status 500 or above, including errors that implement
// none of the capability interfaces, are masked: the body carries only the
// generic status text and a null code.
type JSON struct {
	// StatusResolver determines the HTTP status from an error.
	// If nil, the ErrorType interface is used, defaulting to 500.
	StatusResolver func(err error) int
}

// NewJSON creates a new JSON formatter.
func NewJSON() *JSON {
	return &JSON{}
}

// Format converts an error into a JSON error response. Codes and details are
// included when the error implements ErrorCode or ErrorDetails.
func (f *JSON) Format(req *http.Request, err error) Response {
	status := f.determineStatus(err)

	// Never leak internals: anything server-side renders as bare status text.
	if status >= http.StatusInternalServerError {
		return Response{
			Status:      status,
			ContentType: contentTypeJSON,
			Body:        payload{Message: http.StatusText(status)},
		}
	}

	body := payload{Message: err.Error()}

	var coded ErrorCode
	if errors.As(err, &coded) {
		if code := coded.Code(); code != "" {
			body.Code = &code
		}
	}

	var detailed ErrorDetails
	if errors.As(err, &detailed) {
		body.Details = detailed.Details()
	}

	return Response{
		Status:      status,
		ContentType: contentTypeJSON,
		Body:        body,
	}
}

func (f *JSON) determineStatus(err error) int {
	if f.StatusResolver != nil {
		return f.StatusResolver(err)
	}

	var typed ErrorType
	if errors.As(err, &typed) {
		return typed.HTTPStatus()
	}

	return http.StatusInternalServerError
}

const contentTypeJSON = "application/json; charset=utf-8"

// WithStatus wraps an error with an explicit HTTP status code, overriding
// whatever status the error would otherwise resolve to. The wrapped error
// implements ErrorType.
//
// If err is nil, the status text for the given code is used as the message.
func WithStatus(err error, status int) error {
	return &statusError{err: err, status: status}
}

type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string {
	if e.err == nil {
		return http.StatusText(e.status)
	}
	return e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}

func (e *statusError) HTTPStatus() int {
	return e.status
}
