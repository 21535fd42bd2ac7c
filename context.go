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

package jsonrest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/auth"
	"rivaas.dev/jsonrest/version"
)

// Context carries one dispatched request through its handler: the raw
// request, the resolved endpoint, the authenticated identity, the requested
// version, and the decoded body.
//
// Contexts are pooled and reset between requests. Handlers must not retain
// a Context or anything returned by RawBody past their return.
type Context struct {
	request  *http.Request
	endpoint *MethodEndpoint
	identity auth.Identity
	version  version.Number
	logger   *slog.Logger

	raw     []byte
	payload any

	queryCache url.Values
}

// Request returns the underlying HTTP request.
func (c *Context) Request() *http.Request {
	return c.request
}

// RequestContext returns the request's context.Context, for passing to
// stores and downstream clients.
func (c *Context) RequestContext() context.Context {
	if c.request != nil {
		return c.request.Context()
	}
	return context.Background()
}

// Method returns the request's HTTP method.
func (c *Context) Method() string {
	return c.request.Method
}

// Path returns the resolved endpoint path (version segment stripped).
func (c *Context) Path() string {
	return c.endpoint.path
}

// Version returns the version the client requested, which may be later
// than the endpoint's declared version under a widening match policy.
func (c *Context) Version() version.Number {
	return c.version
}

// Endpoint returns the resolved endpoint.
func (c *Context) Endpoint() *MethodEndpoint {
	return c.endpoint
}

// Identity returns whoever the auth policy authenticated, auth.Anonymous on
// public endpoints.
func (c *Context) Identity() auth.Identity {
	return c.identity
}

// Logger returns the request-scoped logger carrying method, route, and
// version attributes.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Query returns the first value of the named query parameter, or "".
func (c *Context) Query(name string) string {
	return c.queryValues().Get(name)
}

// DefaultQuery returns the first value of the named query parameter, or def
// when the parameter is absent or blank.
func (c *Context) DefaultQuery(name, def string) string {
	if v := c.queryValues().Get(name); v != "" {
		return v
	}
	return def
}

func (c *Context) queryValues() url.Values {
	if c.queryCache == nil {
		c.queryCache = c.request.URL.Query()
	}
	return c.queryCache
}

// OffsetLimit reads the offset and limit query parameters for list
// endpoints. The returned limit is the absolute end index (offset + limit),
// ready for slicing; it is 0 when no limit parameter was sent. Negative or
// non-integer values fail with a Request-kind error.
func (c *Context) OffsetLimit() (offset, limit int, err error) {
	offset, err = c.positiveIntQuery("offset")
	if err != nil {
		return 0, 0, err
	}

	raw := c.Query("limit")
	if raw == "" {
		return offset, 0, nil
	}
	limit, err = c.positiveIntQuery("limit")
	if err != nil {
		return 0, 0, err
	}
	return offset, offset + limit, nil
}

func (c *Context) positiveIntQuery(name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apierror.NewRequest(fmt.Sprintf("query parameter %s must be a non-negative integer", name))
	}
	return v, nil
}

// Body returns the decoded request body when it is a JSON object, nil for
// GET requests, empty bodies, and non-object payloads.
func (c *Context) Body() map[string]any {
	m, _ := c.payload.(map[string]any)
	return m
}

// RawBody returns the raw request body bytes read during decoding. The
// slice is only valid until the handler returns.
func (c *Context) RawBody() []byte {
	return c.raw
}

// BindBody decodes the request body into v and validates it against its
// `validate` struct tags. Type mismatches and tag violations fail with a
// Request-kind error carrying per-field details.
//
// Example:
//
//	var in struct {
//	    UID string `json:"uid" validate:"required"`
//	    Key string `json:"key" validate:"required"`
//	}
//	if err := c.BindBody(&in); err != nil {
//	    return nil, err
//	}
func (c *Context) BindBody(v any) error {
	if len(c.raw) == 0 {
		return apierror.NewRequest("request body required")
	}
	if err := json.Unmarshal(c.raw, v); err != nil {
		return apierror.Wrap(err, apierror.KindRequest, "request body does not match the expected shape")
	}
	return validateStruct(v)
}

// TraceID returns the active span's trace ID, or "" when tracing is off.
func (c *Context) TraceID() string {
	sc := trace.SpanFromContext(c.RequestContext()).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the active span's span ID, or "" when tracing is off.
func (c *Context) SpanID() string {
	sc := trace.SpanFromContext(c.RequestContext()).SpanContext()
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

// SetSpanAttribute adds an attribute to the active span. No-op when tracing
// is off.
func (c *Context) SetSpanAttribute(key string, value any) {
	span := trace.SpanFromContext(c.RequestContext())
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(anyAttribute(key, value))
}

// AddSpanEvent adds an event to the active span. No-op when tracing is off.
func (c *Context) AddSpanEvent(name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(c.RequestContext())
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// reset clears the context for pooling.
func (c *Context) reset() {
	c.request = nil
	c.endpoint = nil
	c.identity = nil
	c.version = version.Number{}
	c.logger = nil
	c.raw = nil
	c.payload = nil
	c.queryCache = nil
}

func anyAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}

var (
	bindValidator     *validator.Validate
	bindValidatorOnce sync.Once
)

// validateStruct runs go-playground struct-tag validation, reporting field
// names by their json tags. Non-struct targets pass through untouched.
func validateStruct(v any) error {
	bindValidatorOnce.Do(func() {
		bindValidator = validator.New(validator.WithRequiredStructEnabled())
		bindValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("json")
			if name == "-" {
				return ""
			}
			if idx := strings.Index(name, ","); idx != -1 {
				name = name[:idx]
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})

	err := bindValidator.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	switch typed := err.(type) {
	case *validator.InvalidValidationError:
		// Not a struct; tag validation does not apply.
		return nil
	case validator.ValidationErrors:
		verrs = typed
	default:
		return apierror.Wrap(err, apierror.KindRequest, "request body validation failed")
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fieldMessage(fe)
	}
	return apierror.NewRequest("request body validation failed").WithDetails(details)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
