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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"rivaas.dev/jsonrest/apierror"
	"rivaas.dev/jsonrest/version"
)

func testContext(target string) *Context {
	return &Context{
		request: httptest.NewRequest(http.MethodGet, target, nil),
		version: version.Number{Major: 1, Minor: 0},
	}
}

func TestContext_Query(t *testing.T) {
	t.Parallel()

	c := testContext("/1.0/things?q=widgets&empty=")

	assert.Equal(t, "widgets", c.Query("q"))
	assert.Equal(t, "", c.Query("missing"))
	assert.Equal(t, "widgets", c.DefaultQuery("q", "fallback"))
	assert.Equal(t, "fallback", c.DefaultQuery("missing", "fallback"))
	assert.Equal(t, "fallback", c.DefaultQuery("empty", "fallback"))
}

func TestContext_OffsetLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  string
		offset  int
		limit   int
		wantErr bool
	}{
		{name: "absent", target: "/1.0/things", offset: 0, limit: 0},
		{name: "offset only", target: "/1.0/things?offset=20", offset: 20, limit: 0},
		{name: "limit becomes end index", target: "/1.0/things?offset=20&limit=10", offset: 20, limit: 30},
		{name: "limit without offset", target: "/1.0/things?limit=10", offset: 0, limit: 10},
		{name: "negative offset", target: "/1.0/things?offset=-5", wantErr: true},
		{name: "non-numeric limit", target: "/1.0/things?limit=ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			offset, limit, err := testContext(tt.target).OffsetLimit()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apierror.KindRequest, apierror.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.limit, limit)
		})
	}
}

func TestContext_BindBody(t *testing.T) {
	t.Parallel()

	type credentials struct {
		UID string `json:"uid" validate:"required"`
		Key string `json:"key" validate:"required"`
	}

	t.Run("valid body binds", func(t *testing.T) {
		t.Parallel()

		c := testContext("/1.0/auth/consumer")
		c.raw = []byte(`{"uid": "a-consumer", "key": "secret"}`)

		var in credentials
		require.NoError(t, c.BindBody(&in))
		assert.Equal(t, "a-consumer", in.UID)
		assert.Equal(t, "secret", in.Key)
	})

	t.Run("missing body fails", func(t *testing.T) {
		t.Parallel()

		var in credentials
		err := testContext("/1.0/auth/consumer").BindBody(&in)
		require.Error(t, err)
		assert.Equal(t, apierror.KindRequest, apierror.KindOf(err))
	})

	t.Run("missing required field reports by json name", func(t *testing.T) {
		t.Parallel()

		c := testContext("/1.0/auth/consumer")
		c.raw = []byte(`{"uid": "a-consumer"}`)

		var in credentials
		err := c.BindBody(&in)
		require.Error(t, err)
		assert.Equal(t, apierror.KindRequest, apierror.KindOf(err))

		var apiErr *apierror.Error
		require.ErrorAs(t, err, &apiErr)
		details, ok := apiErr.Details().(map[string]string)
		require.True(t, ok)
		assert.Equal(t, "is required", details["key"])
	})

	t.Run("shape mismatch fails", func(t *testing.T) {
		t.Parallel()

		c := testContext("/1.0/auth/consumer")
		c.raw = []byte(`{"uid": 42}`)

		var in credentials
		err := c.BindBody(&in)
		require.Error(t, err)
		assert.Equal(t, apierror.KindRequest, apierror.KindOf(err))
	})
}

func TestContext_TracingWithRecorder(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := provider.Tracer("dispatch-test").Start(context.Background(), "dispatch")

	c := testContext("/1.0/things")
	c.request = c.request.WithContext(ctx)

	assert.Equal(t, span.SpanContext().TraceID().String(), c.TraceID())
	assert.Equal(t, span.SpanContext().SpanID().String(), c.SpanID())

	c.SetSpanAttribute("route", "things")
	c.SetSpanAttribute("cached", true)
	c.SetSpanAttribute("offset", 20)
	c.SetSpanAttribute("count", int64(7))
	c.SetSpanAttribute("ratio", 0.5)
	c.SetSpanAttribute("tags", []string{"a", "b"})
	c.AddSpanEvent("store_lookup", attribute.String("store", "orders"))

	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	attrs := make(map[attribute.Key]attribute.Value, len(ended[0].Attributes()))
	for _, kv := range ended[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "things", attrs["route"].AsString())
	assert.True(t, attrs["cached"].AsBool())
	assert.Equal(t, int64(20), attrs["offset"].AsInt64())
	assert.Equal(t, int64(7), attrs["count"].AsInt64())
	assert.Equal(t, 0.5, attrs["ratio"].AsFloat64())
	// Unsupported types fall back to their string rendering.
	assert.Equal(t, "[a b]", attrs["tags"].AsString())

	events := ended[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "store_lookup", events[0].Name)
	require.Len(t, events[0].Attributes, 1)
	assert.Equal(t, attribute.String("store", "orders"), events[0].Attributes[0])
}

func TestContext_TracingWithoutProvider(t *testing.T) {
	t.Parallel()

	c := testContext("/1.0/things")

	// No tracer configured: helpers are quiet no-ops.
	assert.Empty(t, c.TraceID())
	assert.Empty(t, c.SpanID())
	c.SetSpanAttribute("key", "value")
	c.AddSpanEvent("event")
}

func TestContext_Reset(t *testing.T) {
	t.Parallel()

	c := testContext("/1.0/things?q=1")
	c.raw = []byte("{}")
	c.payload = map[string]any{}
	c.identity = stubIdentity("jane")
	_ = c.Query("q")

	c.reset()

	assert.Nil(t, c.request)
	assert.Nil(t, c.endpoint)
	assert.Nil(t, c.identity)
	assert.Nil(t, c.raw)
	assert.Nil(t, c.payload)
	assert.Nil(t, c.queryCache)
	assert.Equal(t, version.Number{}, c.version)
}
