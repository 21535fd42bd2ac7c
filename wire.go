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
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"rivaas.dev/jsonrest/apierror"
)

const contentTypeJSON = "application/json; charset=utf-8"

// decodeBody reads and parses the request body into the context. Non-GET
// bodies must be valid JSON; empty bodies decode to a nil payload. GET
// requests must not carry a body at all.
func (d *Dispatcher) decodeBody(c *Context, w http.ResponseWriter, req *http.Request) error {
	body := req.Body
	if body == nil {
		return nil
	}
	if d.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, body, d.maxBodyBytes)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apierror.WithStatus(
				apierror.NewRequest("request body exceeds the allowed size"),
				http.StatusRequestEntityTooLarge,
			)
		}
		return apierror.Wrap(err, apierror.KindRequest, "request body could not be read")
	}

	if req.Method == http.MethodGet {
		if len(raw) > 0 {
			return apierror.NewRequest("GET request must not carry a body")
		}
		return nil
	}

	if len(raw) == 0 {
		return nil
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return apierror.Wrap(err, apierror.KindEncoding, "request body is not valid JSON")
	}

	c.raw = raw
	c.payload = payload
	return nil
}

// envelope wraps a handler result in the {"data": ...} wire shape. Maps
// that already carry a top-level "data" key pass through unchanged.
func envelope(result any) any {
	if m, ok := result.(map[string]any); ok {
		if _, enveloped := m["data"]; enveloped {
			return m
		}
	}
	return map[string]any{"data": result}
}

// encodeJSON marshals the response body up front, so an unencodable payload
// fails before any status line is written.
func encodeJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

// quoteETag brings a validator tag into RFC 9110 quoted form. Tags already
// quoted or carrying a weak prefix pass through; empty means no validator.
func quoteETag(tag string) string {
	if tag == "" || strings.HasPrefix(tag, `"`) || strings.HasPrefix(tag, "W/") {
		return tag
	}
	return `"` + tag + `"`
}

// setValidators emits the conditional-GET validators the cache validator
// produced. Zero values mean "unknown" and emit nothing.
func setValidators(header http.Header, etag string, lastModified time.Time) {
	if etag != "" {
		header.Set("ETag", etag)
	}
	if !lastModified.IsZero() {
		header.Set("Last-Modified", lastModified.UTC().Format(http.TimeFormat))
	}
}

// requestNotModified reports whether the request's conditional headers
// match the validators, in which case the dispatcher answers 304 without
// running the handler. If-None-Match wins over If-Modified-Since when both
// are present, per RFC 9110.
func requestNotModified(req *http.Request, etag string, lastModified time.Time) bool {
	if match := req.Header.Get("If-None-Match"); match != "" {
		return etag != "" && etagMatches(match, etag)
	}

	since := req.Header.Get("If-Modified-Since")
	if since == "" || lastModified.IsZero() {
		return false
	}
	t, err := http.ParseTime(since)
	if err != nil {
		return false
	}
	// HTTP dates carry second precision only.
	return !lastModified.Truncate(time.Second).After(t)
}

// etagMatches compares an If-None-Match header against the current tag
// using weak comparison: the W/ prefix is ignored on both sides.
func etagMatches(header, etag string) bool {
	if strings.TrimSpace(header) == "*" {
		return true
	}
	current := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == current {
			return true
		}
	}
	return false
}
