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

package validate

import (
	"strings"

	"rivaas.dev/jsonrest/apierror"
)

// RequireKeys verifies that every listed key is present in m with a non-blank
// value. A value is blank when it is nil or a string that is empty or
// whitespace-only. On failure it returns a request error naming the offending
// keys in its details.
func RequireKeys(m map[string]any, keys ...string) error {
	var missing []string
	for _, key := range keys {
		if blank(m[key]) {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apierror.
		NewRequest("missing required keys: " + strings.Join(missing, ", ")).
		WithDetails(map[string]any{"missing": missing})
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// Pick selects a key for CleanRenamed. The value stored under From in the
// source map is carried into the result under To.
type Pick struct {
	From string
	To   string
}

// CleanOthers returns a new map holding only the listed keys of m. Keys
// absent from m are skipped; present keys are copied as-is, nil values
// included.
func CleanOthers(m map[string]any, keys ...string) map[string]any {
	picks := make([]Pick, len(keys))
	for i, key := range keys {
		picks[i] = Pick{From: key, To: key}
	}
	return CleanRenamed(m, picks...)
}

// CleanRenamed is CleanOthers with per-key renaming: each Pick copies
// m[From] into the result under To.
func CleanRenamed(m map[string]any, picks ...Pick) map[string]any {
	out := make(map[string]any, len(picks))
	for _, pick := range picks {
		if v, ok := m[pick.From]; ok {
			out[pick.To] = v
		}
	}
	return out
}

// CleanEmpty returns a copy of m with empty values removed. Nested maps are
// pruned recursively; non-map empty values inside kept entries collapse to
// nil. Keys listed in keep survive at the top level even when empty.
func CleanEmpty(m map[string]any, keep ...string) map[string]any {
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		if empty(v) && !kept[k] {
			continue
		}
		out[k] = cleanValue(v)
	}
	return out
}

func cleanValue(v any) any {
	if nested, ok := v.(map[string]any); ok {
		return CleanEmpty(nested)
	}
	if empty(v) {
		return nil
	}
	return v
}

// empty mirrors JSON-value emptiness for the types encoding/json decodes
// into any.
func empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case float64:
		return t == 0
	case int:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
