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
	"encoding/json"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"rivaas.dev/jsonrest/apierror"
)

// Schema is a compiled JSON Schema. Compile once at startup and share; the
// compiled form is safe for concurrent use.
type Schema struct {
	compiled *jsonschema.Schema
}

// FieldError describes a single schema violation. Field is the dotted
// instance path of the offending value, empty for root-level violations.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CompileSchema compiles a JSON Schema document given as JSON text.
// Compilation failures are configuration errors: the schema is part of the
// service, not of any request.
func CompileSchema(schemaJSON string) (*Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(schemaJSON), &doc); err != nil {
		return nil, apierror.Wrap(err, apierror.KindConfiguration, "schema document is not valid JSON")
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()
	compiler.AssertContent()

	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, apierror.Wrap(err, apierror.KindConfiguration, "schema document rejected")
	}

	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, apierror.Wrap(err, apierror.KindConfiguration, "schema does not compile")
	}

	return &Schema{compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema for package-level schema literals. It
// panics on compilation failure.
func MustCompileSchema(schemaJSON string) *Schema {
	s, err := CompileSchema(schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks v against the schema. Violations map to a request error
// whose details carry one FieldError per offending instance path, sorted by
// field.
func (s *Schema) Validate(v any) error {
	data, err := normalize(v)
	if err != nil {
		return err
	}

	err = s.compiled.Validate(data)
	if err == nil {
		return nil
	}

	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return apierror.Wrap(err, apierror.KindRequest, "request payload failed validation")
	}

	fields := collectFieldErrors(verr, nil)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })

	return apierror.
		NewRequest("request payload failed validation").
		WithDetails(fields)
}

// normalize converts v into the decoded-JSON value shapes the schema
// library validates. Maps produced by the request decoder pass through.
func normalize(v any) (any, error) {
	switch v.(type) {
	case nil, map[string]any, []any:
		return v, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apierror.Wrap(err, apierror.KindRequest, "value is not representable as JSON")
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, apierror.Wrap(err, apierror.KindRequest, "value is not representable as JSON")
	}
	return data, nil
}

// collectFieldErrors flattens the validation error tree into its leaves.
func collectFieldErrors(verr *jsonschema.ValidationError, fields []FieldError) []FieldError {
	if verr == nil {
		return fields
	}

	if len(verr.Causes) == 0 {
		fields = append(fields, FieldError{
			Field:   strings.Join(verr.InstanceLocation, "."),
			Message: verr.Error(),
		})
		return fields
	}

	for _, cause := range verr.Causes {
		fields = collectFieldErrors(cause, fields)
	}
	return fields
}
