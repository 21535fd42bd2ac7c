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

// Package validate provides request-payload validation helpers for handlers
// working with decoded JSON bodies.
//
// The map helpers cover the common shapes of payload hygiene: RequireKeys
// rejects payloads with missing or blank fields, CleanOthers copies only a
// whitelist of keys, and CleanEmpty prunes empty values recursively.
//
// For structural validation, Schema wraps a compiled JSON Schema and maps
// violations to request errors carrying field-level details:
//
//	var orderSchema = validate.MustCompileSchema(`{
//	    "type": "object",
//	    "required": ["sku", "quantity"],
//	    "properties": {
//	        "sku":      {"type": "string", "minLength": 1},
//	        "quantity": {"type": "integer", "minimum": 1}
//	    }
//	}`)
//
//	func createOrder(c *jsonrest.Context) (any, error) {
//	    if err := orderSchema.Validate(c.Body()); err != nil {
//	        return nil, err
//	    }
//	    ...
//	}
package validate
