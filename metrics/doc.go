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

// Package metrics records OpenTelemetry metrics for dispatched requests.
//
// A Recorder owns a meter provider backed by one of three exporters:
// Prometheus (pull, with an optional self-served scrape endpoint), OTLP HTTP
// (push), or stdout (development). Its Observability method adapts the
// recorder to the dispatcher's observability hooks:
//
//	recorder, err := metrics.New(
//	    metrics.WithServiceName("orders"),
//	    metrics.WithPrometheus(":9090", "/metrics"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer recorder.Shutdown(context.Background())
//
//	d := jsonrest.MustNew(reg, jsonrest.WithObservability(recorder.Observability()))
//
// Instruments cover request duration, request and error counts, in-flight
// requests, and request/response sizes. Per-request attributes carry the
// matched route pattern and API version rather than the raw URL, keeping
// attribute cardinality bounded by the route table.
//
// By default the recorder does not touch the global OpenTelemetry meter
// provider, so multiple recorders can coexist in one process. Use
// WithGlobalMeterProvider to opt into global registration.
package metrics
