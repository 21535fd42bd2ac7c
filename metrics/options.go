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

package metrics

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Option configures a Recorder during New.
type Option func(*Recorder)

// WithServiceName sets the service.name attribute attached to every metric.
func WithServiceName(name string) Option {
	return func(r *Recorder) {
		r.serviceName = name
	}
}

// WithServiceVersion sets the service.version attribute attached to every
// metric.
func WithServiceVersion(version string) Option {
	return func(r *Recorder) {
		r.serviceVersion = version
	}
}

// WithPrometheus selects the Prometheus provider and sets where the scrape
// endpoint is served, e.g. WithPrometheus(":9090", "/metrics").
func WithPrometheus(addr, path string) Option {
	return func(r *Recorder) {
		r.provider = PrometheusProvider
		r.scrapeAddr = addr
		r.scrapePath = path
	}
}

// WithoutScrapeServer keeps the Prometheus provider from serving its own
// scrape endpoint. Retrieve the handler with Recorder.Handler and mount it
// on an existing server instead.
func WithoutScrapeServer() Option {
	return func(r *Recorder) {
		r.serveScrape = false
	}
}

// WithOTLP selects the OTLP HTTP provider pushing to the given collector
// endpoint, e.g. "http://localhost:4318".
func WithOTLP(endpoint string) Option {
	return func(r *Recorder) {
		r.provider = OTLPProvider
		r.otlpEndpoint = endpoint
	}
}

// WithStdout selects the stdout provider. Intended for development.
func WithStdout() Option {
	return func(r *Recorder) {
		r.provider = StdoutProvider
	}
}

// WithExportInterval sets the export interval of push-based providers.
// Ignored by the pull-based Prometheus provider.
func WithExportInterval(interval time.Duration) Option {
	return func(r *Recorder) {
		r.exportInterval = interval
	}
}

// WithMeterProvider records through a caller-owned meter provider instead of
// constructing one. The recorder will not flush or shut it down.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(r *Recorder) {
		r.meterProvider = mp
		r.customProvider = true
	}
}

// WithGlobalMeterProvider additionally registers the constructed meter
// provider as the OpenTelemetry global default.
func WithGlobalMeterProvider() Option {
	return func(r *Recorder) {
		r.registerGlobal = true
	}
}

// WithDurationBuckets overrides the request-duration histogram boundaries
// (seconds).
func WithDurationBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		r.durationBuckets = buckets
	}
}

// WithSizeBuckets overrides the request/response size histogram boundaries
// (bytes).
func WithSizeBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		r.sizeBuckets = buckets
	}
}

// WithLogger sets the logger for scrape-server lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}
