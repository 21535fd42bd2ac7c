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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// meterName identifies this package's meter within a meter provider.
const meterName = "rivaas.dev/jsonrest/metrics"

// Histogram bucket defaults. Suitable for JSON APIs serving sub-millisecond
// to multi-second requests and payloads up to a few megabytes.
var (
	// DefaultDurationBuckets are histogram boundaries for request
	// duration in seconds.
	DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// DefaultSizeBuckets are histogram boundaries for request and
	// response sizes in bytes.
	DefaultSizeBuckets = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
)

// Provider names a metrics exporter backend.
type Provider string

const (
	// PrometheusProvider exposes metrics for scraping (default).
	PrometheusProvider Provider = "prometheus"
	// OTLPProvider pushes metrics to an OTLP HTTP collector.
	OTLPProvider Provider = "otlp"
	// StdoutProvider prints metrics to stdout, for development.
	StdoutProvider Provider = "stdout"
)

// Recorder owns the meter provider, the instruments, and (for Prometheus
// with auto-serve enabled) the scrape endpoint's HTTP server. All methods
// are safe for concurrent use.
type Recorder struct {
	serviceName    string
	serviceVersion string
	provider       Provider
	otlpEndpoint   string
	scrapeAddr     string
	scrapePath     string
	serveScrape    bool
	registerGlobal bool
	exportInterval time.Duration

	durationBuckets []float64
	sizeBuckets     []float64

	logger *slog.Logger

	meterProvider      metric.MeterProvider
	customProvider     bool
	prometheusRegistry *promclient.Registry
	prometheusHandler  http.Handler

	requestDuration metric.Float64Histogram
	requestCount    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
	requestSize     metric.Int64Histogram
	responseSize    metric.Int64Histogram
	errorCount      metric.Int64Counter

	serviceAttrs []attribute.KeyValue

	serverMu sync.Mutex
	server   *http.Server

	started  atomic.Bool
	shutdown atomic.Bool
}

// New creates a Recorder and initializes its provider and instruments. The
// default configuration records through a Prometheus exporter on a private
// registry and serves the scrape endpoint on :9090/metrics once Start is
// called.
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		serviceName:     "jsonrest-service",
		serviceVersion:  "1.0.0",
		provider:        PrometheusProvider,
		scrapeAddr:      ":9090",
		scrapePath:      "/metrics",
		serveScrape:     true,
		exportInterval:  30 * time.Second,
		durationBuckets: DefaultDurationBuckets,
		sizeBuckets:     DefaultSizeBuckets,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid metrics configuration: %w", err)
	}

	r.serviceAttrs = []attribute.KeyValue{
		attribute.String("service.name", r.serviceName),
		attribute.String("service.version", r.serviceVersion),
	}

	if err := r.initProvider(); err != nil {
		return nil, fmt.Errorf("initialize metrics provider: %w", err)
	}
	if err := r.initInstruments(); err != nil {
		return nil, fmt.Errorf("create metric instruments: %w", err)
	}

	return r, nil
}

// MustNew is New for startup wiring; it panics when construction fails.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("metrics.MustNew: %v", err))
	}
	return r
}

func (r *Recorder) validate() error {
	if r.serviceName == "" {
		return fmt.Errorf("service name cannot be empty")
	}
	if r.serviceVersion == "" {
		return fmt.Errorf("service version cannot be empty")
	}
	if r.exportInterval < time.Second {
		return fmt.Errorf("export interval %s is below one second", r.exportInterval)
	}

	switch r.provider {
	case PrometheusProvider:
		if r.serveScrape && (r.scrapeAddr == "" || r.scrapePath == "") {
			return fmt.Errorf("prometheus scrape endpoint requires an address and a path")
		}
	case OTLPProvider, StdoutProvider:
	default:
		return fmt.Errorf("unsupported provider %q", r.provider)
	}
	return nil
}

// Provider returns the configured exporter backend.
func (r *Recorder) Provider() Provider {
	return r.provider
}

// ServiceName returns the configured service name attribute value.
func (r *Recorder) ServiceName() string {
	return r.serviceName
}

// Handler returns the Prometheus scrape handler. Serve it yourself when the
// built-in server is disabled with WithoutScrapeServer.
func (r *Recorder) Handler() (http.Handler, error) {
	if r.prometheusHandler == nil {
		return nil, fmt.Errorf("scrape handler requires the prometheus provider, have %q", r.provider)
	}
	return r.prometheusHandler, nil
}

// Start brings up the scrape endpoint's HTTP server when the recorder is
// configured to serve one. Idempotent; recording itself needs no Start.
func (r *Recorder) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return nil
	}
	if r.provider != PrometheusProvider || !r.serveScrape || r.shutdown.Load() {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(r.scrapePath, r.prometheusHandler)

	server := &http.Server{
		Addr:         r.scrapeAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	r.serverMu.Lock()
	r.server = server
	r.serverMu.Unlock()

	go func() {
		r.logger.Info("metrics scrape endpoint starting",
			slog.String("address", r.scrapeAddr),
			slog.String("path", r.scrapePath),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.serverMu.Lock()
			r.server = nil
			r.serverMu.Unlock()
			r.logger.Error("metrics scrape endpoint failed", slog.Any("error", err))
		}
	}()

	return nil
}

// Shutdown stops the scrape server, flushes pending metrics, and shuts the
// meter provider down. Recorders built on a caller-provided meter provider
// leave that provider untouched. Idempotent.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if !r.shutdown.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error

	r.serverMu.Lock()
	server := r.server
	r.server = nil
	r.serverMu.Unlock()

	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("scrape server shutdown: %w", err))
		}
	}

	if mp, ok := r.meterProvider.(*sdkmetric.MeterProvider); ok && !r.customProvider {
		if err := mp.ForceFlush(ctx); err != nil {
			r.logger.Warn("metrics flush failed", slog.Any("error", err))
		}
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("metrics shutdown: %v", errs)
	}
	return nil
}

// ForceFlush exports pending metric data immediately. A no-op for the
// pull-based Prometheus provider.
func (r *Recorder) ForceFlush(ctx context.Context) error {
	if r.shutdown.Load() {
		return nil
	}
	if mp, ok := r.meterProvider.(*sdkmetric.MeterProvider); ok && !r.customProvider {
		if err := mp.ForceFlush(ctx); err != nil {
			return fmt.Errorf("metrics force flush: %w", err)
		}
	}
	return nil
}

func (r *Recorder) initInstruments() error {
	meter := r.meterProvider.Meter(meterName)
	var err error

	r.requestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Duration of dispatched requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...),
	)
	if err != nil {
		return err
	}

	r.requestCount, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of dispatched requests"),
	)
	if err != nil {
		return err
	}

	r.activeRequests, err = meter.Int64UpDownCounter(
		"http_requests_active",
		metric.WithDescription("Number of requests currently in the pipeline"),
	)
	if err != nil {
		return err
	}

	r.requestSize, err = meter.Int64Histogram(
		"http_request_size_bytes",
		metric.WithDescription("Size of request bodies in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(r.sizeBuckets...),
	)
	if err != nil {
		return err
	}

	r.responseSize, err = meter.Int64Histogram(
		"http_response_size_bytes",
		metric.WithDescription("Size of response bodies in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(r.sizeBuckets...),
	)
	if err != nil {
		return err
	}

	r.errorCount, err = meter.Int64Counter(
		"http_errors_total",
		metric.WithDescription("Total number of requests that rendered an error response"),
	)
	return err
}
