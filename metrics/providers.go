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
	"strings"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// initProvider builds the meter provider for the configured backend. With
// WithMeterProvider the caller's provider is used as-is.
func (r *Recorder) initProvider() error {
	if r.customProvider {
		if r.meterProvider == nil {
			return fmt.Errorf("custom meter provider is nil")
		}
		return nil
	}

	var err error
	switch r.provider {
	case PrometheusProvider:
		err = r.initPrometheus()
	case OTLPProvider:
		err = r.initOTLP()
	case StdoutProvider:
		err = r.initStdout()
	default:
		return fmt.Errorf("unsupported provider %q", r.provider)
	}
	if err != nil {
		return err
	}

	if r.registerGlobal {
		otel.SetMeterProvider(r.meterProvider)
	}
	return nil
}

// initPrometheus wires the exporter to a private registry so multiple
// recorders can coexist without collector name collisions.
func (r *Recorder) initPrometheus() error {
	r.prometheusRegistry = promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(r.prometheusRegistry))
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}

	r.meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	r.prometheusHandler = promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{})
	return nil
}

func (r *Recorder) initOTLP() error {
	var opts []otlpmetrichttp.Option

	if r.otlpEndpoint != "" {
		endpoint := r.otlpEndpoint
		insecure := false
		if strings.HasPrefix(endpoint, "http://") {
			endpoint = strings.TrimPrefix(endpoint, "http://")
			insecure = true
		} else {
			endpoint = strings.TrimPrefix(endpoint, "https://")
		}
		if idx := strings.Index(endpoint, "/"); idx != -1 {
			endpoint = endpoint[:idx]
		}

		opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		if insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return fmt.Errorf("create otlp exporter: %w", err)
	}

	r.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(r.exportInterval),
		)),
	)
	return nil
}

func (r *Recorder) initStdout() error {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("create stdout exporter: %w", err)
	}

	r.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
			exporter,
			sdkmetric.WithInterval(r.exportInterval),
		)),
	)
	return nil
}
