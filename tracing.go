// Copyright 2025 Patrick J. Scruggs
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

package slogdd

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type tracingConfig struct {
	tracerProvider trace.TracerProvider
	propagators    propagation.TextMapPropagator
}

// WithTracing records a client span for every events request and injects
// trace headers using OpenTelemetry. Nil arguments fall back to the global
// tracer provider and propagator.
//
// otelhttp records the request URL on the span, and the URL carries the API
// credentials in its query string. Only enable tracing with exporters that
// are trusted with those keys.
func WithTracing(tp trace.TracerProvider, propagators propagation.TextMapPropagator) Option {
	return func(o *options) {
		o.tracing = &tracingConfig{
			tracerProvider: tp,
			propagators:    propagators,
		}
	}
}

// instrumentClient returns a copy of client whose transport is wrapped with
// otelhttp.
func instrumentClient(client *http.Client, cfg *tracingConfig) *http.Client {
	tp := cfg.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	props := cfg.propagators
	if props == nil {
		props = otel.GetTextMapPropagator()
	}

	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	instrumented := *client
	instrumented.Transport = otelhttp.NewTransport(base,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(props),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "datadog.events " + r.Method
		}),
	)
	return &instrumented
}
