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

// Package observe provides the production dispatch.ObservabilityRecorder:
// OpenTelemetry metrics, optional tracing, and request-scoped logging for
// request dispatch.
//
// # Quick Start
//
//	recorder := observe.MustNew(
//	    observe.WithServiceName("link-service"),
//	    observe.WithPrometheus(":9090", "/metrics"),
//	)
//	defer recorder.Shutdown(context.Background())
//
//	d := dispatch.MustNew(dispatch.WithObservability(recorder))
//
// Every request is then counted and timed, labeled by the matched route
// template (never the raw path) so metric cardinality stays bounded.
//
// # Providers
//
// Three metric exporters are built in:
//
//   - Prometheus (default): pull-based, served from a dedicated HTTP
//     endpoint, backed by a private Prometheus registry so multiple
//     recorders can coexist in one process.
//   - OTLP: push-based export over HTTP to an OpenTelemetry collector.
//   - Stdout: periodic JSON dumps for development and debugging.
//
// A custom metric.MeterProvider can be supplied with WithMeterProvider,
// which is also how tests plug in a manual reader.
//
// # Tracing
//
// WithTracing starts a server span per request. By default spans go to the
// globally registered tracer provider; WithStdoutTraces installs a local
// SDK provider that prints spans to stdout, useful in development.
//
// # Built-in Metrics
//
//   - http_request_duration_seconds: request duration histogram
//   - http_requests_total: request counter
//   - http_requests_active: in-flight request gauge
//   - http_response_size_bytes: response size histogram
//   - http_errors_total: responses with status >= 400
//
// All carry service.name, service.version, http.status_code,
// http.status_class, and http.route attributes.
package observe
