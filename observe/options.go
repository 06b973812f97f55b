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

package observe

import (
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option defines functional options for Recorder configuration.
type Option func(*Recorder)

// WithMeterProvider supplies a custom OpenTelemetry metric.MeterProvider.
// Provider options (WithPrometheus, WithOTLP, WithStdout) are ignored when
// this is used, since the provider lifecycle belongs to the caller. This is
// also how tests plug in a manual reader.
//
// Example:
//
//	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
//	recorder := observe.MustNew(observe.WithMeterProvider(mp))
//	defer mp.Shutdown(context.Background())
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(r *Recorder) {
		r.meterProvider = provider
		r.customMeterProvider = true
	}
}

// WithGlobalMeterProvider registers the meter provider as the global
// OpenTelemetry default via otel.SetMeterProvider. Off by default so
// multiple recorders can coexist in one process.
func WithGlobalMeterProvider() Option {
	return func(r *Recorder) {
		r.registerGlobal = true
	}
}

// WithServiceName sets the service.name attribute on all telemetry.
func WithServiceName(name string) Option {
	return func(r *Recorder) {
		r.serviceName = name
	}
}

// WithServiceVersion sets the service.version attribute on all telemetry.
func WithServiceVersion(version string) Option {
	return func(r *Recorder) {
		r.serviceVersion = version
	}
}

// WithExportInterval sets the export interval for push-based providers
// (OTLP, stdout). Default: 30s.
func WithExportInterval(interval time.Duration) Option {
	return func(r *Recorder) {
		r.exportInterval = interval
	}
}

// WithDurationBuckets sets custom histogram boundaries, in seconds, for
// the request duration histogram. Default: DefaultDurationBuckets.
func WithDurationBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		r.durationBuckets = buckets
	}
}

// WithSizeBuckets sets custom histogram boundaries, in bytes, for the
// response size histogram. Default: DefaultSizeBuckets.
func WithSizeBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		r.sizeBuckets = buckets
	}
}

// WithServerDisabled disables the automatic Prometheus metrics server.
// Serve metrics manually via Recorder.Handler instead.
func WithServerDisabled() Option {
	return func(r *Recorder) {
		r.autoStartServer = false
	}
}

// WithStrictPort requires the metrics server to bind the exact configured
// port instead of discovering an alternative when it is taken.
func WithStrictPort() Option {
	return func(r *Recorder) {
		r.strictPort = true
	}
}

// WithEventHandler sets a custom EventHandler for internal operational
// events, for integrations beyond slog (alerting, error trackers).
func WithEventHandler(handler EventHandler) Option {
	return func(r *Recorder) {
		r.eventHandler = handler
	}
}

// WithLogger routes internal operational events to the given slog.Logger.
// Convenience wrapper around WithEventHandler.
func WithLogger(logger *slog.Logger) Option {
	return WithEventHandler(DefaultEventHandler(logger))
}

// WithRequestLogger sets the base logger from which per-request loggers
// are derived in BuildRequestLogger. Without it, Context.Logger returns
// the shared no-op logger.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	observe.MustNew(observe.WithRequestLogger(logger))
func WithRequestLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.requestLogger = logger
	}
}

// WithExcludePaths excludes exact request paths from the telemetry
// lifecycle. Typical for health and readiness probes.
//
// Example:
//
//	observe.MustNew(observe.WithExcludePaths("/health", "/ready"))
func WithExcludePaths(paths ...string) Option {
	return func(r *Recorder) {
		for _, p := range paths {
			r.excludePaths[p] = struct{}{}
		}
	}
}

// WithTracing enables a server span per request. Spans go to the globally
// registered tracer provider unless WithStdoutTraces or WithTracerProvider
// is also used.
func WithTracing() Option {
	return func(r *Recorder) {
		r.tracingEnabled = true
	}
}

// WithTracerProvider supplies a custom trace.TracerProvider and implies
// WithTracing.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(r *Recorder) {
		r.tracingEnabled = true
		r.tracerProvider = provider
	}
}

// WithStdoutTraces enables tracing with a local SDK provider that prints
// spans to stdout. Development and debugging only.
func WithStdoutTraces() Option {
	return func(r *Recorder) {
		r.tracingEnabled = true
		r.stdoutTraces = true
	}
}

// WithPrometheus configures the Prometheus provider with port and path.
//
// Example:
//
//	recorder := observe.MustNew(
//	    observe.WithPrometheus(":9090", "/metrics"),
//	    observe.WithServiceName("my-api"),
//	)
func WithPrometheus(port, path string) Option {
	return func(r *Recorder) {
		r.provider = PrometheusProvider
		r.providerSetCount++
		if port != "" && !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		r.metricsPort = port
		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		r.metricsPath = path
	}
}

// WithOTLP configures the OTLP HTTP provider with a collector endpoint.
//
// Example:
//
//	recorder := observe.MustNew(
//	    observe.WithOTLP("http://localhost:4318"),
//	)
func WithOTLP(endpoint string) Option {
	return func(r *Recorder) {
		r.provider = OTLPProvider
		r.providerSetCount++
		r.otlpEndpoint = endpoint
	}
}

// WithStdout configures the stdout provider for development/debugging.
//
// Example:
//
//	recorder := observe.MustNew(
//	    observe.WithStdout(),
//	    observe.WithExportInterval(time.Second),
//	)
func WithStdout() Option {
	return func(r *Recorder) {
		r.provider = StdoutProvider
		r.providerSetCount++
	}
}
