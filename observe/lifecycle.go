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
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/dispatch"
)

// Compile-time check that Recorder satisfies the dispatcher's lifecycle.
var _ dispatch.ObservabilityRecorder = (*Recorder)(nil)

// requestState carries per-request telemetry between lifecycle hooks.
type requestState struct {
	startTime time.Time
	span      trace.Span
	attrs     []attribute.KeyValue
}

// OnRequestStart begins the telemetry lifecycle for a request. Requests on
// excluded paths return a nil state and skip metrics and spans while
// keeping context propagation intact.
func (r *Recorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if _, excluded := r.excludePaths[req.URL.Path]; excluded {
		return ctx, nil
	}

	state := &requestState{
		startTime: time.Now(),
		attrs:     make([]attribute.KeyValue, 2, 8),
	}
	state.attrs[0] = r.serviceNameAttr
	state.attrs[1] = r.serviceVersionAttr

	if r.tracingEnabled {
		ctx, state.span = r.tracer.Start(ctx, req.Method+" "+req.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.String("url.path", req.URL.Path),
			),
		)
	}

	r.activeRequests.Add(ctx, 1, metric.WithAttributes(state.attrs...))

	return ctx, state
}

// WrapResponseWriter wraps the writer so the response outcome is readable
// at OnRequestEnd. The returned writer implements dispatch.ResponseInfo.
func (r *Recorder) WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter {
	if state == nil {
		return w
	}
	if _, ok := w.(dispatch.ResponseInfo); ok {
		return w
	}
	return &responseWriter{ResponseWriter: w}
}

// BuildRequestLogger returns a request-scoped logger carrying the service
// identity, route template, and trace correlation IDs when a span is
// active. Without a configured logger it returns the shared no-op logger.
func (r *Recorder) BuildRequestLogger(ctx context.Context, req *http.Request, template string) *slog.Logger {
	if r.requestLogger == nil {
		return dispatch.NoopLogger()
	}

	logger := r.requestLogger.With(
		slog.String("service", r.serviceName),
		slog.String("method", req.Method),
		slog.String("route", template),
	)

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		logger = logger.With(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
		)
	}

	return logger
}

// OnRequestEnd records the request outcome: duration and count metrics
// labeled by route template, and span completion when tracing is enabled.
func (r *Recorder) OnRequestEnd(ctx context.Context, state any, w http.ResponseWriter, template string) {
	s, ok := state.(*requestState)
	if !ok || s == nil {
		return
	}

	statusCode := http.StatusOK
	var size int64
	if info, ok := w.(dispatch.ResponseInfo); ok {
		statusCode = info.StatusCode()
		size = info.Size()
	}

	duration := time.Since(s.startTime).Seconds()

	finalAttrs := append(s.attrs,
		attribute.Int("http.status_code", statusCode),
		attribute.String("http.status_class", statusClass(statusCode)),
		attribute.String("http.route", template),
	)

	r.requestDuration.Record(ctx, duration, metric.WithAttributes(finalAttrs...))
	r.requestCount.Add(ctx, 1, metric.WithAttributes(finalAttrs...))
	r.activeRequests.Add(ctx, -1, metric.WithAttributes(s.attrs...))

	if statusCode >= 400 {
		r.errorCount.Add(ctx, 1, metric.WithAttributes(finalAttrs...))
	}
	if size > 0 {
		r.responseSize.Record(ctx, size, metric.WithAttributes(finalAttrs...))
	}

	if s.span != nil {
		s.span.SetAttributes(
			attribute.Int("http.response.status_code", statusCode),
			attribute.String("http.route", template),
		)
		if statusCode >= 500 {
			s.span.SetStatus(codes.Error, http.StatusText(statusCode))
		}
		s.span.End()
	}
}

// responseWriter captures status code and size for OnRequestEnd.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int64
	written    bool
}

var _ dispatch.ResponseInfo = (*responseWriter)(nil)

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.written = true
	}
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)
	return n, err
}

func (rw *responseWriter) StatusCode() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

func (rw *responseWriter) Size() int64 {
	return rw.size
}

func (rw *responseWriter) Written() bool {
	return rw.written
}

func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
