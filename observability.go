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

package dispatch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
)

// noopLogger is a singleton no-op logger used when no observability is
// configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger. ObservabilityRecorder
// implementations return it from BuildRequestLogger when logging is
// disabled.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// ObservabilityRecorder provides unified observability lifecycle hooks for
// HTTP requests. Implementations typically combine metrics, distributed
// tracing, and request-scoped logging; rivaas.dev/dispatch/observe is the
// production implementation.
//
// Lifecycle per request:
//
//  1. OnRequestStart(ctx, req) → (enrichedCtx, state). The enriched
//     context is always attached to the request. A nil state excludes the
//     request from the rest of the lifecycle (no wrapping, no
//     OnRequestEnd) while keeping the context enrichment, so downstream
//     calls still propagate traces from excluded paths.
//  2. WrapResponseWriter(w, state) wraps the writer to capture status and
//     size; only called when state != nil. The wrapped writer should
//     implement ResponseInfo.
//  3. BuildRequestLogger(ctx, req, template) builds the request-scoped
//     logger handed to handlers via Context.Logger.
//  4. OnRequestEnd(ctx, state, w, template) records the outcome. template
//     is the matched route template, or a sentinel such as
//     TemplateNotFound — implementations must label by template, never by
//     raw path, to bound metric cardinality.
//
// All methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)
	WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter
	BuildRequestLogger(ctx context.Context, req *http.Request, template string) *slog.Logger
	OnRequestEnd(ctx context.Context, state any, w http.ResponseWriter, template string)
}
