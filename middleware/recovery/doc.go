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

// Package recovery provides middleware for recovering from panics in request
// handlers.
//
// The middleware catches panics that occur during request handling, logs them
// with stack traces, and returns a graceful error response instead of
// crashing the server. It integrates with OpenTelemetry to mark spans with
// exception information for observability.
//
// # Basic Usage
//
//	import "rivaas.dev/dispatch/middleware/recovery"
//
//	d := dispatch.MustNew()
//	d.Use(recovery.New())
//
// Register this middleware first (or early) in the pipeline so it catches
// panics from all later stages and the handler.
//
// # Configuration Options
//
//   - WithLogger: custom slog.Logger for panic messages
//   - WithoutLogging: disable panic logging (useful in tests)
//   - WithHandler: custom recovery handler for error responses
//   - WithStackTrace: enable/disable stack trace capture (default: true)
//   - WithStackSize: maximum stack trace size in bytes (default: 4KB)
//
// # Custom Recovery Handler
//
//	d.Use(recovery.New(
//	    recovery.WithHandler(func(c *dispatch.Context, err any) {
//	        c.JSON(http.StatusInternalServerError, map[string]any{
//	            "error":      "Internal server error",
//	            "request_id": requestid.Get(c),
//	        })
//	    }),
//	))
//
// # OpenTelemetry Integration
//
// When the request carries a recording span, the middleware marks it with
// exception information:
//
//   - exception.escaped: true for panics (only place this is set)
//   - exception.type: type of the panic value
//   - exception.message: string representation of the panic value
package recovery
