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

// Package accesslog provides middleware for structured HTTP access logging.
//
// The middleware logs one record per request with method, path, matched
// route template, status code, response size, duration, client IP, user
// agent, and the request ID when the requestid middleware runs earlier in
// the pipeline. Output goes through log/slog, so any slog handler (JSON,
// text, custom) works.
//
// # Basic Usage
//
//	import (
//	    "log/slog"
//	    "os"
//	    "rivaas.dev/dispatch/middleware/accesslog"
//	)
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	d := dispatch.MustNew()
//	d.Use(accesslog.New(accesslog.WithLogger(logger)))
//
// # Log Levels
//
// Records are written at Info. Responses with a 5xx status are raised to
// Error, and requests slower than the configured threshold to Warn, so
// alerting can key off the level alone.
//
// # Excluding Noise
//
// Health and metrics probes tend to drown out real traffic:
//
//	d.Use(accesslog.New(
//	    accesslog.WithLogger(logger),
//	    accesslog.WithExcludePaths("/health", "/metrics"),
//	    accesslog.WithExcludePrefixes("/debug/"),
//	))
package accesslog
