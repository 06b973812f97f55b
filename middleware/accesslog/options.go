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

package accesslog

import (
	"log/slog"
	"time"
)

// Option defines functional options for accesslog middleware configuration.
type Option func(*config)

// WithLogger sets the slog.Logger used for access log output.
// Default: a JSON handler writing to stdout.
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	accesslog.New(accesslog.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithExcludePaths excludes exact paths from the access log.
//
// Example:
//
//	accesslog.New(accesslog.WithExcludePaths("/health", "/metrics"))
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.excludePaths[p] = struct{}{}
		}
	}
}

// WithExcludePrefixes excludes all paths with one of the given prefixes
// from the access log.
//
// Example:
//
//	accesslog.New(accesslog.WithExcludePrefixes("/debug/", "/internal/"))
func WithExcludePrefixes(prefixes ...string) Option {
	return func(cfg *config) {
		cfg.excludePrefixes = append(cfg.excludePrefixes, prefixes...)
	}
}

// WithSlowRequestThreshold raises the log level to Warn for requests that
// take at least the given duration. Zero (the default) disables the check.
//
// Example:
//
//	accesslog.New(accesslog.WithSlowRequestThreshold(500 * time.Millisecond))
func WithSlowRequestThreshold(threshold time.Duration) Option {
	return func(cfg *config) {
		cfg.slowThreshold = threshold
	}
}

// WithRequestIDHeader sets the header the request ID is read from.
// Default: "X-Request-ID". Align it with the requestid middleware when a
// custom header is configured there.
func WithRequestIDHeader(name string) Option {
	return func(cfg *config) {
		cfg.requestIDHeader = name
	}
}
