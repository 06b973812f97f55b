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

import "time"

// Option defines functional options for dispatcher configuration.
type Option func(*Dispatcher)

// WithObservability sets the observability recorder driving metrics,
// tracing, and request-scoped logging. Pass nil to disable all
// observability (the default).
//
// Example:
//
//	rec, _ := observe.New(observe.WithPrometheus())
//	d := dispatch.MustNew(dispatch.WithObservability(rec))
func WithObservability(recorder ObservabilityRecorder) Option {
	return func(d *Dispatcher) {
		d.observability = recorder
	}
}

// WithServerTimeouts configures the HTTP server timeouts used by Serve and
// ServeTLS. These matter in production: without them a slow client can
// hold a connection open indefinitely.
//
// Defaults when unset: 5s read-header, 15s read, 30s write, 60s idle.
// All four values must be positive or New fails validation.
//
// Example:
//
//	d := dispatch.MustNew(dispatch.WithServerTimeouts(
//	    10*time.Second,  // ReadHeaderTimeout
//	    30*time.Second,  // ReadTimeout
//	    60*time.Second,  // WriteTimeout
//	    120*time.Second, // IdleTimeout
//	))
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(d *Dispatcher) {
		d.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

// WithH2C enables HTTP/2 cleartext support in Serve.
//
// Only use in development or behind a trusted load balancer; do not enable
// on public-facing servers without TLS.
func WithH2C(enable bool) Option {
	return func(d *Dispatcher) {
		d.enableH2C = enable
	}
}
