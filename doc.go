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

// Package dispatch is the request-dispatch core of a lightweight HTTP
// framework: a route registry with first-match lookup, an onion-composed
// middleware pipeline, and the routing stage gluing the two together.
//
// # Components
//
//   - rivaas.dev/dispatch/pattern compiles route templates ("/users/{id}",
//     "/files/{*path}") and matches them against request paths.
//   - Registry binds (method, pattern) pairs to handlers, in registration
//     order, with an optional fallback for everything else.
//   - Pipeline accumulates Middleware and builds them into a single
//     Handler; the first middleware registered is the outermost layer.
//   - Routing is the pipeline stage that consults the registry, attaches
//     route data to the request, and invokes the matched handler.
//   - Dispatcher wires all of the above into an http.Handler with pooled
//     per-request contexts and an observability lifecycle.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "net/http"
//
//	    "rivaas.dev/dispatch"
//	)
//
//	func main() {
//	    d := dispatch.MustNew()
//
//	    d.GET("/", func(c *dispatch.Context) {
//	        c.JSON(http.StatusOK, map[string]string{"message": "Hello World"})
//	    })
//
//	    d.GET("/users/{id}", func(c *dispatch.Context) {
//	        c.JSON(http.StatusOK, map[string]string{"user_id": c.Param("id")})
//	    })
//
//	    d.Serve(":8080")
//	}
//
// # Lifecycle
//
// Registration is a single-threaded startup phase: routes, the fallback,
// and middleware are all registered before traffic. The first request (or
// an explicit Warmup) freezes the registry and builds the pipeline; from
// then on every structure on the request path is immutable, which is why
// matching and dispatch need no locks under arbitrary concurrency.
//
// # Middleware
//
// A Middleware is a factory from the next handler to this stage's handler:
//
//	func Timing() dispatch.Middleware {
//	    return func(next dispatch.Handler) dispatch.Handler {
//	        return func(c *dispatch.Context) {
//	            start := time.Now()
//	            next(c)
//	            c.Logger().Info("handled", "duration", time.Since(start))
//	        }
//	    }
//	}
//
// Stages run in registration order on the way in and reverse order on the
// way out, and any stage may skip next to short-circuit. The
// middleware/... subpackages provide recovery, request-ID, and access-log
// stages.
//
// # Unmatched requests
//
// A request nothing matches reaches the pipeline terminal and produces a
// deterministic 404 — never a silent no-op. Register a Fallback handler to
// take over all unmatched traffic, or NoRoute to customize the 404 itself.
package dispatch
