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
	"fmt"
	"net/http"
	"sync"
)

// Dispatcher ties a route registry and a middleware pipeline into an
// http.Handler.
//
// Registration (Use, GET/POST/..., Fallback) is a single-threaded startup
// phase. The first request — or an explicit Warmup call — freezes the
// registry, appends the routing stage, and builds the pipeline once; from
// then on the Dispatcher is immutable and safe for unlimited concurrent
// requests.
//
// Example:
//
//	d := dispatch.MustNew()
//	d.Use(recovery.New(), accesslog.New(accesslog.WithLogger(logger)))
//	d.GET("/api/links/{id}", func(c *dispatch.Context) {
//	    c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
//	})
//	http.ListenAndServe(":8080", d)
type Dispatcher struct {
	registry *Registry
	pipeline *Pipeline

	observability ObservabilityRecorder

	// Custom handler for unmatched requests; nil means the default 404.
	noRouteHandler Handler
	noRouteMu      sync.RWMutex

	handler    Handler
	warmupOnce sync.Once

	serverTimeouts *serverTimeouts
	enableH2C      bool
}

// New creates a Dispatcher with optional configuration. Configuration is
// validated immediately, so invalid options surface at startup rather than
// at request time. For a version that panics instead of returning an
// error, use MustNew.
func New(opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		registry: NewRegistry(),
		pipeline: NewPipeline(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("dispatcher configuration validation failed: %w", err)
	}
	return d, nil
}

// MustNew is like New but panics on invalid configuration. Convenient when
// a bad configuration should fail the process immediately at startup.
func MustNew(opts ...Option) *Dispatcher {
	d, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("dispatch.MustNew: %v", err))
	}
	return d
}

// validate checks the dispatcher configuration for common errors.
func (d *Dispatcher) validate() error {
	if t := d.serverTimeouts; t != nil {
		if t.readHeader <= 0 || t.read <= 0 || t.write <= 0 || t.idle <= 0 {
			return ErrServerTimeoutInvalid
		}
	}
	return nil
}

// Registry returns the dispatcher's route registry, for collaborators
// (controller mappers, module installers) that register routes through the
// Map/MapFallback surface directly.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Pipeline returns the dispatcher's middleware pipeline. Branch it to
// compose sub-pipelines sharing the same property bag.
func (d *Dispatcher) Pipeline() *Pipeline {
	return d.pipeline
}

// Use appends middleware to the pipeline in execution order.
// Must be called before the first request; the pipeline panics on
// registration after build.
func (d *Dispatcher) Use(middleware ...Middleware) *Dispatcher {
	d.pipeline.Use(middleware...)
	return d
}

// Handle registers a route for an arbitrary method. It is the error-
// returning registration surface; the verb helpers below panic instead,
// which reads better in main-style wiring where a malformed template is a
// programming error.
func (d *Dispatcher) Handle(method, template string, handler Handler) error {
	return d.registry.Map(method, template, handler)
}

// handle registers a route and panics on failure; backs the verb helpers.
func (d *Dispatcher) handle(method, template string, handler Handler) *Dispatcher {
	if err := d.registry.Map(method, template, handler); err != nil {
		panic(fmt.Sprintf("dispatch: %v", err))
	}
	return d
}

// GET registers a handler for GET requests on the given route template.
func (d *Dispatcher) GET(template string, handler Handler) *Dispatcher {
	return d.handle(http.MethodGet, template, handler)
}

// POST registers a handler for POST requests on the given route template.
func (d *Dispatcher) POST(template string, handler Handler) *Dispatcher {
	return d.handle(http.MethodPost, template, handler)
}

// PUT registers a handler for PUT requests on the given route template.
func (d *Dispatcher) PUT(template string, handler Handler) *Dispatcher {
	return d.handle(http.MethodPut, template, handler)
}

// PATCH registers a handler for PATCH requests on the given route template.
func (d *Dispatcher) PATCH(template string, handler Handler) *Dispatcher {
	return d.handle(http.MethodPatch, template, handler)
}

// DELETE registers a handler for DELETE requests on the given route template.
func (d *Dispatcher) DELETE(template string, handler Handler) *Dispatcher {
	return d.handle(http.MethodDelete, template, handler)
}

// HEAD registers a handler for HEAD requests on the given route template.
func (d *Dispatcher) HEAD(template string, handler Handler) *Dispatcher {
	return d.handle(http.MethodHead, template, handler)
}

// OPTIONS registers a handler for OPTIONS requests on the given route template.
func (d *Dispatcher) OPTIONS(template string, handler Handler) *Dispatcher {
	return d.handle(http.MethodOptions, template, handler)
}

// Fallback registers the handler for requests no route matches, any
// method, any path. A second call is rejected with ErrFallbackRegistered.
func (d *Dispatcher) Fallback(handler Handler) error {
	return d.registry.MapFallback(handler)
}

// NoRoute sets a custom handler for requests that neither a route nor the
// fallback covered, replacing the default 404 response. Unlike route
// registration this may change at runtime; pass nil to restore the
// default.
func (d *Dispatcher) NoRoute(handler Handler) {
	d.noRouteMu.Lock()
	d.noRouteHandler = handler
	d.noRouteMu.Unlock()
}

// Warmup freezes the registry, appends the routing stage, and builds the
// pipeline. It runs exactly once; ServeHTTP calls it lazily, so calling it
// explicitly after registration is optional but keeps the first request
// from paying the build cost.
func (d *Dispatcher) Warmup() {
	d.warmupOnce.Do(d.doWarmup)
}

// doWarmup performs the one-time build (called via sync.Once).
func (d *Dispatcher) doWarmup() {
	d.registry.Freeze()
	d.pipeline.Use(Routing(d.registry))
	d.handler = d.pipeline.Build(d.terminal)
}

// terminal is the pipeline's innermost handler: everything unmatched ends
// here with a deterministic not-found outcome.
func (d *Dispatcher) terminal(c *Context) {
	c.routeTemplate = TemplateNotFound

	d.noRouteMu.RLock()
	custom := d.noRouteHandler
	d.noRouteMu.RUnlock()

	if custom != nil {
		custom(c)
		return
	}
	c.NotFound()
}

// ServeHTTP implements http.Handler.
//
// Per request: the observability lifecycle starts and may enrich the
// request context; the response writer is wrapped so status and size are
// observable; a pooled Context is initialized and sent through the built
// pipeline (outer middleware first, then routing, then the matched handler
// or the not-found terminal); finally the context returns to the pool and
// the observability lifecycle ends with the matched route template.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	d.Warmup()

	ctx := req.Context()
	var obsState any

	if d.observability != nil {
		enrichedCtx, state := d.observability.OnRequestStart(ctx, req)
		if enrichedCtx != ctx {
			ctx = enrichedCtx
			req = req.WithContext(ctx)
		}
		obsState = state
		if obsState != nil {
			w = d.observability.WrapResponseWriter(w, obsState)
		}
	}

	// Guarantee every stage can observe the response outcome.
	if _, ok := w.(ResponseInfo); !ok {
		w = &responseWriter{ResponseWriter: w}
	}

	c := acquireContext()
	c.Request = req
	c.Response = w
	c.observability = d.observability

	d.handler(c)

	template := c.routeTemplate
	if template == "" {
		template = TemplateNotFound
	}
	releaseContext(c)

	if obsState != nil {
		d.observability.OnRequestEnd(ctx, obsState, w, template)
	}
}
