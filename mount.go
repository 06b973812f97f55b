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
	"strings"
)

// mountCfg holds configuration for a mounted sub-dispatcher.
type mountCfg struct {
	extraMiddleware []Middleware
	notFoundHandler Handler
}

// MountOption configures how a sub-dispatcher is mounted.
type MountOption func(*mountCfg)

// WithMiddleware adds middleware that wraps every handler merged from the
// sub-dispatcher. It runs after the parent pipeline but before the
// sub-dispatcher's own middleware.
func WithMiddleware(m ...Middleware) MountOption {
	return func(cfg *mountCfg) {
		cfg.extraMiddleware = append(cfg.extraMiddleware, m...)
	}
}

// WithNotFound sets a handler for unmatched requests under the mount
// prefix, replacing the parent's not-found behavior for that subtree.
func WithNotFound(h Handler) MountOption {
	return func(cfg *mountCfg) {
		cfg.notFoundHandler = h
	}
}

// Mount merges a sub-dispatcher's routes into this dispatcher under the
// given prefix.
//
// Routes are copied with the prefix prepended, so the full route template
// (for example "/admin/users/{id}") is what matching and observability
// see, not a catch-all. The sub-dispatcher's pipeline middleware is
// composed around each merged handler; the parent pipeline still runs
// first.
//
// Mount must be called during registration, before the first request.
//
// Example:
//
//	admin := dispatch.MustNew()
//	admin.Use(adminAudit)
//	admin.GET("/users/{id}", getUser)
//
//	d.Mount("/admin", admin,
//	    dispatch.WithMiddleware(adminOnly),
//	    dispatch.WithNotFound(adminNotFound),
//	)
//	// Results in route: GET /admin/users/{id}
func (d *Dispatcher) Mount(prefix string, sub *Dispatcher, opts ...MountOption) error {
	if sub == nil {
		return nil
	}

	prefix = normalizePrefix(prefix)

	cfg := &mountCfg{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Extra mount middleware is outermost, then the sub-dispatcher's own
	// pipeline stages.
	wrap := make([]Middleware, 0, len(cfg.extraMiddleware)+len(sub.pipeline.stages))
	wrap = append(wrap, cfg.extraMiddleware...)
	wrap = append(wrap, sub.pipeline.stages...)

	for _, route := range sub.registry.Routes() {
		handler := route.handler
		for i := len(wrap) - 1; i >= 0; i-- {
			handler = wrap[i](handler)
		}
		template := prefix + route.Pattern().Template()
		if err := d.registry.Map(route.Method(), template, handler); err != nil {
			return err
		}
	}

	if cfg.notFoundHandler != nil {
		d.noRouteMu.Lock()
		parent := d.noRouteHandler
		d.noRouteMu.Unlock()

		d.NoRoute(func(c *Context) {
			if strings.HasPrefix(c.Path(), prefix) {
				cfg.notFoundHandler(c)
				return
			}
			if parent != nil {
				parent(c)
				return
			}
			c.NotFound()
		})
	}

	return nil
}
