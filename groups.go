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
	"net/http"
	"strings"
)

// Group organizes related routes under a common template prefix with
// shared middleware. Group middleware wraps only the handlers registered
// through the group; the global pipeline still runs first.
//
// The effective order for a grouped route is:
// [pipeline middleware...] → [group middleware...] → handler.
//
// Example:
//
//	api := d.Group("/api/v1", authMiddleware)
//	users := api.Group("/users")
//	users.GET("/{id}", getUserHandler) // Final template: /api/v1/users/{id}
type Group struct {
	dispatcher *Dispatcher
	prefix     string
	middleware []Middleware
}

// Group creates a route group on the dispatcher under the given prefix.
func (d *Dispatcher) Group(prefix string, middleware ...Middleware) *Group {
	return &Group{
		dispatcher: d,
		prefix:     normalizePrefix(prefix),
		middleware: middleware,
	}
}

// Use adds middleware that wraps all handlers subsequently registered
// through this group.
func (g *Group) Use(middleware ...Middleware) *Group {
	g.middleware = append(g.middleware, middleware...)
	return g
}

// Group creates a nested group. The nested group's prefix is the parent's
// prefix plus the provided prefix, and the parent's middleware is
// inherited.
//
// Example:
//
//	api := d.Group("/api")
//	v1 := api.Group("/v1")     // /api/v1
//	v1.GET("/users", handler)  // /api/v1/users
func (g *Group) Group(prefix string, middleware ...Middleware) *Group {
	combined := make([]Middleware, 0, len(g.middleware)+len(middleware))
	combined = append(combined, g.middleware...)
	combined = append(combined, middleware...)

	return &Group{
		dispatcher: g.dispatcher,
		prefix:     g.prefix + normalizePrefix(prefix),
		middleware: combined,
	}
}

// Handle registers a route in the group for an arbitrary method.
func (g *Group) Handle(method, template string, handler Handler) error {
	return g.dispatcher.Handle(method, g.template(template), g.wrap(handler))
}

// GET registers a handler for GET requests under the group prefix.
func (g *Group) GET(template string, handler Handler) *Group {
	return g.handle(http.MethodGet, template, handler)
}

// POST registers a handler for POST requests under the group prefix.
func (g *Group) POST(template string, handler Handler) *Group {
	return g.handle(http.MethodPost, template, handler)
}

// PUT registers a handler for PUT requests under the group prefix.
func (g *Group) PUT(template string, handler Handler) *Group {
	return g.handle(http.MethodPut, template, handler)
}

// PATCH registers a handler for PATCH requests under the group prefix.
func (g *Group) PATCH(template string, handler Handler) *Group {
	return g.handle(http.MethodPatch, template, handler)
}

// DELETE registers a handler for DELETE requests under the group prefix.
func (g *Group) DELETE(template string, handler Handler) *Group {
	return g.handle(http.MethodDelete, template, handler)
}

// handle registers through the dispatcher's panicking surface, matching
// the verb helpers on Dispatcher.
func (g *Group) handle(method, template string, handler Handler) *Group {
	g.dispatcher.handle(method, g.template(template), g.wrap(handler))
	return g
}

// template joins the group prefix with a route template.
func (g *Group) template(template string) string {
	if template == "" || template == "/" {
		return g.prefix
	}
	if !strings.HasPrefix(template, "/") {
		template = "/" + template
	}
	return g.prefix + template
}

// wrap composes the group middleware around a handler, innermost last.
func (g *Group) wrap(handler Handler) Handler {
	for i := len(g.middleware) - 1; i >= 0; i-- {
		handler = g.middleware[i](handler)
	}
	return handler
}

// normalizePrefix cleans a group prefix: leading slash, no trailing slash.
func normalizePrefix(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
