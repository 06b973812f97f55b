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
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"rivaas.dev/dispatch/pattern"
)

// Handler processes one request through its Context.
// Handlers run concurrently across requests; a Handler must not retain the
// Context (or anything reachable from it) past its return.
type Handler func(c *Context)

// Context carries a single request through the middleware pipeline to its
// handler. It wraps the transport's request and response, the route data
// extracted by matching, and a request-scoped key/value bag.
//
// Contexts are pooled: the dispatcher acquires one per request and returns
// it to the pool when the pipeline completes. Handlers and middleware must
// never keep a reference to a Context after returning.
type Context struct {
	// Request is the inbound HTTP request.
	Request *http.Request

	// Response is the response writer. Middleware may replace it with a
	// wrapping writer (the replacement is visible to all later stages).
	Response http.ResponseWriter

	params        pattern.Params
	values        map[string]any
	logger        *slog.Logger
	observability ObservabilityRecorder
	routeTemplate string
}

// Method returns the request's HTTP method.
func (c *Context) Method() string {
	return c.Request.Method
}

// Path returns the request's URL path, without the query component.
func (c *Context) Path() string {
	return c.Request.URL.Path
}

// Param returns the route parameter bound to name by the matched route.
// The lookup is case-insensitive. It returns "" when the request did not
// match a parameterized route or the name is unknown.
//
// Example:
//
//	d.GET("/users/{id}", func(c *dispatch.Context) {
//	    id := c.Param("id")
//	    ...
//	})
func (c *Context) Param(name string) string {
	return c.params.Get(name)
}

// Params returns the full route data for the matched route. The result is
// read-only and empty (but non-nil lookups still work) for fallback and
// unmatched requests.
func (c *Context) Params() pattern.Params {
	return c.params
}

// setParams attaches the route data produced by a successful match.
func (c *Context) setParams(params pattern.Params) {
	c.params = params
}

// Set stores a value in the request-scoped bag. The bag lives exactly as
// long as the request; it is the channel by which middleware hands data to
// later stages and to the handler.
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any, 4)
	}
	c.values[key] = value
}

// Get returns a value from the request-scoped bag.
func (c *Context) Get(key string) (any, bool) {
	value, ok := c.values[key]
	return value, ok
}

// MustGet returns a value from the request-scoped bag and panics if the
// key is absent. Use it for values a preceding stage is contractually
// required to have set.
func (c *Context) MustGet(key string) any {
	if value, ok := c.values[key]; ok {
		return value
	}
	panic(fmt.Sprintf("dispatch: key %q does not exist in request bag", key))
}

// Logger returns the request-scoped structured logger. It never returns
// nil: without a configured observability recorder it returns the shared
// no-op logger.
//
// The logger is built lazily on first use, after routing has run for
// matched requests, so it carries the matched route template.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		if c.observability == nil {
			return noopLogger
		}
		c.logger = c.observability.BuildRequestLogger(c.Request.Context(), c.Request, c.routeTemplate)
	}
	return c.logger
}

// RouteTemplate returns the template of the matched route (for example
// "/users/{id}"), or a sentinel such as "_not_found" when no route
// matched. Use the template, never the raw path, as a metrics label.
func (c *Context) RouteTemplate() string {
	return c.routeTemplate
}

// RequestContext returns the request's context.Context, which carries the
// per-request cancellation signal.
func (c *Context) RequestContext() context.Context {
	return c.Request.Context()
}

// Err reports the request's cancellation state: nil while the request is
// live, context.Canceled or context.DeadlineExceeded once it is not.
// Long-running stages should check it at their suspension points.
func (c *Context) Err() error {
	return c.Request.Context().Err()
}

// Header sets a response header. It must be called before the status is
// written.
func (c *Context) Header(key, value string) {
	c.Response.Header().Set(key, value)
}

// Status writes the response status code with no body.
func (c *Context) Status(code int) {
	c.Response.WriteHeader(code)
}

// String sends a plain text response with the given status code.
// The value is written as-is; use Stringf for formatting.
func (c *Context) String(code int, value string) error {
	if c.Response.Header().Get("Content-Type") == "" {
		c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	c.writeHeaderOnce(code)
	_, err := c.Response.Write([]byte(value))
	return err
}

// Stringf sends a formatted plain text response with the given status code.
func (c *Context) Stringf(code int, format string, values ...any) error {
	return c.String(code, fmt.Sprintf(format, values...))
}

// JSON sends a JSON response with the given status code.
//
// Example:
//
//	c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
func (c *Context) JSON(code int, obj any) error {
	c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.writeHeaderOnce(code)
	return json.NewEncoder(c.Response).Encode(obj)
}

// NotFound sends the deterministic 404 response used when no route and no
// fallback covers a request.
func (c *Context) NotFound() {
	http.Error(c.Response, "404 page not found", http.StatusNotFound)
}

// writeHeaderOnce writes the status code unless a wrapping writer reports
// headers already sent.
func (c *Context) writeHeaderOnce(code int) {
	if info, ok := c.Response.(ResponseInfo); ok && info.Written() {
		return
	}
	c.Response.WriteHeader(code)
}

// reset clears all per-request state so the Context can return to the pool.
func (c *Context) reset() {
	c.Request = nil
	c.Response = nil
	c.params = nil
	c.values = nil
	c.logger = nil
	c.observability = nil
	c.routeTemplate = ""
}
