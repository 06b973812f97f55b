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

// RouteDataKey is the request-bag key under which the routing middleware
// stores the matched route's data (a pattern.Params value). Handlers
// usually read parameters through Context.Param; the bag entry exists for
// stages that only see the generic bag.
const RouteDataKey = "dispatch.route_data"

// Routing returns the pipeline stage that bridges the middleware pipeline
// to a route registry.
//
// For each request it consults reg.TryMatch with the request's method and
// path. On a match it attaches the extracted route data to the context
// (and to the request bag under RouteDataKey) and invokes the matched
// handler directly — a matched route is terminal for this stage, next is
// bypassed. On no match it delegates to next, so a later stage or the
// pipeline's terminal produces the 404.
//
// Mount this stage after unconditional stages (panic capture, request IDs,
// access logging) and before nothing: it is typically the last Use call.
//
//	pl.Use(recovery, accesslog, dispatch.Routing(reg))
//	handler := pl.Build(dispatch.NotFound())
func Routing(reg *Registry) Middleware {
	return func(next Handler) Handler {
		return func(c *Context) {
			handler, params, route, ok := reg.lookup(c.Method(), c.Path())
			if !ok {
				next(c)
				return
			}

			if route != nil {
				c.routeTemplate = route.Pattern().Template()
			} else {
				c.routeTemplate = TemplateFallback
			}
			c.setParams(params)
			c.Set(RouteDataKey, params)
			handler(c)
		}
	}
}

// Route template sentinels reported for requests that did not match a
// registered pattern. Observability backends label by template, so these
// keep unmatched traffic from exploding label cardinality.
const (
	// TemplateFallback is reported when the registry's fallback handled
	// the request.
	TemplateFallback = "_fallback"

	// TemplateNotFound is reported when nothing handled the request.
	TemplateNotFound = "_not_found"
)

// NotFound returns the terminal handler for pipelines that end in routing:
// it produces the deterministic 404 for requests nothing matched. A request
// that falls off the end of the pipeline is never a silent no-op.
func NotFound() Handler {
	return func(c *Context) {
		c.NotFound()
	}
}
