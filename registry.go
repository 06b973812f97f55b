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
	"strings"
	"sync/atomic"

	"rivaas.dev/dispatch/pattern"
)

// Route is one immutable (method, pattern, handler) table entry.
type Route struct {
	method  string
	pattern *pattern.Pattern
	handler Handler
}

// Method returns the entry's HTTP method as registered.
func (r *Route) Method() string {
	return r.method
}

// Pattern returns the entry's compiled pattern.
func (r *Route) Pattern() *pattern.Pattern {
	return r.pattern
}

// Registry is an ordered route table with method-aware, first-match lookup
// and an optional fallback handler.
//
// Registration is a startup phase: routes are registered single-threaded,
// the registry is frozen (explicitly via Freeze, or by the dispatcher's
// warmup), and only then exposed to traffic. After the freeze the table is
// immutable, so TryMatch needs no locks and is safe for unlimited
// concurrent callers.
//
// Registration order is significant: the first matching entry wins. Two
// registrations of the same method and pattern are both kept, and the
// earlier one shadows the later at lookup.
type Registry struct {
	routes   []*Route
	fallback Handler
	frozen   atomic.Bool
}

// NewRegistry creates an empty route registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Map compiles template and appends a route for the given method.
//
// A malformed template fails the single registration with the compile
// error; the registry's existing entries are unaffected. Registering after
// Freeze fails with ErrRegistryFrozen.
//
// Example:
//
//	reg := dispatch.NewRegistry()
//	if err := reg.Map(http.MethodGet, "/api/links/{id}", showLink); err != nil {
//	    log.Fatal(err)
//	}
func (reg *Registry) Map(method, template string, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("%w: %s %q", ErrNilHandler, method, template)
	}
	if reg.frozen.Load() {
		return fmt.Errorf("%w: %s %q", ErrRegistryFrozen, method, template)
	}

	p, err := pattern.Compile(template)
	if err != nil {
		return err
	}

	reg.routes = append(reg.routes, &Route{
		method:  strings.ToUpper(method),
		pattern: p,
		handler: handler,
	})
	return nil
}

// MapFallback registers the handler invoked for requests no route entry
// matches, regardless of method. At most one fallback is kept: a second
// registration is rejected with ErrFallbackRegistered and the first stays
// in effect, frozen or not.
func (reg *Registry) MapFallback(handler Handler) error {
	if handler == nil {
		return ErrNilHandler
	}
	if reg.fallback != nil {
		return ErrFallbackRegistered
	}
	if reg.frozen.Load() {
		return ErrRegistryFrozen
	}
	reg.fallback = handler
	return nil
}

// Freeze marks the table immutable. Lookups never require it, but freezing
// before serving turns a late registration into an explicit error instead
// of a data race.
func (reg *Registry) Freeze() {
	reg.frozen.Store(true)
}

// IsFrozen returns true once the registry no longer accepts registrations.
func (reg *Registry) IsFrozen() bool {
	return reg.frozen.Load()
}

// Routes returns the registered entries in registration order.
// The returned slice must not be modified.
func (reg *Registry) Routes() []*Route {
	return reg.routes
}

// HasFallback reports whether a fallback handler is registered.
func (reg *Registry) HasFallback() bool {
	return reg.fallback != nil
}

// TryMatch finds the handler for a request.
//
// Entries are scanned in registration order; entries whose method differs
// (case-insensitively) from the request method are skipped, and the first
// entry whose pattern matches the path wins. When nothing matches and a
// fallback is registered, the fallback is returned with empty route data.
// Otherwise TryMatch reports no match — a normal outcome, not an error.
//
// A linear scan is deliberate: route tables are small, and first-match
// semantics stay trivially correct. An index by first literal segment
// would be the upgrade path if a table ever grows past that.
func (reg *Registry) TryMatch(method, path string) (Handler, pattern.Params, bool) {
	handler, params, _, ok := reg.lookup(method, path)
	return handler, params, ok
}

// lookup is TryMatch plus the matched entry, which the routing middleware
// needs for the route template. The entry is nil for fallback matches.
func (reg *Registry) lookup(method, path string) (Handler, pattern.Params, *Route, bool) {
	for _, route := range reg.routes {
		if !strings.EqualFold(route.method, method) {
			continue
		}
		if params, ok := route.pattern.Match(path); ok {
			return route.handler, params, route, true
		}
	}

	if reg.fallback != nil {
		return reg.fallback, pattern.Params{}, nil, true
	}

	return nil, nil, nil, false
}
