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

// Middleware wraps a "next" handler and returns the stage's own handler.
// A middleware may run logic before and after delegating to next, or skip
// next entirely to short-circuit the pipeline (auth rejections, cached
// responses).
type Middleware func(next Handler) Handler

// Pipeline accumulates middleware and composes them into a single Handler.
//
// Composition follows the onion model: the first middleware registered
// becomes the outermost wrapper, running first on the way in and last on
// the way out. Registering m1, m2, m3 and building with terminal t yields
// m1(m2(m3(t))).
//
// A Pipeline is built once, at startup, by a single goroutine; the Handler
// it produces is immutable and safe for unlimited concurrent requests. The
// composition itself never serializes stages — each request flows through
// its own call chain, and any stage may block on I/O without affecting
// other in-flight requests.
//
// Example:
//
//	pl := dispatch.NewPipeline()
//	pl.Use(requestID, accessLog).Use(dispatch.Routing(reg))
//	handler := pl.Build(notFound)
type Pipeline struct {
	stages []Middleware
	values map[string]any
	built  bool
}

// NewPipeline creates an empty pipeline with a fresh cross-middleware
// property bag.
func NewPipeline() *Pipeline {
	return &Pipeline{
		values: make(map[string]any),
	}
}

// Use appends middleware to the pipeline in execution order and returns
// the pipeline for chaining.
//
// Use panics when a middleware is nil, and when called after Build: the
// built handler can no longer change, so a late registration is a startup
// bug that must surface, not a silent no-op.
func (pl *Pipeline) Use(middleware ...Middleware) *Pipeline {
	if pl.built {
		panic("dispatch: Use called after Build; the pipeline is frozen")
	}
	for _, mw := range middleware {
		if mw == nil {
			panic("dispatch: nil middleware passed to Use")
		}
	}
	pl.stages = append(pl.stages, middleware...)
	return pl
}

// Build freezes the pipeline and composes its stages around the terminal
// handler. The terminal runs only when every stage delegated all the way
// through; it is the pipeline's innermost layer.
//
// Build panics on a nil terminal. Calling Build more than once is allowed
// and composes the same frozen stage list each time.
func (pl *Pipeline) Build(terminal Handler) Handler {
	if terminal == nil {
		panic("dispatch: nil terminal handler passed to Build")
	}
	pl.built = true

	// Wrap in reverse registration order so the first middleware lands
	// outermost.
	handler := terminal
	for i := len(pl.stages) - 1; i >= 0; i-- {
		handler = pl.stages[i](handler)
	}
	return handler
}

// Branch creates a pipeline that shares this pipeline's property bag but
// owns an independent, empty stage list. Use it to compose a sub-pipeline
// (for example, the stages mounted under a path prefix) without mutating
// the parent.
func (pl *Pipeline) Branch() *Pipeline {
	return &Pipeline{
		values: pl.values,
	}
}

// SetValue stores a value in the cross-middleware property bag shared by
// this pipeline and its branches. The bag is for build-time coordination
// between middleware registrations; it is written during startup, not per
// request.
func (pl *Pipeline) SetValue(key string, value any) {
	pl.values[key] = value
}

// Value returns a value from the shared property bag.
func (pl *Pipeline) Value(key string) (any, bool) {
	value, ok := pl.values[key]
	return value, ok
}

// Len returns the number of registered stages.
func (pl *Pipeline) Len() int {
	return len(pl.stages)
}
