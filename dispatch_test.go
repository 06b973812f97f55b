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
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// perform runs one request through a dispatcher and returns the recorder.
func perform(d *Dispatcher, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "http://example.com"+path, nil)
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)
	return w
}

// TestDispatcher_BasicRouting verifies end-to-end dispatch for literal,
// parameterized, and catch-all routes.
func TestDispatcher_BasicRouting(t *testing.T) {
	d := MustNew()
	d.GET("/", func(c *Context) {
		c.String(http.StatusOK, "root")
	})
	d.GET("/users/{id}", func(c *Context) {
		c.Stringf(http.StatusOK, "user:%s", c.Param("id"))
	})
	d.GET("/static/{*filepath}", func(c *Context) {
		c.Stringf(http.StatusOK, "file:%s", c.Param("filepath"))
	})

	w := perform(d, "GET", "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root", w.Body.String())

	w = perform(d, "GET", "/users/42")
	assert.Equal(t, "user:42", w.Body.String())

	w = perform(d, "GET", "/static/css/site.css")
	assert.Equal(t, "file:css/site.css", w.Body.String())

	// Case-insensitive literals.
	w = perform(d, "GET", "/USERS/42")
	assert.Equal(t, "user:42", w.Body.String())
}

// TestDispatcher_MethodDispatch verifies distinct handlers per method on
// one path, including a lowercase request method.
func TestDispatcher_MethodDispatch(t *testing.T) {
	d := MustNew()
	d.GET("/x", func(c *Context) { c.String(http.StatusOK, "get") })
	d.POST("/x", func(c *Context) { c.String(http.StatusCreated, "post") })

	w := perform(d, "GET", "/x")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "get", w.Body.String())

	w = perform(d, "POST", "/x")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "post", w.Body.String())

	w = perform(d, "get", "/x")
	assert.Equal(t, "get", w.Body.String())
}

// TestDispatcher_NotFound verifies that unmatched requests produce a
// deterministic 404, and that NoRoute replaces it.
func TestDispatcher_NotFound(t *testing.T) {
	d := MustNew()
	d.GET("/known", func(c *Context) { c.Status(http.StatusOK) })

	w := perform(d, "GET", "/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)

	d.NoRoute(func(c *Context) {
		c.JSON(http.StatusNotFound, map[string]string{"error": "route not found"})
	})
	w = perform(d, "GET", "/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "route not found"}`, w.Body.String())

	// nil restores the default.
	d.NoRoute(nil)
	w = perform(d, "GET", "/unknown")
	assert.Contains(t, w.Body.String(), "404 page not found")
}

// TestDispatcher_Fallback verifies the fallback handler covers unmatched
// requests with empty route data and wins over the 404 terminal.
func TestDispatcher_Fallback(t *testing.T) {
	d := MustNew()
	d.GET("/known", func(c *Context) { c.String(http.StatusOK, "known") })
	require.NoError(t, d.Fallback(func(c *Context) {
		assert.Empty(t, c.Params())
		c.String(http.StatusOK, "fallback")
	}))

	w := perform(d, "GET", "/unknown")
	assert.Equal(t, "fallback", w.Body.String())

	w = perform(d, "PUT", "/anything/else")
	assert.Equal(t, "fallback", w.Body.String())

	w = perform(d, "GET", "/known")
	assert.Equal(t, "known", w.Body.String())

	assert.ErrorIs(t, d.Fallback(func(c *Context) {}), ErrFallbackRegistered)
}

// TestDispatcher_MiddlewareOrdering verifies the full pipeline order with
// the routing stage appended last and a matched route as terminal work.
func TestDispatcher_MiddlewareOrdering(t *testing.T) {
	var trace []string

	d := MustNew()
	d.Use(marker("A", &trace), marker("B", &trace), marker("C", &trace))
	d.GET("/t", func(c *Context) {
		trace = append(trace, "T")
		c.Status(http.StatusOK)
	})

	perform(d, "GET", "/t")

	assert.Equal(t, []string{
		"A-pre", "B-pre", "C-pre", "T", "C-post", "B-post", "A-post",
	}, trace)
}

// TestDispatcher_MiddlewareShortCircuit verifies an auth-style rejection
// prevents routing and the handler entirely.
func TestDispatcher_MiddlewareShortCircuit(t *testing.T) {
	handlerRan := false

	d := MustNew()
	d.Use(func(next Handler) Handler {
		return func(c *Context) {
			if c.Request.Header.Get("Authorization") == "" {
				c.String(http.StatusUnauthorized, "denied")
				return
			}
			next(c)
		}
	})
	d.GET("/secret", func(c *Context) {
		handlerRan = true
		c.String(http.StatusOK, "ok")
	})

	w := perform(d, "GET", "/secret")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, handlerRan)

	req := httptest.NewRequest("GET", "http://example.com/secret", nil)
	req.Header.Set("Authorization", "Bearer token")
	w = httptest.NewRecorder()
	d.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, handlerRan)
}

// TestDispatcher_RegistrationAfterWarmup verifies that the warmup freeze
// turns late registration into an explicit error.
func TestDispatcher_RegistrationAfterWarmup(t *testing.T) {
	d := MustNew()
	d.GET("/x", func(c *Context) { c.Status(http.StatusOK) })
	d.Warmup()

	err := d.Handle("GET", "/late", func(c *Context) {})
	assert.ErrorIs(t, err, ErrRegistryFrozen)

	assert.Panics(t, func() {
		d.GET("/late", func(c *Context) {})
	})
}

// TestDispatcher_MalformedTemplatePanics verifies the verb helpers panic
// on malformed templates (a startup programming error).
func TestDispatcher_MalformedTemplatePanics(t *testing.T) {
	d := MustNew()
	assert.Panics(t, func() {
		d.GET("/bad/{", func(c *Context) {})
	})

	// The error-returning surface reports instead of panicking.
	err := d.Handle("GET", "/bad/{", func(c *Context) {})
	assert.Error(t, err)
}

// TestDispatcher_InvalidTimeouts verifies configuration validation at
// construction.
func TestDispatcher_InvalidTimeouts(t *testing.T) {
	_, err := New(WithServerTimeouts(0, time.Second, time.Second, time.Second))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerTimeoutInvalid)

	assert.Panics(t, func() {
		MustNew(WithServerTimeouts(time.Second, -time.Second, time.Second, time.Second))
	})

	d, err := New(WithServerTimeouts(time.Second, time.Second, time.Second, time.Second))
	require.NoError(t, err)
	assert.NotNil(t, d)
}

// recorderStub is a minimal ObservabilityRecorder capturing lifecycle calls.
type recorderStub struct {
	startCalls atomic.Int32
	endCalls   atomic.Int32
	wrapCalls  atomic.Int32

	exclude      bool
	lastTemplate string
	lastStatus   int
}

type stubStateKey struct{}

func (r *recorderStub) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	r.startCalls.Add(1)
	ctx = context.WithValue(ctx, stubStateKey{}, "enriched")
	if r.exclude {
		return ctx, nil
	}
	return ctx, &struct{}{}
}

func (r *recorderStub) WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter {
	r.wrapCalls.Add(1)
	return &responseWriter{ResponseWriter: w}
}

func (r *recorderStub) BuildRequestLogger(ctx context.Context, req *http.Request, template string) *slog.Logger {
	return NoopLogger()
}

func (r *recorderStub) OnRequestEnd(ctx context.Context, state any, w http.ResponseWriter, template string) {
	r.endCalls.Add(1)
	r.lastTemplate = template
	if info, ok := w.(ResponseInfo); ok {
		r.lastStatus = info.StatusCode()
	}
}

// TestDispatcher_ObservabilityLifecycle verifies the start/wrap/end cycle
// and that ends are labeled by route template, not raw path.
func TestDispatcher_ObservabilityLifecycle(t *testing.T) {
	rec := &recorderStub{}
	d := MustNew(WithObservability(rec))
	d.GET("/users/{id}", func(c *Context) {
		// The enriched context must be visible to the handler.
		assert.Equal(t, "enriched", c.RequestContext().Value(stubStateKey{}))
		c.String(http.StatusOK, "ok")
	})

	perform(d, "GET", "/users/9")

	assert.Equal(t, int32(1), rec.startCalls.Load())
	assert.Equal(t, int32(1), rec.wrapCalls.Load())
	assert.Equal(t, int32(1), rec.endCalls.Load())
	assert.Equal(t, "/users/{id}", rec.lastTemplate)
	assert.Equal(t, http.StatusOK, rec.lastStatus)

	perform(d, "GET", "/missing")
	assert.Equal(t, TemplateNotFound, rec.lastTemplate)
	assert.Equal(t, http.StatusNotFound, rec.lastStatus)
}

// TestDispatcher_ObservabilityExclusion verifies that a nil state skips
// wrapping and OnRequestEnd but keeps the enriched context.
func TestDispatcher_ObservabilityExclusion(t *testing.T) {
	rec := &recorderStub{exclude: true}
	d := MustNew(WithObservability(rec))

	var sawEnriched bool
	d.GET("/health", func(c *Context) {
		sawEnriched = c.RequestContext().Value(stubStateKey{}) == "enriched"
		c.Status(http.StatusOK)
	})

	perform(d, "GET", "/health")

	assert.True(t, sawEnriched)
	assert.Equal(t, int32(1), rec.startCalls.Load())
	assert.Zero(t, rec.wrapCalls.Load())
	assert.Zero(t, rec.endCalls.Load())
}

// TestDispatcher_RegistrySurface verifies that startup collaborators can
// register through the exposed registry directly.
func TestDispatcher_RegistrySurface(t *testing.T) {
	d := MustNew()
	require.NoError(t, d.Registry().Map("GET", "/mapped/{id}", func(c *Context) {
		c.Stringf(http.StatusOK, "mapped:%s", c.Param("id"))
	}))

	w := perform(d, "GET", "/mapped/5")
	assert.Equal(t, "mapped:5", w.Body.String())
}
