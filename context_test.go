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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/dispatch/pattern"
)

func TestContext_RequestAccessors(t *testing.T) {
	c := newTestContext("POST", "/users/42?verbose=true")

	assert.Equal(t, "POST", c.Method())
	assert.Equal(t, "/users/42", c.Path())
}

func TestContext_Params(t *testing.T) {
	c := newTestContext("GET", "/users/42")
	c.setParams(pattern.Params{"id": "42"})

	assert.Equal(t, "42", c.Param("id"))
	assert.Equal(t, "42", c.Param("ID"))
	assert.Empty(t, c.Param("missing"))
	assert.Len(t, c.Params(), 1)
}

func TestContext_Bag(t *testing.T) {
	c := newTestContext("GET", "/")

	_, ok := c.Get("absent")
	assert.False(t, ok)

	c.Set("user", "alice")
	value, ok := c.Get("user")
	require.True(t, ok)
	assert.Equal(t, "alice", value)
	assert.Equal(t, "alice", c.MustGet("user"))

	assert.Panics(t, func() {
		c.MustGet("absent")
	})
}

func TestContext_String(t *testing.T) {
	c := newTestContext("GET", "/")
	w := c.Response.(*httptest.ResponseRecorder)

	require.NoError(t, c.String(http.StatusTeapot, "short and stout"))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "short and stout", w.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestContext_Stringf(t *testing.T) {
	c := newTestContext("GET", "/")
	w := c.Response.(*httptest.ResponseRecorder)

	require.NoError(t, c.Stringf(http.StatusOK, "user:%s n:%d", "alice", 3))
	assert.Equal(t, "user:alice n:3", w.Body.String())
}

func TestContext_JSON(t *testing.T) {
	c := newTestContext("GET", "/")
	w := c.Response.(*httptest.ResponseRecorder)

	require.NoError(t, c.JSON(http.StatusCreated, map[string]any{"id": 7, "name": "box"}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id": 7, "name": "box"}`, w.Body.String())
}

func TestContext_Header(t *testing.T) {
	c := newTestContext("GET", "/")
	w := c.Response.(*httptest.ResponseRecorder)

	c.Header("X-Custom", "v1")
	c.Status(http.StatusNoContent)

	assert.Equal(t, "v1", w.Header().Get("X-Custom"))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestContext_WriteAfterWrite(t *testing.T) {
	c := newTestContext("GET", "/")
	c.Response = &responseWriter{ResponseWriter: c.Response}

	require.NoError(t, c.String(http.StatusOK, "first"))
	// A second write must not attempt a second WriteHeader.
	require.NoError(t, c.String(http.StatusInternalServerError, "second"))

	info := c.Response.(ResponseInfo)
	assert.Equal(t, http.StatusOK, info.StatusCode())
}

func TestContext_LoggerWithoutObservability(t *testing.T) {
	c := newTestContext("GET", "/")

	logger := c.Logger()
	require.NotNil(t, logger)
	assert.Same(t, NoopLogger(), logger)

	// Logging through it must be a safe no-op.
	logger.Info("ignored", "key", "value")
}

func TestContext_Cancellation(t *testing.T) {
	c := newTestContext("GET", "/")
	assert.NoError(t, c.Err())

	ctx, cancel := context.WithCancel(context.Background())
	c.Request = c.Request.WithContext(ctx)
	cancel()

	assert.ErrorIs(t, c.Err(), context.Canceled)
	assert.ErrorIs(t, c.RequestContext().Err(), context.Canceled)
}

func TestContext_PoolReset(t *testing.T) {
	c := acquireContext()
	c.Request = httptest.NewRequest("GET", "http://example.com/x", nil)
	c.Response = httptest.NewRecorder()
	c.setParams(pattern.Params{"id": "1"})
	c.Set("k", "v")
	c.routeTemplate = "/x"

	releaseContext(c)

	fresh := acquireContext()
	// The pool may hand back the same instance; either way it must be clean.
	assert.Nil(t, fresh.Request)
	assert.Nil(t, fresh.Response)
	assert.Empty(t, fresh.Params())
	assert.Empty(t, fresh.RouteTemplate())
	_, ok := fresh.Get("k")
	assert.False(t, ok)
	releaseContext(fresh)
}
