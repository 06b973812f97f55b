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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMount_MergesRoutes(t *testing.T) {
	admin := MustNew()
	admin.GET("/users/{id}", func(c *Context) {
		_ = c.String(http.StatusOK, "admin user "+c.Param("id"))
	})
	admin.GET("/stats", func(c *Context) {
		_ = c.String(http.StatusOK, "stats")
	})

	d := MustNew()
	require.NoError(t, d.Mount("/admin", admin))

	w := perform(d, http.MethodGet, "/admin/users/42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin user 42", w.Body.String())

	w = perform(d, http.MethodGet, "/admin/stats")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(d, http.MethodGet, "/users/42")
	assert.Equal(t, http.StatusNotFound, w.Code, "sub routes must only exist under the prefix")
}

func TestMount_FullTemplatePreserved(t *testing.T) {
	sub := MustNew()

	var seen string
	sub.GET("/users/{id}", func(c *Context) {
		seen = c.RouteTemplate()
		c.Status(http.StatusNoContent)
	})

	d := MustNew()
	require.NoError(t, d.Mount("/api", sub))

	perform(d, http.MethodGet, "/api/users/7")
	assert.Equal(t, "/api/users/{id}", seen)
}

func TestMount_SubMiddlewareRuns(t *testing.T) {
	var trace []string

	sub := MustNew()
	sub.Use(marker("sub", &trace))
	sub.GET("/ping", func(c *Context) {
		trace = append(trace, "handler")
		c.Status(http.StatusNoContent)
	})

	d := MustNew()
	d.Use(marker("parent", &trace))
	require.NoError(t, d.Mount("/api", sub))

	perform(d, http.MethodGet, "/api/ping")
	assert.Equal(t, []string{"parent-pre", "sub-pre", "handler", "sub-post", "parent-post"}, trace)
}

func TestMount_WithMiddleware(t *testing.T) {
	var trace []string

	sub := MustNew()
	sub.Use(marker("sub", &trace))
	sub.GET("/ping", func(c *Context) {
		trace = append(trace, "handler")
		c.Status(http.StatusNoContent)
	})

	d := MustNew()
	require.NoError(t, d.Mount("/api", sub, WithMiddleware(marker("mount", &trace))))

	perform(d, http.MethodGet, "/api/ping")
	assert.Equal(t, []string{"mount-pre", "sub-pre", "handler", "sub-post", "mount-post"}, trace)
}

func TestMount_WithNotFound(t *testing.T) {
	sub := MustNew()
	sub.GET("/ping", func(c *Context) { c.Status(http.StatusNoContent) })

	d := MustNew()
	d.GET("/top", func(c *Context) { c.Status(http.StatusNoContent) })
	require.NoError(t, d.Mount("/api", sub, WithNotFound(func(c *Context) {
		_ = c.String(http.StatusNotFound, "api not found")
	})))

	w := perform(d, http.MethodGet, "/api/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "api not found", w.Body.String())

	w = perform(d, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEqual(t, "api not found", w.Body.String(), "scoped not-found must not apply outside the prefix")
}

func TestMount_ConflictReturnsError(t *testing.T) {
	sub := MustNew()
	err := sub.Handle(http.MethodGet, "/ping", func(c *Context) {})
	require.NoError(t, err)

	d := MustNew()
	d.Warmup()

	err = d.Mount("/api", sub)
	require.ErrorIs(t, err, ErrRegistryFrozen)
}

func TestMount_NilSub(t *testing.T) {
	d := MustNew()
	require.NoError(t, d.Mount("/api", nil))
}
