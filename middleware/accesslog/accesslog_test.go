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

package accesslog

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/dispatch"
	"rivaas.dev/dispatch/middleware/requestid"
)

// captureHandler is a slog.Handler that records emitted log records.
type captureHandler struct {
	mu      sync.Mutex
	records []capturedRecord
}

type capturedRecord struct {
	level slog.Level
	msg   string
	attrs map[string]any
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	h.records = append(h.records, capturedRecord{level: r.Level, msg: r.Message, attrs: attrs})
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) all() []capturedRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]capturedRecord(nil), h.records...)
}

func setup(opts ...Option) (*dispatch.Dispatcher, *captureHandler) {
	capture := &captureHandler{}
	logger := slog.New(capture)

	d := dispatch.MustNew()
	d.Use(New(append([]Option{WithLogger(logger)}, opts...)...))
	d.GET("/users/{id}", func(c *dispatch.Context) {
		c.String(http.StatusOK, "user "+c.Param("id"))
	})
	d.GET("/broken", func(c *dispatch.Context) {
		c.Status(http.StatusInternalServerError)
	})
	d.GET("/health", func(c *dispatch.Context) {
		c.Status(http.StatusOK)
	})
	return d, capture
}

func perform(d *dispatch.Dispatcher, path string, mutate ...func(*http.Request)) {
	req := httptest.NewRequest("GET", "http://example.com"+path, nil)
	for _, m := range mutate {
		m(req)
	}
	d.ServeHTTP(httptest.NewRecorder(), req)
}

func TestAccessLog_RecordFields(t *testing.T) {
	d, capture := setup()

	perform(d, "/users/42", func(req *http.Request) {
		req.Header.Set("User-Agent", "test-agent")
		req.RemoteAddr = "203.0.113.9:4711"
	})

	records := capture.all()
	require.Len(t, records, 1)
	r := records[0]

	assert.Equal(t, slog.LevelInfo, r.level)
	assert.Equal(t, "request", r.msg)
	assert.Equal(t, "GET", r.attrs["method"])
	assert.Equal(t, "/users/42", r.attrs["path"])
	assert.Equal(t, "/users/{id}", r.attrs["route"])
	assert.EqualValues(t, http.StatusOK, r.attrs["status"])
	assert.EqualValues(t, len("user 42"), r.attrs["size"])
	assert.Equal(t, "test-agent", r.attrs["user_agent"])
	assert.Equal(t, "203.0.113.9", r.attrs["client_ip"])
	assert.NotContains(t, r.attrs, "request_id")
}

func TestAccessLog_ServerErrorLevel(t *testing.T) {
	d, capture := setup()

	perform(d, "/broken")

	records := capture.all()
	require.Len(t, records, 1)
	assert.Equal(t, slog.LevelError, records[0].level)
	assert.EqualValues(t, http.StatusInternalServerError, records[0].attrs["status"])
}

func TestAccessLog_NotFoundRoute(t *testing.T) {
	d, capture := setup()

	perform(d, "/missing")

	records := capture.all()
	require.Len(t, records, 1)
	assert.Equal(t, dispatch.TemplateNotFound, records[0].attrs["route"])
	assert.EqualValues(t, http.StatusNotFound, records[0].attrs["status"])
}

func TestAccessLog_ExcludePaths(t *testing.T) {
	d, capture := setup(WithExcludePaths("/health"))

	perform(d, "/health")
	perform(d, "/users/1")

	records := capture.all()
	require.Len(t, records, 1)
	assert.Equal(t, "/users/1", records[0].attrs["path"])
}

func TestAccessLog_ExcludePrefixes(t *testing.T) {
	d, capture := setup(WithExcludePrefixes("/users/"))

	perform(d, "/users/1")
	perform(d, "/health")

	records := capture.all()
	require.Len(t, records, 1)
	assert.Equal(t, "/health", records[0].attrs["path"])
}

func TestAccessLog_SlowRequestWarns(t *testing.T) {
	capture := &captureHandler{}
	logger := slog.New(capture)

	d := dispatch.MustNew()
	d.Use(New(WithLogger(logger), WithSlowRequestThreshold(time.Millisecond)))
	d.GET("/slow", func(c *dispatch.Context) {
		time.Sleep(5 * time.Millisecond)
		c.Status(http.StatusOK)
	})

	perform(d, "/slow")

	records := capture.all()
	require.Len(t, records, 1)
	assert.Equal(t, slog.LevelWarn, records[0].level)
}

func TestAccessLog_ForwardedClientIP(t *testing.T) {
	d, capture := setup()

	perform(d, "/users/1", func(req *http.Request) {
		req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	})

	records := capture.all()
	require.Len(t, records, 1)
	assert.Equal(t, "198.51.100.7", records[0].attrs["client_ip"])
}

func TestAccessLog_RequestIDCorrelation(t *testing.T) {
	capture := &captureHandler{}
	logger := slog.New(capture)

	d := dispatch.MustNew()
	d.Use(requestid.New(), New(WithLogger(logger)))
	d.GET("/", func(c *dispatch.Context) {
		c.Status(http.StatusOK)
	})

	perform(d, "/")

	records := capture.all()
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].attrs["request_id"])
}
