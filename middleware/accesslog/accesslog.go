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
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"rivaas.dev/dispatch"
)

// config holds the configuration for the accesslog middleware.
type config struct {
	logger          *slog.Logger
	excludePaths    map[string]struct{}
	excludePrefixes []string
	slowThreshold   time.Duration
	requestIDHeader string
}

// defaultConfig returns the default configuration for accesslog middleware.
func defaultConfig() *config {
	return &config{
		logger:          slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		excludePaths:    map[string]struct{}{},
		requestIDHeader: "X-Request-ID",
	}
}

// New returns a middleware that writes one structured log record per
// request, after the rest of the pipeline has run.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	d := dispatch.MustNew()
//	d.Use(accesslog.New(accesslog.WithLogger(logger)))
func New(opts ...Option) dispatch.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next dispatch.Handler) dispatch.Handler {
		return func(c *dispatch.Context) {
			if cfg.excluded(c.Path()) {
				next(c)
				return
			}

			start := time.Now()
			next(c)
			duration := time.Since(start)

			status := http.StatusOK
			var size int64
			if info, ok := c.Response.(dispatch.ResponseInfo); ok {
				status = info.StatusCode()
				size = info.Size()
			}

			attrs := []any{
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("route", c.RouteTemplate()),
				slog.Int("status", status),
				slog.Int64("size", size),
				slog.Duration("duration", duration),
				slog.String("client_ip", clientIP(c.Request)),
				slog.String("user_agent", c.Request.UserAgent()),
			}
			if id := c.Response.Header().Get(cfg.requestIDHeader); id != "" {
				attrs = append(attrs, slog.String("request_id", id))
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case cfg.slowThreshold > 0 && duration >= cfg.slowThreshold:
				level = slog.LevelWarn
			}

			cfg.logger.Log(c.RequestContext(), level, "request", attrs...)
		}
	}
}

// excluded reports whether a path is filtered out of the access log.
func (cfg *config) excluded(path string) bool {
	if _, ok := cfg.excludePaths[path]; ok {
		return true
	}
	for _, prefix := range cfg.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// clientIP extracts the real client IP, honoring the standard proxy
// headers before falling back to the connection's remote address.
func clientIP(req *http.Request) string {
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			forwarded = forwarded[:idx]
		}
		return strings.TrimSpace(forwarded)
	}
	if real := req.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
