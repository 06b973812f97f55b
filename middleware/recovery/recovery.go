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

package recovery

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/dispatch"
)

// config holds the configuration for the recovery middleware.
type config struct {
	logger     *slog.Logger
	handler    func(c *dispatch.Context, err any)
	stackTrace bool
	stackSize  int
}

// defaultConfig returns the default configuration for recovery middleware.
func defaultConfig() *config {
	return &config{
		logger:     slog.New(slog.NewJSONHandler(os.Stderr, nil)),
		handler:    defaultHandler,
		stackTrace: true,
		stackSize:  4 << 10,
	}
}

// defaultHandler sends a generic 500 response without leaking the panic
// value to the client.
func defaultHandler(c *dispatch.Context, _ any) {
	if info, ok := c.Response.(dispatch.ResponseInfo); ok && info.Written() {
		return
	}
	c.JSON(http.StatusInternalServerError, map[string]string{
		"error": "Internal Server Error",
	})
}

// New returns a middleware that recovers from panics in later pipeline
// stages and the handler.
//
// On panic the middleware logs the panic value (with a stack trace by
// default), marks the active OpenTelemetry span with exception attributes,
// and invokes the recovery handler to produce the error response.
//
// http.ErrAbortHandler is re-panicked untouched: net/http uses it as the
// sanctioned way to abort a connection, and swallowing it would turn an
// intentional abort into a 500.
//
// Example:
//
//	d := dispatch.MustNew()
//	d.Use(recovery.New())
//	d.GET("/risky", func(c *dispatch.Context) {
//	    panic("boom")
//	})
func New(opts ...Option) dispatch.Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next dispatch.Handler) dispatch.Handler {
		return func(c *dispatch.Context) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				var stack []byte
				if cfg.stackTrace {
					stack = make([]byte, cfg.stackSize)
					stack = stack[:runtime.Stack(stack, false)]
				}

				markSpan(c, err)

				if cfg.logger != nil {
					attrs := []any{
						slog.String("method", c.Method()),
						slog.String("path", c.Path()),
						slog.Any("panic", err),
					}
					if stack != nil {
						attrs = append(attrs, slog.String("stack", string(stack)))
					}
					cfg.logger.ErrorContext(c.RequestContext(), "panic recovered", attrs...)
				}

				cfg.handler(c, err)
			}()

			next(c)
		}
	}
}

// markSpan records the panic on the request's span, if one is recording.
func markSpan(c *dispatch.Context, err any) {
	span := trace.SpanFromContext(c.RequestContext())
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Bool("exception.escaped", true),
		attribute.String("exception.type", fmt.Sprintf("%T", err)),
		attribute.String("exception.message", fmt.Sprint(err)),
	)
	span.SetStatus(codes.Error, "panic recovered")
}
