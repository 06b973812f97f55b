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
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

// defaultServerTimeouts returns the production-safe defaults.
func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}

// Serve starts an HTTP server on addr with the dispatcher as handler,
// applying the configured (or default) timeouts. H2C is enabled when the
// dispatcher was built with WithH2C.
//
// Example:
//
//	d := dispatch.MustNew()
//	d.GET("/", func(c *dispatch.Context) {
//	    c.String(http.StatusOK, "Hello, World!")
//	})
//	if err := d.Serve(":8080"); err != nil {
//	    log.Fatal(err)
//	}
func (d *Dispatcher) Serve(addr string) error {
	h := http.Handler(d)
	if d.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
	}

	timeouts := d.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}
	return srv.ListenAndServe()
}

// ServeTLS starts an HTTPS server. HTTP/2 is negotiated automatically via
// ALPN, so H2C configuration is ignored here.
func (d *Dispatcher) ServeTLS(addr, certFile, keyFile string) error {
	timeouts := d.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           d,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}
	return srv.ListenAndServeTLS(certFile, keyFile)
}
