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

// Request inspection helpers for the Context type: query parameters,
// host information, and client addressing.

import (
	"net"
	"strings"
)

// Query returns the first value of the named query parameter, or the empty
// string if it is absent.
//
// Example:
//
//	// Request: /search?q=golang&page=2
//	q := c.Query("q") // "golang"
func (c *Context) Query(name string) string {
	return c.Request.URL.Query().Get(name)
}

// DefaultQuery returns the first value of the named query parameter, or
// fallback if it is absent or empty.
//
// Example:
//
//	page := c.DefaultQuery("page", "1")
func (c *Context) DefaultQuery(name, fallback string) string {
	if value := c.Request.URL.Query().Get(name); value != "" {
		return value
	}
	return fallback
}

// QueryValues returns all values of the named query parameter.
//
// Example:
//
//	// Request: /filter?tag=go&tag=http
//	tags := c.QueryValues("tag") // []string{"go", "http"}
func (c *Context) QueryValues(name string) []string {
	return c.Request.URL.Query()[name]
}

// Hostname returns the hostname from the Host header, without the port.
// For "example.com:8080" returns "example.com".
func (c *Context) Hostname() string {
	host := c.Request.Host
	if host == "" {
		host = c.Request.URL.Host
	}

	if colonIdx := strings.LastIndex(host, ":"); colonIdx != -1 {
		// Guard against IPv6 literals where the colon is part of the address.
		if !strings.Contains(host, "]") || colonIdx > strings.Index(host, "]") {
			return host[:colonIdx]
		}
	}

	return host
}

// Scheme returns the request scheme (http or https). Checks TLS state
// first, then the X-Forwarded-Proto header for proxy scenarios.
func (c *Context) Scheme() string {
	if c.Request.TLS != nil {
		return "https"
	}

	if proto := c.Request.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}

	return "http"
}

// BaseURL returns the base URL (scheme + host), useful for building
// absolute URLs.
//
// Example:
//
//	// Request: https://example.com:8080/api/users
//	baseURL := c.BaseURL() // "https://example.com:8080"
func (c *Context) BaseURL() string {
	host := c.Request.Host
	if host == "" {
		host = c.Request.URL.Host
	}

	return c.Scheme() + "://" + host
}

// ClientIP returns the client IP address. It prefers the first entry of
// X-Forwarded-For, then X-Real-IP, then falls back to the connection's
// remote address.
//
// SECURITY WARNING: forwarding headers can be spoofed by clients that do
// not pass through a trusted proxy. Do not use the result for
// security-critical decisions unless the proxy chain is trusted.
func (c *Context) ClientIP() string {
	if xff := c.Request.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			xff = xff[:idx]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}

	if ip := c.Request.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return ip
}

// ContentType returns the request Content-Type header without parameters.
// For "application/json; charset=utf-8" returns "application/json".
func (c *Context) ContentType() string {
	contentType := c.Request.Header.Get("Content-Type")
	if idx := strings.IndexByte(contentType, ';'); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}
