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
)

// Static serves files from the filesystem directory root under the given
// URL prefix, via a catch-all route.
//
// SECURITY: serving goes through http.FileServer, which cleans paths and
// rejects parent-directory traversal. Still, the root directory should
// contain only files meant to be public.
//
// Example:
//
//	d.Static("/assets", "./public")      // ./public/* at /assets/*
//	d.Static("/uploads", "/var/uploads") // /var/uploads/* at /uploads/*
func (d *Dispatcher) Static(prefix, root string) *Dispatcher {
	return d.StaticFS(prefix, http.Dir(root))
}

// StaticFS serves files from the given http.FileSystem under the URL
// prefix, for control over the filesystem implementation (embed.FS via
// http.FS, in-memory filesystems). Registers both GET and HEAD routes,
// as HTTP requires HEAD support for any GET resource.
//
// Example:
//
//	d.StaticFS("/assets", http.Dir("./public"))
//	d.StaticFS("/docs", http.FS(embeddedDocs))
func (d *Dispatcher) StaticFS(prefix string, fs http.FileSystem) *Dispatcher {
	if prefix == "" {
		panic("dispatch: static prefix cannot be empty")
	}
	prefix = normalizePrefix(prefix)

	fileServer := http.StripPrefix(prefix, http.FileServer(fs))
	handler := func(c *Context) {
		fileServer.ServeHTTP(c.Response, c.Request)
	}

	template := prefix + "/{*filepath}"
	d.handle(http.MethodGet, template, handler)
	d.handle(http.MethodHead, template, handler)
	return d
}

// StaticFile serves a single file at the given URL path. Useful for
// favicon.ico or robots.txt. Registers both GET and HEAD routes.
//
// Example:
//
//	d.StaticFile("/favicon.ico", "./assets/favicon.ico")
func (d *Dispatcher) StaticFile(path, filepath string) *Dispatcher {
	if path == "" {
		panic("dispatch: static file path cannot be empty")
	}
	if filepath == "" {
		panic("dispatch: static file target cannot be empty")
	}
	if path[0] != '/' {
		path = "/" + path
	}

	handler := func(c *Context) {
		http.ServeFile(c.Response, c.Request, filepath)
	}

	d.handle(http.MethodGet, path, handler)
	d.handle(http.MethodHead, path, handler)
	return d
}
