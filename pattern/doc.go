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

// Package pattern compiles route templates and matches them against
// concrete request paths.
//
// A template is a '/'-separated sequence of segments. Three segment kinds
// are supported:
//
//   - Literals, matched case-insensitively: "/api/links"
//   - Named parameters, matching exactly one path segment: "/users/{id}"
//   - A catch-all, capturing every remaining segment: "/static/{*filepath}"
//
// The catch-all is only legal as the final segment, and a catch-all may
// capture zero segments: "/api/{*rest}" matches "/api" with rest == "".
//
// # Compilation
//
// Compile parses a template once into an immutable Pattern. Compiled
// patterns are pure data: they carry no locks and are safe for unlimited
// concurrent Match calls, so callers compile at startup and reuse the
// result for the life of the process.
//
//	p, err := pattern.Compile("/users/{id}/files/{*path}")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Malformed templates fail with an error wrapping one of the sentinel
// values (ErrUnterminatedBrace, ErrEmptyParameterName,
// ErrDuplicateParameter, ErrCatchAllNotLast). MustCompile panics instead,
// for package-level declarations.
//
// # Matching
//
// Match reports whether a path is covered by the pattern and, on success,
// the parameter values it binds:
//
//	params, ok := p.Match("/users/42/files/docs/readme.md")
//	// ok == true
//	// params.Get("id")   == "42"
//	// params.Get("path") == "docs/readme.md"
//
// Parameter values are bound verbatim; any URL unescaping is the
// transport's responsibility and happens before the path reaches Match.
// A failed match reports (nil, false) and never partial data.
package pattern
