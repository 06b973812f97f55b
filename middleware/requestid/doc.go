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

// Package requestid provides middleware that attaches a unique request ID
// to each request for distributed tracing and log correlation.
//
// By default request IDs are UUID v7 (RFC 9562): time-ordered and
// lexicographically sortable, which makes them pleasant to grep and sort in
// logs. ULID generation is available as an option for a shorter 26-character
// representation.
//
// # Basic Usage
//
//	import "rivaas.dev/dispatch/middleware/requestid"
//
//	d := dispatch.MustNew()
//	d.Use(requestid.New())
//
// The middleware honors an ID the client already sent in the configured
// header (X-Request-ID by default), generates one otherwise, echoes it in
// the response header, and stores it in the request context where
// requestid.Get and the access log can read it.
package requestid
