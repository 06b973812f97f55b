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

import "errors"

var (
	// ErrFallbackRegistered indicates that a fallback handler is already
	// registered. The registry keeps exactly one fallback; the first
	// registration stays in effect.
	ErrFallbackRegistered = errors.New("fallback handler already registered")

	// ErrRegistryFrozen indicates a route registration after the registry
	// was frozen for concurrent traffic.
	ErrRegistryFrozen = errors.New("registry is frozen; routes must be registered before serving")

	// ErrNilHandler indicates a nil handler passed to a registration call.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrResponseWriterNotHijacker indicates that the underlying
	// ResponseWriter does not implement http.Hijacker.
	ErrResponseWriterNotHijacker = errors.New("responseWriter does not implement http.Hijacker")

	// ErrServerTimeoutInvalid indicates a non-positive server timeout value.
	ErrServerTimeoutInvalid = errors.New("server timeout must be positive")
)
