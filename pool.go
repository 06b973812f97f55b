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

import "sync"

// contextPool recycles Contexts across requests. Pooled contexts are fully
// reset before reuse, so no request-scoped state crosses requests.
var contextPool = sync.Pool{
	New: func() any {
		return &Context{}
	},
}

// acquireContext returns a cleared Context from the pool, initialized for
// the given request and response.
func acquireContext() *Context {
	c, _ := contextPool.Get().(*Context)
	return c
}

// releaseContext resets a Context and returns it to the pool.
// The caller must not touch the Context afterwards.
func releaseContext(c *Context) {
	c.reset()
	contextPool.Put(c)
}
