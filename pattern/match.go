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

package pattern

import "strings"

// Params holds the parameter values extracted by a successful match.
// Keys are looked up case-insensitively. A Params value belongs to a
// single request: it is created fresh by Match and must not be retained
// past the request it was produced for.
type Params map[string]string

// Get returns the value bound to name, matching the key case-insensitively.
// It returns "" when the parameter is absent; use Lookup to distinguish an
// absent parameter from one bound to the empty string (a catch-all that
// captured zero segments).
func (p Params) Get(name string) string {
	value, _ := p.Lookup(name)
	return value
}

// Lookup returns the value bound to name and whether the parameter exists.
// The key comparison is case-insensitive.
func (p Params) Lookup(name string) (string, bool) {
	if value, ok := p[name]; ok {
		return value, true
	}
	for key, value := range p {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return "", false
}

// Match reports whether path is covered by the pattern and returns the
// bound parameter values on success.
//
// The path is normalized the same way templates are: a single leading '/'
// is stripped and empty segments dropped. A pattern without a catch-all
// requires exactly as many path segments as it has template segments; a
// pattern with a catch-all requires at least one fewer, because the
// catch-all itself may capture zero segments.
//
// Literal segments compare case-insensitively. Parameter segments bind the
// raw path segment verbatim — no unescaping is applied. A catch-all binds
// the remaining segments rejoined with '/'.
//
// Match never returns partial results: on any mismatch it reports
// (nil, false).
func (p *Pattern) Match(path string) (Params, bool) {
	segments := splitPath(path)

	if p.catchAll {
		if len(segments) < len(p.segments)-1 {
			return nil, false
		}
	} else if len(segments) != len(p.segments) {
		return nil, false
	}

	var params Params

	for i, seg := range p.segments {
		switch seg.Kind {
		case KindLiteral:
			if !strings.EqualFold(seg.Text, segments[i]) {
				return nil, false
			}
		case KindParam:
			if params == nil {
				params = make(Params, p.paramCount)
			}
			params[seg.Name] = segments[i]
		case KindCatchAll:
			if params == nil {
				params = make(Params, p.paramCount)
			}
			params[seg.Name] = strings.Join(segments[i:], "/")
			return params, true
		}
	}

	if params == nil {
		params = Params{}
	}
	return params, true
}
