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

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnterminatedBrace indicates a '{' without a closing '}' in a template segment.
	ErrUnterminatedBrace = errors.New("unterminated '{' in route template")

	// ErrEmptyParameterName indicates a "{}" or "{*}" segment with no parameter name.
	ErrEmptyParameterName = errors.New("empty parameter name in route template")

	// ErrDuplicateParameter indicates the same parameter name used twice in one template.
	// Names are compared case-insensitively.
	ErrDuplicateParameter = errors.New("duplicate parameter name in route template")

	// ErrCatchAllNotLast indicates a catch-all segment in a non-final position.
	ErrCatchAllNotLast = errors.New("catch-all segment must be the final segment")
)

// Kind identifies how a template segment matches a path segment.
type Kind uint8

const (
	// KindLiteral matches its text case-insensitively against one path segment.
	KindLiteral Kind = iota

	// KindParam matches exactly one path segment and binds it to the segment's name.
	KindParam

	// KindCatchAll matches all remaining path segments, joined by '/'.
	// Only valid as the final segment of a pattern.
	KindCatchAll
)

// String returns a human-readable name for the segment kind.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindParam:
		return "param"
	case KindCatchAll:
		return "catch-all"
	default:
		return "unknown"
	}
}

// Segment is one compiled element of a route template.
// For KindLiteral, Text holds the literal text; for KindParam and
// KindCatchAll, Name holds the parameter name.
type Segment struct {
	Kind Kind
	Text string // literal text, empty for parameter segments
	Name string // parameter name, empty for literal segments
}

// Pattern is a compiled route template. It is immutable after Compile and
// safe for concurrent use without synchronization.
type Pattern struct {
	template   string
	segments   []Segment
	paramCount int
	catchAll   bool
}

// Template returns the original template string the pattern was compiled from.
func (p *Pattern) Template() string {
	return p.template
}

// Segments returns the compiled segments in template order.
// The returned slice must not be modified.
func (p *Pattern) Segments() []Segment {
	return p.segments
}

// HasCatchAll reports whether the final segment is a catch-all.
func (p *Pattern) HasCatchAll() bool {
	return p.catchAll
}

// ParamCount returns the number of parameter and catch-all segments.
func (p *Pattern) ParamCount() int {
	return p.paramCount
}

// splitPath splits a path or template into its non-empty segments.
// A single leading '/' is stripped and empty segments are dropped, so
// "", "/" and "//" all normalize to zero segments.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// Compile parses a route template into an immutable Pattern.
//
// Template syntax:
//
//	/users            literal segments, matched case-insensitively
//	/users/{id}       {name} binds exactly one path segment
//	/files/{*path}    {*name} binds all remaining segments; final position only
//
// Compile fails when a '{' is unterminated, a parameter name is empty, a
// parameter name repeats (case-insensitively), or a catch-all is not the
// final segment. The returned error wraps the matching sentinel value, so
// callers can test with errors.Is:
//
//	_, err := pattern.Compile("/a/{*rest}/b")
//	errors.Is(err, pattern.ErrCatchAllNotLast) // true
//
// Compilation is pure: compiling the same template twice yields patterns
// with identical matching behavior.
func Compile(template string) (*Pattern, error) {
	raw := splitPath(template)
	p := &Pattern{
		template: template,
		segments: make([]Segment, 0, len(raw)),
	}

	// Parameter names seen so far, lowercased for case-insensitive uniqueness.
	var seen map[string]struct{}

	for i, part := range raw {
		if p.catchAll {
			// A previous segment was a catch-all, nothing may follow it.
			return nil, fmt.Errorf("%w: %q", ErrCatchAllNotLast, template)
		}

		if !strings.HasPrefix(part, "{") {
			p.segments = append(p.segments, Segment{Kind: KindLiteral, Text: part})
			continue
		}

		if !strings.HasSuffix(part, "}") {
			return nil, fmt.Errorf("%w: segment %q in %q", ErrUnterminatedBrace, part, template)
		}

		name := part[1 : len(part)-1]
		kind := KindParam
		if strings.HasPrefix(name, "*") {
			kind = KindCatchAll
			name = name[1:]
		}
		if name == "" {
			return nil, fmt.Errorf("%w: segment %q in %q", ErrEmptyParameterName, part, template)
		}

		lower := strings.ToLower(name)
		if seen == nil {
			seen = make(map[string]struct{}, len(raw)-i)
		}
		if _, dup := seen[lower]; dup {
			return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateParameter, name, template)
		}
		seen[lower] = struct{}{}

		p.segments = append(p.segments, Segment{Kind: kind, Name: name})
		p.paramCount++
		if kind == KindCatchAll {
			p.catchAll = true
		}
	}

	return p, nil
}

// MustCompile is like Compile but panics if the template is malformed.
// It simplifies package-level pattern declarations:
//
//	var assets = pattern.MustCompile("/assets/{*path}")
func MustCompile(template string) *Pattern {
	p, err := Compile(template)
	if err != nil {
		panic(fmt.Sprintf("pattern.MustCompile(%q): %v", template, err))
	}
	return p
}
