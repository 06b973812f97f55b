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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompile_Literals verifies that plain templates compile into literal
// segments and that leading/trailing slashes are normalized away.
func TestCompile_Literals(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []Segment
	}{
		{
			name:     "simple path",
			template: "/api/links",
			want: []Segment{
				{Kind: KindLiteral, Text: "api"},
				{Kind: KindLiteral, Text: "links"},
			},
		},
		{
			name:     "no leading slash",
			template: "api/links",
			want: []Segment{
				{Kind: KindLiteral, Text: "api"},
				{Kind: KindLiteral, Text: "links"},
			},
		},
		{
			name:     "trailing slash",
			template: "/api/links/",
			want: []Segment{
				{Kind: KindLiteral, Text: "api"},
				{Kind: KindLiteral, Text: "links"},
			},
		},
		{
			name:     "root",
			template: "/",
			want:     []Segment{},
		},
		{
			name:     "empty",
			template: "",
			want:     []Segment{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.template, p.Template())
			assert.Len(t, p.Segments(), len(tt.want))
			for i, seg := range tt.want {
				assert.Equal(t, seg, p.Segments()[i])
			}
			assert.False(t, p.HasCatchAll())
			assert.Zero(t, p.ParamCount())
		})
	}
}

// TestCompile_Parameters verifies parameter and catch-all segment parsing.
func TestCompile_Parameters(t *testing.T) {
	p, err := Compile("/users/{id}/files/{*path}")
	require.NoError(t, err)

	segs := p.Segments()
	require.Len(t, segs, 4)
	assert.Equal(t, Segment{Kind: KindLiteral, Text: "users"}, segs[0])
	assert.Equal(t, Segment{Kind: KindParam, Name: "id"}, segs[1])
	assert.Equal(t, Segment{Kind: KindLiteral, Text: "files"}, segs[2])
	assert.Equal(t, Segment{Kind: KindCatchAll, Name: "path"}, segs[3])
	assert.True(t, p.HasCatchAll())
	assert.Equal(t, 2, p.ParamCount())
}

// TestCompile_Malformed verifies that each malformed template fails with
// the documented sentinel error and identifies the template in the message.
func TestCompile_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantErr  error
	}{
		{
			name:     "unterminated brace",
			template: "/users/{id",
			wantErr:  ErrUnterminatedBrace,
		},
		{
			name:     "empty parameter name",
			template: "/users/{}",
			wantErr:  ErrEmptyParameterName,
		},
		{
			name:     "empty catch-all name",
			template: "/files/{*}",
			wantErr:  ErrEmptyParameterName,
		},
		{
			name:     "duplicate parameter",
			template: "/a/{id}/b/{id}",
			wantErr:  ErrDuplicateParameter,
		},
		{
			name:     "duplicate parameter different case",
			template: "/a/{id}/b/{ID}",
			wantErr:  ErrDuplicateParameter,
		},
		{
			name:     "duplicate across param and catch-all",
			template: "/a/{id}/{*id}",
			wantErr:  ErrDuplicateParameter,
		},
		{
			name:     "catch-all not last",
			template: "/a/{*rest}/b",
			wantErr:  ErrCatchAllNotLast,
		},
		{
			name:     "two catch-alls",
			template: "/{*a}/{*b}",
			wantErr:  ErrCatchAllNotLast,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.template)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.template)
		})
	}
}

// TestCompile_Idempotent verifies that compiling the same template twice
// yields patterns with identical matching behavior for a spread of inputs.
func TestCompile_Idempotent(t *testing.T) {
	const template = "/api/{version}/links/{*rest}"

	first, err := Compile(template)
	require.NoError(t, err)
	second, err := Compile(template)
	require.NoError(t, err)

	paths := []string{
		"", "/", "/api", "/api/v1", "/api/v1/links",
		"/api/v1/links/123", "/api/v1/links/123/details", "/other/v1/links",
	}
	for _, path := range paths {
		p1, ok1 := first.Match(path)
		p2, ok2 := second.Match(path)
		assert.Equal(t, ok1, ok2, "path %q", path)
		assert.Equal(t, p1, p2, "path %q", path)
	}
}

// TestMustCompile verifies the panic behavior for malformed templates and
// pass-through behavior for valid ones.
func TestMustCompile(t *testing.T) {
	assert.NotPanics(t, func() {
		p := MustCompile("/users/{id}")
		assert.Equal(t, "/users/{id}", p.Template())
	})

	assert.Panics(t, func() {
		MustCompile("/users/{id")
	})
}

// TestKind_String covers the Kind name mapping, including the unknown case.
func TestKind_String(t *testing.T) {
	assert.Equal(t, "literal", KindLiteral.String())
	assert.Equal(t, "param", KindParam.String())
	assert.Equal(t, "catch-all", KindCatchAll.String())
	assert.Equal(t, "unknown", Kind(250).String())
}
