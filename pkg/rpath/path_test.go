package rpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantErr    bool
		wantString string
	}{
		{
			name:       "collapses blanks and whitespace",
			input:      "/a//b/ /c",
			wantString: "/a/b/c",
		},
		{
			name:    "missing leading slash",
			input:   "a/b",
			wantErr: true,
		},
		{
			name:    "colon forbidden",
			input:   "/a:b",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:       "all slashes is root",
			input:      "////",
			wantString: "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantString, p.String())
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	p, err := Parse("/a/b/c")
	require.NoError(t, err)

	p2, err := Parse(p.String())
	require.NoError(t, err)
	assert.True(t, p.Equal(p2))
}

func TestJoin(t *testing.T) {
	root := Root()
	child, err := Join(root, "d")
	require.NoError(t, err)
	assert.Equal(t, "/d", child.String())

	_, err = Join(child, "e/f")
	assert.Error(t, err)

	_, err = Join(child, "")
	assert.Error(t, err)

	_, err = Join(child, "a:b")
	assert.Error(t, err)
}

func TestParentAndLast(t *testing.T) {
	p, err := Parse("/a/b/c")
	require.NoError(t, err)

	parent, err := p.Parent()
	require.NoError(t, err)
	assert.Equal(t, "/a/b", parent.String())

	last, err := p.Last()
	require.NoError(t, err)
	assert.Equal(t, "c", last)

	_, err = Root().Parent()
	assert.Error(t, err)

	_, err = Root().Last()
	assert.Error(t, err)
}

func TestIsSubpath(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{name: "equal paths are subpaths of themselves", a: "/a/b", b: "/a/b", want: true},
		{name: "prefix", a: "/a/b/c", b: "/a/b", want: true},
		{name: "root is subpath of everything", a: "/a/b", b: "/", want: true},
		{name: "component prefix, not string prefix", a: "/abc", b: "/a", want: false},
		{name: "sibling", a: "/a/bc", b: "/a/b", want: false},
		{name: "longer other", a: "/a", b: "/a/b", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse(tt.a)
			require.NoError(t, err)
			b, err := Parse(tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.IsSubpath(b))
		})
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "y"), []byte("y"), 0o644))

	paths, err := List(dir)
	require.NoError(t, err)

	got := make(map[string]bool, len(paths))
	for _, p := range paths {
		got[p.String()] = true
	}
	assert.True(t, got["/x"])
	assert.True(t, got["/sub/y"])
	assert.Len(t, paths, 2)
}

func TestListMissingRoot(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := List(file)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestJoinRoot(t *testing.T) {
	p, err := Parse("/a/b")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/root", "a", "b"), p.JoinRoot("/root"))
}
