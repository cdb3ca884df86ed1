package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distfs/distfs/pkg/rmi"
	"github.com/distfs/distfs/pkg/rpath"
)

func mustPath(t *testing.T, s string) rpath.Path {
	t.Helper()
	p, err := rpath.Parse(s)
	require.NoError(t, err)
	return p
}

func TestServerCreate(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		setup   func(t *testing.T, root string)
		want    bool
		wantErr bool
	}{
		{name: "new file", path: "/a/b/f", want: true},
		{
			name: "already exists",
			path: "/f",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, "f"), nil, 0644))
			},
			want: false,
		},
		{name: "root", path: "/", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.setup != nil {
				tt.setup(t, root)
			}
			srv := NewServer(root)
			p := mustPath(t, tt.path)

			got, err := srv.Create(p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServerDelete(t *testing.T) {
	root := t.TempDir()
	srv := NewServer(root)

	ok, err := srv.Delete(mustPath(t, "/"))
	require.NoError(t, err)
	assert.False(t, ok, "root is never deletable")

	ok, err = srv.Delete(mustPath(t, "/missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = srv.Create(mustPath(t, "/dir/f"))
	require.NoError(t, err)

	ok, err = srv.Delete(mustPath(t, "/dir"))
	require.NoError(t, err)
	assert.True(t, ok, "directory delete is recursive")

	_, err = os.Stat(filepath.Join(root, "dir"))
	assert.True(t, os.IsNotExist(err))
}

func TestServerSizeNotFound(t *testing.T) {
	srv := NewServer(t.TempDir())
	_, err := srv.Size(mustPath(t, "/nope"))
	require.Error(t, err)

	var callErr *rmi.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, rmi.KindNotFound, callErr.Kind)
}

func TestServerReadWrite(t *testing.T) {
	root := t.TempDir()
	srv := NewServer(root)

	p := mustPath(t, "/f")
	_, err := srv.Create(p)
	require.NoError(t, err)

	require.NoError(t, srv.Write(p, 0, []byte("0123456789")))

	size, err := srv.Size(p)
	require.NoError(t, err)
	assert.EqualValues(t, 10, size)

	got, err := srv.Read(p, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("56789"), got)

	_, err = srv.Read(p, 5, 6)
	require.Error(t, err)
	var callErr *rmi.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, rmi.KindOutOfBounds, callErr.Kind)

	require.NoError(t, srv.Write(p, 3, []byte{1, 2, 3}))
	got, err = srv.Read(p, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestServerReadEmptyFile(t *testing.T) {
	root := t.TempDir()
	srv := NewServer(root)
	p := mustPath(t, "/empty")
	_, err := srv.Create(p)
	require.NoError(t, err)

	got, err := srv.Read(p, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestServerWriteNegativeOffset(t *testing.T) {
	root := t.TempDir()
	srv := NewServer(root)
	p := mustPath(t, "/f")
	_, err := srv.Create(p)
	require.NoError(t, err)

	err = srv.Write(p, -1, []byte("x"))
	require.Error(t, err)
	var callErr *rmi.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, rmi.KindOutOfBounds, callErr.Kind)
}
