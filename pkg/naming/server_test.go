package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distfs/distfs/pkg/rmi"
	"github.com/distfs/distfs/pkg/rpath"
	"github.com/distfs/distfs/pkg/storage"
)

// testStorageServer wires a storage.Server to in-process skeletons and
// returns ready-to-use data and command stubs, the same shape the naming
// server binds to tree nodes.
func testStorageServer(t *testing.T, root string) (*storage.Stub, *storage.CommandStub) {
	t.Helper()

	srv := storage.NewServer(root)

	dataSk := storage.NewDataSkeleton(srv)
	require.NoError(t, dataSk.Start())
	dataSk.RegisterLocal()
	t.Cleanup(dataSk.Stop)

	cmdSk := storage.NewCommandSkeleton(srv)
	require.NoError(t, cmdSk.Start())
	cmdSk.RegisterLocal()
	t.Cleanup(cmdSk.Stop)

	dataStub, err := storage.CreateDataStub(dataSk)
	require.NoError(t, err)
	cmdStub, err := storage.CreateCommandStub(cmdSk)
	require.NoError(t, err)

	return dataStub, cmdStub
}

func mustPath(t *testing.T, s string) rpath.Path {
	t.Helper()
	p, err := rpath.Parse(s)
	require.NoError(t, err)
	return p
}

func TestNamingBootstrap(t *testing.T) {
	ns := NewServer()
	dataStub, cmdStub := testStorageServer(t, t.TempDir())

	evicted, err := ns.Register(dataStub, cmdStub, []rpath.Path{mustPath(t, "/x"), mustPath(t, "/y")})
	require.NoError(t, err)
	assert.Empty(t, evicted)

	names, err := ns.List(rpath.Root())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y"}, names)

	got, err := ns.GetStorage(mustPath(t, "/x"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dataStub.Stub))
}

func TestNamingDuplicateRegistration(t *testing.T) {
	ns := NewServer()
	aData, aCmd := testStorageServer(t, t.TempDir())
	_, err := ns.Register(aData, aCmd, []rpath.Path{mustPath(t, "/x"), mustPath(t, "/y")})
	require.NoError(t, err)

	bData, bCmd := testStorageServer(t, t.TempDir())
	evicted, err := ns.Register(bData, bCmd, []rpath.Path{mustPath(t, "/y"), mustPath(t, "/z")})
	require.NoError(t, err)
	require.Len(t, evicted, 1)
	assert.Equal(t, "/y", evicted[0].String())

	for _, tt := range []struct {
		path string
		want *storage.Stub
	}{
		{"/x", aData},
		{"/y", aData},
		{"/z", bData},
	} {
		got, err := ns.GetStorage(mustPath(t, tt.path))
		require.NoError(t, err)
		assert.True(t, got.Equal(tt.want.Stub), "path %s bound to unexpected server", tt.path)
	}
}

func TestNamingRegisterSameStubTwiceFails(t *testing.T) {
	ns := NewServer()
	dataStub, cmdStub := testStorageServer(t, t.TempDir())

	_, err := ns.Register(dataStub, cmdStub, nil)
	require.NoError(t, err)

	_, err = ns.Register(dataStub, cmdStub, nil)
	require.Error(t, err)
	var callErr *rmi.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, rmi.KindIllegalState, callErr.Kind)
}

func TestNamingRegisterNullArg(t *testing.T) {
	ns := NewServer()
	_, err := ns.Register(nil, nil, nil)
	require.Error(t, err)
	var callErr *rmi.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, rmi.KindNullArg, callErr.Kind)
}

func TestNamingCreateAndDelete(t *testing.T) {
	ns := NewServer()
	dataStub, cmdStub := testStorageServer(t, t.TempDir())
	_, err := ns.Register(dataStub, cmdStub, nil)
	require.NoError(t, err)

	_, err = ns.CreateFile(mustPath(t, "/d/f"))
	require.Error(t, err)
	var callErr *rmi.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, rmi.KindNotFound, callErr.Kind)

	created, err := ns.CreateDirectory(mustPath(t, "/d"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = ns.CreateFile(mustPath(t, "/d/f"))
	require.NoError(t, err)
	assert.True(t, created)

	deleted, err := ns.Delete(mustPath(t, "/d/f"))
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = ns.GetStorage(mustPath(t, "/d/f"))
	require.Error(t, err)
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, rmi.KindNotFound, callErr.Kind)
}

func TestNamingDirectoryDeleteFansOutAcrossServers(t *testing.T) {
	ns := NewServer()
	aData, aCmd := testStorageServer(t, t.TempDir())
	bData, bCmd := testStorageServer(t, t.TempDir())

	_, err := ns.Register(aData, aCmd, nil)
	require.NoError(t, err)
	_, err = ns.Register(bData, bCmd, nil)
	require.NoError(t, err)

	_, err = ns.CreateDirectory(mustPath(t, "/d"))
	require.NoError(t, err)

	// Round-robin alternates servers across successive creates, so /d's
	// two children are expected to land on different storage servers.
	_, err = ns.CreateFile(mustPath(t, "/d/one"))
	require.NoError(t, err)
	_, err = ns.CreateFile(mustPath(t, "/d/two"))
	require.NoError(t, err)

	deleted, err := ns.Delete(mustPath(t, "/d"))
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = ns.IsDirectory(mustPath(t, "/d"))
	require.Error(t, err)
}

func TestNamingIsSubpathFixUnaffected(t *testing.T) {
	// Sanity check that naming's path handling defers entirely to rpath's
	// component-wise semantics rather than any local substring logic.
	abc := mustPath(t, "/abc")
	a := mustPath(t, "/a")
	assert.False(t, abc.IsSubpath(a))
}
