package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStubOverLocalRegistry(t *testing.T) {
	root := t.TempDir()
	srv := NewServer(root)

	dataSk := NewDataSkeleton(srv)
	require.NoError(t, dataSk.Start())
	dataSk.RegisterLocal()
	defer dataSk.Stop()

	cmdSk := NewCommandSkeleton(srv)
	require.NoError(t, cmdSk.Start())
	cmdSk.RegisterLocal()
	defer cmdSk.Stop()

	dataStub, err := CreateDataStub(dataSk)
	require.NoError(t, err)
	cmdStub, err := CreateCommandStub(cmdSk)
	require.NoError(t, err)

	p := mustPath(t, "/f")
	created, err := cmdStub.Create(p)
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, dataStub.Write(p, 0, []byte("hello")))

	size, err := dataStub.Size(p)
	require.NoError(t, err)
	require.EqualValues(t, 5, size)

	data, err := dataStub.Read(p, 0, 5)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	deleted, err := cmdStub.Delete(p)
	require.NoError(t, err)
	require.True(t, deleted)
}
