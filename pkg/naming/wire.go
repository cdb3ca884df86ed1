package naming

import "github.com/distfs/distfs/pkg/rmi"

// Argument and result structs for the naming server's two RMI interfaces,
// encoded with rmi.Encode/rmi.Decode over the shared envelope.

type isDirectoryArgs struct{ Path string }
type isDirectoryReply struct{ IsDirectory bool }

type listArgs struct{ Path string }
type listReply struct{ Names []string }

type createFileArgs struct{ Path string }
type createFileReply struct{ Created bool }

type createDirectoryArgs struct{ Path string }
type createDirectoryReply struct{ Created bool }

type deleteArgs struct{ Path string }
type deleteReply struct{ Deleted bool }

type getStorageArgs struct{ Path string }
type getStorageReply struct{ Storage rmi.StubRef }

type registerArgs struct {
	Storage rmi.StubRef
	Command rmi.StubRef
	Files   []string
}

type registerReply struct{ Evicted []string }
