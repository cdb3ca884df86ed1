package storage

// Argument and result structs for the storage service's two RMI
// interfaces, encoded with rmi.Encode/rmi.Decode over the shared envelope.

type sizeArgs struct {
	Path string
}

type sizeReply struct {
	Size int64
}

type readArgs struct {
	Path   string
	Offset int64
	Length int64
}

type readReply struct {
	Data []byte `xdr:"opaque"`
}

type writeArgs struct {
	Path   string
	Offset int64
	Data   []byte `xdr:"opaque"`
}

type writeReply struct{}

type createArgs struct {
	Path string
}

type createReply struct {
	Created bool
}

type deleteArgs struct {
	Path string
}

type deleteReply struct {
	Deleted bool
}
