package storage

import (
	"github.com/distfs/distfs/pkg/rmi"
	"github.com/distfs/distfs/pkg/rpath"
)

// Interface names for the two skeletons a storage server starts, and the
// method identifiers carried in each request's envelope.
const (
	InterfaceData    = "storage.Storage"
	InterfaceCommand = "storage.Command"

	methodSize   = "Size"
	methodRead   = "Read"
	methodWrite  = "Write"
	methodCreate = "Create"
	methodDelete = "Delete"
)

// NewDataSkeleton builds the skeleton serving srv's data interface.
func NewDataSkeleton(srv Storage) *rmi.Skeleton {
	return rmi.New(InterfaceData, func(method string, payload []byte) ([]byte, *rmi.CallError) {
		switch method {
		case methodSize:
			return handleSize(srv, payload)
		case methodRead:
			return handleRead(srv, payload)
		case methodWrite:
			return handleWrite(srv, payload)
		default:
			return nil, rmi.NewError(rmi.KindRemoteInvocation, "storage: unknown data method %s", method)
		}
	})
}

// NewCommandSkeleton builds the skeleton serving cmd's control interface.
func NewCommandSkeleton(cmd Command) *rmi.Skeleton {
	return rmi.New(InterfaceCommand, func(method string, payload []byte) ([]byte, *rmi.CallError) {
		switch method {
		case methodCreate:
			return handleCreate(cmd, payload)
		case methodDelete:
			return handleDelete(cmd, payload)
		default:
			return nil, rmi.NewError(rmi.KindRemoteInvocation, "storage: unknown command method %s", method)
		}
	})
}

func asCallError(err error) *rmi.CallError {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*rmi.CallError); ok {
		return ce
	}
	return rmi.NewError(rmi.KindRemoteInvocation, "%v", err)
}

func parsePath(raw string) (rpath.Path, *rmi.CallError) {
	p, err := rpath.Parse(raw)
	if err != nil {
		return rpath.Path{}, rmi.NewError(rmi.KindInvalidArgument, "%v", err)
	}
	return p, nil
}

func handleSize(srv Storage, payload []byte) ([]byte, *rmi.CallError) {
	var args sizeArgs
	if err := rmi.Decode(payload, &args); err != nil {
		return nil, asCallError(err)
	}
	p, cerr := parsePath(args.Path)
	if cerr != nil {
		return nil, cerr
	}
	size, err := srv.Size(p)
	if err != nil {
		return nil, asCallError(err)
	}
	out, err := rmi.Encode(sizeReply{Size: size})
	if err != nil {
		return nil, asCallError(err)
	}
	return out, nil
}

func handleRead(srv Storage, payload []byte) ([]byte, *rmi.CallError) {
	var args readArgs
	if err := rmi.Decode(payload, &args); err != nil {
		return nil, asCallError(err)
	}
	p, cerr := parsePath(args.Path)
	if cerr != nil {
		return nil, cerr
	}
	data, err := srv.Read(p, args.Offset, args.Length)
	if err != nil {
		return nil, asCallError(err)
	}
	out, err := rmi.Encode(readReply{Data: data})
	if err != nil {
		return nil, asCallError(err)
	}
	return out, nil
}

func handleWrite(srv Storage, payload []byte) ([]byte, *rmi.CallError) {
	var args writeArgs
	if err := rmi.Decode(payload, &args); err != nil {
		return nil, asCallError(err)
	}
	p, cerr := parsePath(args.Path)
	if cerr != nil {
		return nil, cerr
	}
	if err := srv.Write(p, args.Offset, args.Data); err != nil {
		return nil, asCallError(err)
	}
	out, err := rmi.Encode(writeReply{})
	if err != nil {
		return nil, asCallError(err)
	}
	return out, nil
}

func handleCreate(cmd Command, payload []byte) ([]byte, *rmi.CallError) {
	var args createArgs
	if err := rmi.Decode(payload, &args); err != nil {
		return nil, asCallError(err)
	}
	p, cerr := parsePath(args.Path)
	if cerr != nil {
		return nil, cerr
	}
	created, err := cmd.Create(p)
	if err != nil {
		return nil, asCallError(err)
	}
	out, err := rmi.Encode(createReply{Created: created})
	if err != nil {
		return nil, asCallError(err)
	}
	return out, nil
}

func handleDelete(cmd Command, payload []byte) ([]byte, *rmi.CallError) {
	var args deleteArgs
	if err := rmi.Decode(payload, &args); err != nil {
		return nil, asCallError(err)
	}
	p, cerr := parsePath(args.Path)
	if cerr != nil {
		return nil, cerr
	}
	deleted, err := cmd.Delete(p)
	if err != nil {
		return nil, asCallError(err)
	}
	out, err := rmi.Encode(deleteReply{Deleted: deleted})
	if err != nil {
		return nil, asCallError(err)
	}
	return out, nil
}
