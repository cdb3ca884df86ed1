package naming

import (
	"github.com/distfs/distfs/pkg/rmi"
	"github.com/distfs/distfs/pkg/rpath"
	"github.com/distfs/distfs/pkg/storage"
)

// Interface names for the naming server's two skeletons, and the method
// identifiers carried in each request's envelope.
const (
	InterfaceService      = "naming.Service"
	InterfaceRegistration = "naming.Registration"

	methodIsDirectory     = "IsDirectory"
	methodList            = "List"
	methodCreateFile      = "CreateFile"
	methodCreateDirectory = "CreateDirectory"
	methodDelete          = "Delete"
	methodGetStorage      = "GetStorage"
	methodRegister        = "Register"
)

// NewServiceSkeleton builds the skeleton serving svc's client-facing
// interface.
func NewServiceSkeleton(svc Service) *rmi.Skeleton {
	return rmi.New(InterfaceService, func(method string, payload []byte) ([]byte, *rmi.CallError) {
		switch method {
		case methodIsDirectory:
			return handleIsDirectory(svc, payload)
		case methodList:
			return handleList(svc, payload)
		case methodCreateFile:
			return handleCreateFile(svc, payload)
		case methodCreateDirectory:
			return handleCreateDirectory(svc, payload)
		case methodDelete:
			return handleDelete(svc, payload)
		case methodGetStorage:
			return handleGetStorage(svc, payload)
		default:
			return nil, rmi.NewError(rmi.KindRemoteInvocation, "naming: unknown service method %s", method)
		}
	})
}

// NewRegistrationSkeleton builds the skeleton serving reg's storage-facing
// interface. Pass the same *Server used for NewServiceSkeleton so that
// registration state and service state are the same object.
func NewRegistrationSkeleton(reg Registration) *rmi.Skeleton {
	return rmi.New(InterfaceRegistration, func(method string, payload []byte) ([]byte, *rmi.CallError) {
		switch method {
		case methodRegister:
			return handleRegister(reg, payload)
		default:
			return nil, rmi.NewError(rmi.KindRemoteInvocation, "naming: unknown registration method %s", method)
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

func handleIsDirectory(svc Service, payload []byte) ([]byte, *rmi.CallError) {
	var args isDirectoryArgs
	if err := rmi.Decode(payload, &args); err != nil {
		return nil, asCallError(err)
	}
	p, cerr := parsePath(args.Path)
	if cerr != nil {
		return nil, cerr
	}
	isDir, err := svc.IsDirectory(p)
	if err != nil {
		return nil, asCallError(err)
	}
	out, err := rmi.Encode(isDirectoryReply{IsDirectory: isDir})
	return out, asCallError(err)
}

func handleList(svc Service, payload []byte) ([]byte, *rmi.CallError) {
	var args listArgs
	if err := rmi.Decode(payload, &args); err != nil {
		return nil, asCallError(err)
	}
	p, cerr := parsePath(args.Path)
	if cerr != nil {
		return nil, cerr
	}
	names, err := svc.List(p)
	if err != nil {
		return nil, asCallError(err)
	}
	out, err := rmi.Encode(listReply{Names: names})
	return out, asCallError(err)
}

func handleCreateFile(svc Service, payload []byte) ([]byte, *rmi.CallError) {
	var args createFileArgs
	if err := rmi.Decode(payload, &args); err != nil {
		return nil, asCallError(err)
	}
	p, cerr := parsePath(args.Path)
	if cerr != nil {
		return nil, cerr
	}
	created, err := svc.CreateFile(p)
	if err != nil {
		return nil, asCallError(err)
	}
	out, err := rmi.Encode(createFileReply{Created: created})
	return out, asCallError(err)
}

func handleCreateDirectory(svc Service, payload []byte) ([]byte, *rmi.CallError) {
	var args createDirectoryArgs
	if err := rmi.Decode(payload, &args); err != nil {
		return nil, asCallError(err)
	}
	p, cerr := parsePath(args.Path)
	if cerr != nil {
		return nil, cerr
	}
	created, err := svc.CreateDirectory(p)
	if err != nil {
		return nil, asCallError(err)
	}
	out, err := rmi.Encode(createDirectoryReply{Created: created})
	return out, asCallError(err)
}

func handleDelete(svc Service, payload []byte) ([]byte, *rmi.CallError) {
	var args deleteArgs
	if err := rmi.Decode(payload, &args); err != nil {
		return nil, asCallError(err)
	}
	p, cerr := parsePath(args.Path)
	if cerr != nil {
		return nil, cerr
	}
	deleted, err := svc.Delete(p)
	if err != nil {
		return nil, asCallError(err)
	}
	out, err := rmi.Encode(deleteReply{Deleted: deleted})
	return out, asCallError(err)
}

func handleGetStorage(svc Service, payload []byte) ([]byte, *rmi.CallError) {
	var args getStorageArgs
	if err := rmi.Decode(payload, &args); err != nil {
		return nil, asCallError(err)
	}
	p, cerr := parsePath(args.Path)
	if cerr != nil {
		return nil, cerr
	}
	stub, err := svc.GetStorage(p)
	if err != nil {
		return nil, asCallError(err)
	}
	out, err := rmi.Encode(getStorageReply{Storage: stub.Ref()})
	return out, asCallError(err)
}

func handleRegister(reg Registration, payload []byte) ([]byte, *rmi.CallError) {
	var args registerArgs
	if err := rmi.Decode(payload, &args); err != nil {
		return nil, asCallError(err)
	}

	files := make([]rpath.Path, 0, len(args.Files))
	for _, raw := range args.Files {
		p, cerr := parsePath(raw)
		if cerr != nil {
			return nil, cerr
		}
		files = append(files, p)
	}

	storageStub := storage.DataFromRef(args.Storage)
	commandStub := storage.CommandFromRef(args.Command)

	evicted, err := reg.Register(storageStub, commandStub, files)
	if err != nil {
		return nil, asCallError(err)
	}

	names := make([]string, len(evicted))
	for i, p := range evicted {
		names[i] = p.String()
	}
	out, err := rmi.Encode(registerReply{Evicted: names})
	return out, asCallError(err)
}
