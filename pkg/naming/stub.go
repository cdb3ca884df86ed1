package naming

import (
	"github.com/distfs/distfs/pkg/rmi"
	"github.com/distfs/distfs/pkg/rpath"
	"github.com/distfs/distfs/pkg/storage"
)

// ServiceStub is the concrete forwarder clients use to reach the naming
// server's service interface.
type ServiceStub struct {
	*rmi.Stub
}

var _ Service = (*ServiceStub)(nil)

// NewServiceStub targets the naming server's well-known service address
// directly, for bootstrap.
func NewServiceStub(address string) *ServiceStub {
	return &ServiceStub{rmi.NewStub(InterfaceService, address)}
}

// CreateServiceStub builds a service stub bound to a running service
// skeleton.
func CreateServiceStub(skeleton *rmi.Skeleton) (*ServiceStub, error) {
	s, err := rmi.Create(InterfaceService, skeleton)
	if err != nil {
		return nil, err
	}
	return &ServiceStub{s}, nil
}

func (s *ServiceStub) IsDirectory(p rpath.Path) (bool, error) {
	payload, err := rmi.Encode(isDirectoryArgs{Path: p.String()})
	if err != nil {
		return false, err
	}
	result, err := s.Call(methodIsDirectory, payload)
	if err != nil {
		return false, err
	}
	var reply isDirectoryReply
	if err := rmi.Decode(result, &reply); err != nil {
		return false, err
	}
	return reply.IsDirectory, nil
}

func (s *ServiceStub) List(dir rpath.Path) ([]string, error) {
	payload, err := rmi.Encode(listArgs{Path: dir.String()})
	if err != nil {
		return nil, err
	}
	result, err := s.Call(methodList, payload)
	if err != nil {
		return nil, err
	}
	var reply listReply
	if err := rmi.Decode(result, &reply); err != nil {
		return nil, err
	}
	return reply.Names, nil
}

func (s *ServiceStub) CreateFile(p rpath.Path) (bool, error) {
	payload, err := rmi.Encode(createFileArgs{Path: p.String()})
	if err != nil {
		return false, err
	}
	result, err := s.Call(methodCreateFile, payload)
	if err != nil {
		return false, err
	}
	var reply createFileReply
	if err := rmi.Decode(result, &reply); err != nil {
		return false, err
	}
	return reply.Created, nil
}

func (s *ServiceStub) CreateDirectory(p rpath.Path) (bool, error) {
	payload, err := rmi.Encode(createDirectoryArgs{Path: p.String()})
	if err != nil {
		return false, err
	}
	result, err := s.Call(methodCreateDirectory, payload)
	if err != nil {
		return false, err
	}
	var reply createDirectoryReply
	if err := rmi.Decode(result, &reply); err != nil {
		return false, err
	}
	return reply.Created, nil
}

func (s *ServiceStub) Delete(p rpath.Path) (bool, error) {
	payload, err := rmi.Encode(deleteArgs{Path: p.String()})
	if err != nil {
		return false, err
	}
	result, err := s.Call(methodDelete, payload)
	if err != nil {
		return false, err
	}
	var reply deleteReply
	if err := rmi.Decode(result, &reply); err != nil {
		return false, err
	}
	return reply.Deleted, nil
}

func (s *ServiceStub) GetStorage(f rpath.Path) (*storage.Stub, error) {
	payload, err := rmi.Encode(getStorageArgs{Path: f.String()})
	if err != nil {
		return nil, err
	}
	result, err := s.Call(methodGetStorage, payload)
	if err != nil {
		return nil, err
	}
	var reply getStorageReply
	if err := rmi.Decode(result, &reply); err != nil {
		return nil, err
	}
	return storage.DataFromRef(reply.Storage), nil
}

// RegistrationStub is the concrete forwarder storage servers use to reach
// the naming server's registration interface.
type RegistrationStub struct {
	*rmi.Stub
}

var _ Registration = (*RegistrationStub)(nil)

// NewRegistrationStub targets the naming server's well-known registration
// address directly, for bootstrap.
func NewRegistrationStub(address string) *RegistrationStub {
	return &RegistrationStub{rmi.NewStub(InterfaceRegistration, address)}
}

// CreateRegistrationStub builds a registration stub bound to a running
// registration skeleton.
func CreateRegistrationStub(skeleton *rmi.Skeleton) (*RegistrationStub, error) {
	s, err := rmi.Create(InterfaceRegistration, skeleton)
	if err != nil {
		return nil, err
	}
	return &RegistrationStub{s}, nil
}

func (r *RegistrationStub) Register(storageStub *storage.Stub, commandStub *storage.CommandStub, files []rpath.Path) ([]rpath.Path, error) {
	if storageStub == nil || commandStub == nil {
		return nil, rmi.NewError(rmi.KindNullArg, "storage and command stubs are required")
	}

	rawFiles := make([]string, len(files))
	for i, f := range files {
		rawFiles[i] = f.String()
	}

	payload, err := rmi.Encode(registerArgs{
		Storage: storageStub.Ref(),
		Command: commandStub.Ref(),
		Files:   rawFiles,
	})
	if err != nil {
		return nil, err
	}

	result, err := r.Call(methodRegister, payload)
	if err != nil {
		return nil, err
	}

	var reply registerReply
	if err := rmi.Decode(result, &reply); err != nil {
		return nil, err
	}

	evicted := make([]rpath.Path, 0, len(reply.Evicted))
	for _, raw := range reply.Evicted {
		p, err := rpath.Parse(raw)
		if err != nil {
			return nil, rmi.NewError(rmi.KindRemoteInvocation, "malformed evicted path %q: %v", raw, err)
		}
		evicted = append(evicted, p)
	}
	return evicted, nil
}
