package storage

import (
	"github.com/distfs/distfs/pkg/rmi"
	"github.com/distfs/distfs/pkg/rpath"
)

// Stub is the concrete forwarder for the storage service's data interface:
// each method marshals its arguments and ships them to the bound skeleton.
type Stub struct {
	*rmi.Stub
}

var _ Storage = (*Stub)(nil)

// NewDataStub builds a data stub targeting a raw address, for bootstrap.
func NewDataStub(address string) *Stub {
	return &Stub{rmi.NewStub(InterfaceData, address)}
}

// DataFromRef reconstructs a data stub from a StubRef received over the
// wire, e.g. as part of a getStorage reply.
func DataFromRef(ref rmi.StubRef) *Stub {
	return &Stub{rmi.FromRef(ref)}
}

// CreateDataStub builds a data stub bound to a running data skeleton.
func CreateDataStub(skeleton *rmi.Skeleton) (*Stub, error) {
	s, err := rmi.Create(InterfaceData, skeleton)
	if err != nil {
		return nil, err
	}
	return &Stub{s}, nil
}

// CreateDataStubWithHost is CreateDataStub with the host overridden to an
// externally routable hostname.
func CreateDataStubWithHost(skeleton *rmi.Skeleton, hostname string) (*Stub, error) {
	s, err := rmi.CreateWithHost(InterfaceData, skeleton, hostname)
	if err != nil {
		return nil, err
	}
	return &Stub{s}, nil
}

func (s *Stub) Size(p rpath.Path) (int64, error) {
	payload, err := rmi.Encode(sizeArgs{Path: p.String()})
	if err != nil {
		return 0, err
	}
	result, err := s.Call(methodSize, payload)
	if err != nil {
		return 0, err
	}
	var reply sizeReply
	if err := rmi.Decode(result, &reply); err != nil {
		return 0, err
	}
	return reply.Size, nil
}

func (s *Stub) Read(p rpath.Path, offset, length int64) ([]byte, error) {
	payload, err := rmi.Encode(readArgs{Path: p.String(), Offset: offset, Length: length})
	if err != nil {
		return nil, err
	}
	result, err := s.Call(methodRead, payload)
	if err != nil {
		return nil, err
	}
	var reply readReply
	if err := rmi.Decode(result, &reply); err != nil {
		return nil, err
	}
	return reply.Data, nil
}

func (s *Stub) Write(p rpath.Path, offset int64, data []byte) error {
	payload, err := rmi.Encode(writeArgs{Path: p.String(), Offset: offset, Data: data})
	if err != nil {
		return err
	}
	_, err = s.Call(methodWrite, payload)
	return err
}

// CommandStub is the concrete forwarder for the storage service's control
// interface.
type CommandStub struct {
	*rmi.Stub
}

var _ Command = (*CommandStub)(nil)

// NewCommandStub builds a command stub targeting a raw address.
func NewCommandStub(address string) *CommandStub {
	return &CommandStub{rmi.NewStub(InterfaceCommand, address)}
}

// CommandFromRef reconstructs a command stub from a wire StubRef.
func CommandFromRef(ref rmi.StubRef) *CommandStub {
	return &CommandStub{rmi.FromRef(ref)}
}

// CreateCommandStub builds a command stub bound to a running command
// skeleton.
func CreateCommandStub(skeleton *rmi.Skeleton) (*CommandStub, error) {
	s, err := rmi.Create(InterfaceCommand, skeleton)
	if err != nil {
		return nil, err
	}
	return &CommandStub{s}, nil
}

// CreateCommandStubWithHost is CreateCommandStub with the host overridden.
func CreateCommandStubWithHost(skeleton *rmi.Skeleton, hostname string) (*CommandStub, error) {
	s, err := rmi.CreateWithHost(InterfaceCommand, skeleton, hostname)
	if err != nil {
		return nil, err
	}
	return &CommandStub{s}, nil
}

func (c *CommandStub) Create(p rpath.Path) (bool, error) {
	payload, err := rmi.Encode(createArgs{Path: p.String()})
	if err != nil {
		return false, err
	}
	result, err := c.Call(methodCreate, payload)
	if err != nil {
		return false, err
	}
	var reply createReply
	if err := rmi.Decode(result, &reply); err != nil {
		return false, err
	}
	return reply.Created, nil
}

func (c *CommandStub) Delete(p rpath.Path) (bool, error) {
	payload, err := rmi.Encode(deleteArgs{Path: p.String()})
	if err != nil {
		return false, err
	}
	result, err := c.Call(methodDelete, payload)
	if err != nil {
		return false, err
	}
	var reply deleteReply
	if err := rmi.Decode(result, &reply); err != nil {
		return false, err
	}
	return reply.Deleted, nil
}
