package rmi

import "net"

// StubRef is the wire-serializable identity of a stub: the remote
// interface it implements and the network address it targets. Two stubs
// are equal iff their StubRefs are equal, and a StubRef is what actually
// travels over the wire when a call returns a stub (the naming service
// returning a storage stub, for instance) — the live Stub wrapping it is
// reconstructed locally from the ref on arrival.
type StubRef struct {
	Interface string
	Address   string
}

// Equal reports whether r and other target the same interface and address.
func (r StubRef) Equal(other StubRef) bool {
	return r.Interface == other.Interface && r.Address == other.Address
}

// Stub is a local handle whose method calls are shipped to a remote
// skeleton. Concrete per-interface stubs (pkg/naming, pkg/storage) embed
// one of these and add typed methods that marshal their own arguments.
type Stub struct {
	ref StubRef
}

// NewStub constructs a Stub directly from an interface name and address.
func NewStub(iface, address string) *Stub {
	return &Stub{ref: StubRef{Interface: iface, Address: address}}
}

// FromRef reconstructs a Stub from a StubRef received over the wire.
func FromRef(ref StubRef) *Stub {
	return &Stub{ref: ref}
}

// Ref returns the serializable identity of s.
func (s *Stub) Ref() StubRef {
	return s.ref
}

// Interface returns the name of the remote interface s targets.
func (s *Stub) Interface() string {
	return s.ref.Interface
}

// Address returns the network address s targets.
func (s *Stub) Address() string {
	return s.ref.Address
}

// Equal reports whether s and other are equal: same interface, same
// address. Two such stubs connect to the same skeleton.
func (s *Stub) Equal(other *Stub) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.ref.Equal(other.ref)
}

// Create returns a stub targeting the given skeleton's address. It fails
// with IllegalState only if the skeleton has no assigned address and is
// not running; a skeleton bound to a fixed address (NewAt, SetAddress) is
// a valid target even before Start, and otherwise performs an initial
// connectivity probe.
func Create(iface string, skeleton *Skeleton) (*Stub, error) {
	if !skeleton.HasAddress() && !skeleton.IsRunning() {
		return nil, NewError(KindIllegalState, "skeleton for %s has no address and is not running", iface)
	}
	stub := NewStub(iface, skeleton.Address())
	if err := stub.probe(); err != nil {
		return nil, err
	}
	return stub, nil
}

// CreateWithHost returns a stub targeting the given skeleton's port but
// with hostname substituted for its host, for environments where the
// skeleton's self-determined address is not externally routable.
func CreateWithHost(iface string, skeleton *Skeleton, hostname string) (*Stub, error) {
	if !skeleton.HasAddress() && !skeleton.IsRunning() {
		return nil, NewError(KindIllegalState, "skeleton for %s has no assigned port", iface)
	}
	_, port, err := net.SplitHostPort(skeleton.Address())
	if err != nil {
		return nil, NewError(KindRemoteInvocation, "split skeleton address: %v", err)
	}
	stub := NewStub(iface, net.JoinHostPort(hostname, port))
	if err := stub.probe(); err != nil {
		return nil, err
	}
	return stub, nil
}

// CreateAt returns a stub targeting a raw address, for bootstrapping RMI
// when no skeleton handle is available locally (a client connecting to the
// naming server's well-known address, for instance).
func CreateAt(iface, address string) *Stub {
	return NewStub(iface, address)
}

// probe performs a best-effort connectivity check at stub-creation time.
// An in-process target is always reachable by definition.
func (s *Stub) probe() error {
	if _, ok := lookupLocal(s.ref.Interface, s.ref.Address); ok {
		return nil
	}
	conn, err := net.Dial("tcp", s.ref.Address)
	if err != nil {
		return NewError(KindRemoteInvocation, "connect to %s: %v", s.ref.Address, err)
	}
	conn.Close()
	return nil
}
