package rmi

import (
	"errors"
	"io"
	"net"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/distfs/distfs/pkg/rmi/wire"
)

// connPoolSize bounds how many distinct remote addresses this process
// keeps a reusable connection open to at once. Addresses beyond the bound
// are evicted least-recently-used, closing their cached connection; the
// next call to that address simply redials.
const connPoolSize = 256

// connPool caches one reusable net.Conn per target address, so that
// successive stub calls to the same skeleton do not each pay a fresh TCP
// handshake (spec: a stub call "opens or reuses a connection").
var connPool *lru.Cache

func init() {
	cache, err := lru.NewWithEvict(connPoolSize, func(_ any, value any) {
		pc := value.(*pooledConn)
		pc.mu.Lock()
		defer pc.mu.Unlock()
		if pc.conn != nil {
			pc.conn.Close()
			pc.conn = nil
		}
	})
	if err != nil {
		// Only returns an error for a non-positive size, which connPoolSize
		// never is.
		panic(err)
	}
	connPool = cache
}

// pooledConn holds at most one live connection to a single remote address.
// Calls through the same Stub serialize on its mutex, which keeps the
// request/reply ordering of a shared connection intact without requiring a
// connection per call.
type pooledConn struct {
	mu   sync.Mutex
	conn net.Conn
}

func getPooledConn(addr string) *pooledConn {
	if v, ok := connPool.Get(addr); ok {
		return v.(*pooledConn)
	}
	pc := &pooledConn{}
	connPool.Add(addr, pc)
	return pc
}

func (pc *pooledConn) ensure(addr string) (net.Conn, error) {
	if pc.conn != nil {
		return pc.conn, nil
	}
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	pc.conn = conn
	return conn, nil
}

func (pc *pooledConn) invalidate() {
	if pc.conn != nil {
		pc.conn.Close()
		pc.conn = nil
	}
}

func readRequest(conn net.Conn) (*wire.Request, error) {
	req, err := wire.ReadRequest(conn)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errConnectionClosed
		}
		return nil, err
	}
	return req, nil
}

func writeReply(conn net.Conn, result []byte, callErr *CallError) error {
	rep := &wire.Reply{OK: callErr == nil}
	if callErr == nil {
		rep.Payload = result
	} else {
		rep.ErrKind = uint32(callErr.Kind)
		rep.ErrMessage = callErr.Message
	}
	return wire.WriteReply(conn, rep)
}

// Call places one method invocation against the stub's target: an
// in-process shortcut if the target skeleton lives in this process and has
// opted into the local registry, otherwise a (possibly reused) TCP
// connection. A network failure surfaces as a RemoteInvocation CallError;
// a failure reply from the remote side is reconstructed as the CallError
// it was raised with.
func (s *Stub) Call(method string, payload []byte) ([]byte, error) {
	if handler, ok := lookupLocal(s.ref.Interface, s.ref.Address); ok {
		result, callErr := handler(method, payload)
		if callErr != nil {
			return nil, callErr
		}
		return result, nil
	}

	pc := getPooledConn(s.ref.Address)
	pc.mu.Lock()
	defer pc.mu.Unlock()

	conn, err := pc.ensure(s.ref.Address)
	if err != nil {
		return nil, NewError(KindRemoteInvocation, "dial %s: %v", s.ref.Address, err)
	}

	if err := wire.WriteRequest(conn, &wire.Request{
		Interface: s.ref.Interface,
		Method:    method,
		Payload:   payload,
	}); err != nil {
		pc.invalidate()
		return nil, NewError(KindRemoteInvocation, "write request to %s: %v", s.ref.Address, err)
	}

	rep, err := wire.ReadReply(conn)
	if err != nil {
		pc.invalidate()
		return nil, NewError(KindRemoteInvocation, "read reply from %s: %v", s.ref.Address, err)
	}

	if !rep.OK {
		return nil, &CallError{Kind: Kind(rep.ErrKind), Message: rep.ErrMessage}
	}
	return rep.Payload, nil
}
