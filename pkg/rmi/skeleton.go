package rmi

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/distfs/distfs/internal/ratelimiter"
)

// nextPort is the process-wide monotonic port counter used to assign a
// default address to skeletons constructed without one. It starts at 1000,
// matching the scheme this package's design is ground on.
var nextPort atomic.Int32

func init() {
	nextPort.Store(1000)
}

// allocatePort returns the next process-wide default port.
func allocatePort() int {
	return int(nextPort.Add(1))
}

// Handler dispatches one decoded method call for a skeleton's bound
// interface and returns either an encoded result or a call error. Concrete
// per-interface skeletons (see pkg/naming and pkg/storage) build a Handler
// that switches on method and marshals/unmarshals its own argument types;
// pkg/rmi itself never inspects method payloads.
type Handler func(method string, payload []byte) (result []byte, callErr *CallError)

// Skeleton owns a listening socket, dispatches decoded invocations to a
// Handler, and runs each accepted connection on its own goroutine so that
// calls on the same skeleton may execute concurrently. The handler's
// implementation object is responsible for its own synchronization.
type Skeleton struct {
	mu       sync.Mutex
	iface    string
	handler  Handler
	host     string
	port     int
	hasAddr  bool
	listener net.Listener
	running  bool
	stopOnce sync.Once
	wg       sync.WaitGroup
	conns    map[net.Conn]struct{}

	// ListenError is called when an exception occurs at the top level of
	// the accept loop. It returns whether the server should resume
	// accepting connections. The default stops the server.
	ListenError func(err error) bool
	// ServiceError is advisory; it is called when a per-connection
	// handler returns an unexpected error. The default is a no-op.
	ServiceError func(err error)
	// Stopped fires exactly once when the accept loop exits, whether due
	// to a call to Stop or an unrecoverable listen error. cause is nil on
	// a normal Stop.
	Stopped func(cause error)

	// AcceptLimiter, if set, throttles new connections: a connection
	// accepted while no token is available is closed immediately rather
	// than served. Nil means unlimited, the default.
	AcceptLimiter *ratelimiter.RateLimiter
}

// New constructs a Skeleton with no initial address; one is assigned from
// the process-wide port counter and can be changed with SetAddress before
// Start is called.
func New(iface string, handler Handler) *Skeleton {
	return &Skeleton{iface: iface, handler: handler, host: "", port: allocatePort()}
}

// NewAt constructs a Skeleton bound to a fixed host and port, for use when
// the port number is significant (e.g. the naming server's well-known
// ports).
func NewAt(iface string, handler Handler, host string, port int) *Skeleton {
	return &Skeleton{iface: iface, handler: handler, host: host, port: port, hasAddr: true}
}

// Interface returns the name of the remote interface this skeleton serves.
func (s *Skeleton) Interface() string {
	return s.iface
}

// SetAddress sets the host and, if non-zero, the port the skeleton will
// bind to. It is only valid before Start.
func (s *Skeleton) SetAddress(host string, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return NewError(KindIllegalState, "cannot set address after start")
	}
	s.host = host
	if port != 0 {
		s.port = port
	}
	s.hasAddr = true
	return nil
}

// HasAddress reports whether the skeleton was bound to an explicit address
// (via NewAt or SetAddress), as opposed to the default port New assigns
// from the process-wide counter.
func (s *Skeleton) HasAddress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasAddr
}

// Address returns the host:port the skeleton is bound to (or will bind to).
func (s *Skeleton) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// IsRunning reports whether the skeleton's accept loop is active.
func (s *Skeleton) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start binds the listening socket and spawns the accept loop, returning
// immediately. It fails if the skeleton is already running or the socket
// cannot be bound.
func (s *Skeleton) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return NewError(KindIllegalState, "skeleton for %s already running", s.iface)
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.mu.Unlock()
		return NewError(KindRemoteInvocation, "listen on %s: %v", addr, err)
	}

	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}
	s.listener = ln
	s.running = true
	s.stopOnce = sync.Once{}
	s.conns = make(map[net.Conn]struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Skeleton) acceptLoop() {
	defer s.wg.Done()

	var cause error
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			stillRunning := s.running
			s.mu.Unlock()
			if !stillRunning {
				break
			}
			if s.ListenError != nil && s.ListenError(err) {
				continue
			}
			cause = err
			s.haltListener()
			break
		}

		if s.AcceptLimiter != nil && !s.AcceptLimiter.Allow() {
			conn.Close()
			continue
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serveConn(conn)
	}

	s.stopOnce.Do(func() {
		if s.Stopped != nil {
			s.Stopped(cause)
		}
	})
}

func (s *Skeleton) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	for {
		req, err := readRequest(conn)
		if err != nil {
			if !errors.Is(err, errConnectionClosed) && !errors.Is(err, net.ErrClosed) && !errors.Is(err, os.ErrDeadlineExceeded) && s.ServiceError != nil {
				s.ServiceError(NewError(KindRemoteInvocation, "read request: %v", err))
			}
			return
		}

		result, callErr := s.handler(req.Method, req.Payload)
		if err := writeReply(conn, result, callErr); err != nil {
			if s.ServiceError != nil {
				s.ServiceError(NewError(KindRemoteInvocation, "write reply: %v", err))
			}
			return
		}
	}
}

// Stop closes the listener and expires the read deadline of every
// connection currently accepted on it. A connection idle between requests
// is blocked in readRequest, so the expired deadline is what unblocks
// serveConn, which then closes the connection; a connection actively
// dispatching a call still gets to write its reply before its next
// readRequest fails the same way. When the accept loop exits, Stopped
// fires exactly once with a nil cause; Stop then waits for every
// connection handler to return. The skeleton may be restarted afterward
// via Start.
func (s *Skeleton) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.haltListener()
	s.closeConns()
	s.wg.Wait()
	s.UnregisterLocal()
}

func (s *Skeleton) closeConns() {
	s.mu.Lock()
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.SetReadDeadline(time.Now())
	}
}

func (s *Skeleton) haltListener() {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln != nil {
		ln.Close()
	}
}

var errConnectionClosed = fmt.Errorf("rmi: connection closed")
