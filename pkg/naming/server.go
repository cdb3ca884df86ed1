// Package naming implements the naming server: the directory tree, the
// client-facing Service interface, and the storage-facing Registration
// interface.
package naming

import (
	"sync"

	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/pkg/rmi"
	"github.com/distfs/distfs/pkg/rpath"
	"github.com/distfs/distfs/pkg/storage"
)

// Service is the naming server's client-facing interface.
type Service interface {
	IsDirectory(p rpath.Path) (bool, error)
	List(dir rpath.Path) ([]string, error)
	CreateFile(p rpath.Path) (bool, error)
	CreateDirectory(p rpath.Path) (bool, error)
	Delete(p rpath.Path) (bool, error)
	GetStorage(f rpath.Path) (*storage.Stub, error)
}

// Registration is the naming server's storage-facing interface.
type Registration interface {
	Register(storageStub *storage.Stub, commandStub *storage.CommandStub, files []rpath.Path) ([]rpath.Path, error)
}

// registeredServer joins a storage server's data and command stubs into one
// record. The source keeps two independently iterated sets for these; that
// lets createFile's storage-set iteration and create's command-set
// iteration disagree about which server is "next". A single joined slice
// with one round-robin cursor removes that inconsistency by construction.
type registeredServer struct {
	storage *storage.Stub
	command *storage.CommandStub
}

// Server is the single implementation bound to both the service skeleton
// and the registration skeleton. Binding both to the same instance (rather
// than one per skeleton) is what makes registration state visible to
// service calls and vice versa.
type Server struct {
	mu      sync.Mutex
	root    *node
	servers []registeredServer
	next    int
}

var (
	_ Service      = (*Server)(nil)
	_ Registration = (*Server)(nil)
)

// NewServer returns an empty naming server: a root directory and no
// registered storage servers.
func NewServer() *Server {
	return &Server{root: newDirNode()}
}

func (s *Server) IsDirectory(p rpath.Path) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.root.lookup(p)
	if n == nil {
		return false, rmi.NewError(rmi.KindNotFound, "%s", p)
	}
	return n.isDir, nil
}

func (s *Server) List(dir rpath.Path) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.root.lookup(dir)
	if n == nil {
		return nil, rmi.NewError(rmi.KindNotFound, "%s", dir)
	}
	if !n.isDir {
		return nil, rmi.NewError(rmi.KindNotFound, "%s is not a directory", dir)
	}

	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	return names, nil
}

func (s *Server) CreateFile(p rpath.Path) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parentNode, name, err := s.resolveParent(p)
	if err != nil {
		return false, err
	}
	if _, exists := parentNode.children[name]; exists {
		return false, nil
	}

	server, err := s.pickServer()
	if err != nil {
		return false, err
	}
	if _, err := server.command.Create(p); err != nil {
		return false, err
	}

	parentNode.children[name] = newFileNode(server.storage, server.command)
	logger.Info("naming: created file %s on %s", p, server.storage.Address())
	return true, nil
}

func (s *Server) CreateDirectory(p rpath.Path) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parentNode, name, err := s.resolveParent(p)
	if err != nil {
		return false, err
	}
	if _, exists := parentNode.children[name]; exists {
		return false, nil
	}

	parentNode.children[name] = newDirNode()
	return true, nil
}

func (s *Server) Delete(p rpath.Path) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.IsRoot() {
		return false, rmi.NewError(rmi.KindInvalidArgument, "cannot delete root")
	}
	parent, err := p.Parent()
	if err != nil {
		return false, rmi.NewError(rmi.KindInvalidArgument, "%v", err)
	}
	name, err := p.Last()
	if err != nil {
		return false, rmi.NewError(rmi.KindInvalidArgument, "%v", err)
	}

	parentNode := s.root.lookup(parent)
	if parentNode == nil || !parentNode.isDir {
		return false, rmi.NewError(rmi.KindNotFound, "%s", p)
	}
	target, exists := parentNode.children[name]
	if !exists {
		return false, rmi.NewError(rmi.KindNotFound, "%s", p)
	}

	// A directory may span multiple storage servers: issue delete on
	// every one holding a descendant file, not just one command stub.
	entries := collectFiles(target, p)
	ok := true
	for _, e := range entries {
		deleted, err := e.node.commandStub.Delete(e.path)
		if err != nil {
			return false, err
		}
		if !deleted {
			ok = false
		}
	}
	if !ok {
		return false, nil
	}

	delete(parentNode.children, name)
	logger.Info("naming: deleted %s (%d files)", p, len(entries))
	return true, nil
}

func (s *Server) GetStorage(f rpath.Path) (*storage.Stub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.root.lookup(f)
	if n == nil || n.isDir {
		return nil, rmi.NewError(rmi.KindNotFound, "%s", f)
	}
	return n.storageStub, nil
}

func (s *Server) Register(storageStub *storage.Stub, commandStub *storage.CommandStub, files []rpath.Path) ([]rpath.Path, error) {
	if storageStub == nil || commandStub == nil {
		return nil, rmi.NewError(rmi.KindNullArg, "storage and command stubs are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.servers {
		if existing.storage.Equal(storageStub.Stub) || existing.command.Equal(commandStub.Stub) {
			return nil, rmi.NewError(rmi.KindIllegalState, "server %s already registered", storageStub.Address())
		}
	}

	var evicted, accepted []rpath.Path
	for _, f := range files {
		if s.root.lookup(f) != nil {
			evicted = append(evicted, f)
			continue
		}
		accepted = append(accepted, f)
	}

	for _, f := range accepted {
		if err := s.ensureInserted(f, storageStub, commandStub); err != nil {
			return nil, err
		}
	}

	s.servers = append(s.servers, registeredServer{storage: storageStub, command: commandStub})
	logger.Info("naming: registered %s (%d files, %d evicted)", storageStub.Address(), len(accepted), len(evicted))
	return evicted, nil
}

// resolveParent validates p as a creation target and returns its parent
// node plus its final component name.
func (s *Server) resolveParent(p rpath.Path) (*node, string, error) {
	if p.IsRoot() {
		return nil, "", rmi.NewError(rmi.KindInvalidArgument, "cannot create root")
	}
	parent, err := p.Parent()
	if err != nil {
		return nil, "", rmi.NewError(rmi.KindInvalidArgument, "%v", err)
	}
	name, err := p.Last()
	if err != nil {
		return nil, "", rmi.NewError(rmi.KindInvalidArgument, "%v", err)
	}
	parentNode := s.root.lookup(parent)
	if parentNode == nil || !parentNode.isDir {
		return nil, "", rmi.NewError(rmi.KindNotFound, "parent of %s does not exist", p)
	}
	return parentNode, name, nil
}

// pickServer returns the next registered server in round-robin order.
func (s *Server) pickServer() (registeredServer, error) {
	if len(s.servers) == 0 {
		return registeredServer{}, rmi.NewError(rmi.KindIllegalState, "no storage servers registered")
	}
	server := s.servers[s.next%len(s.servers)]
	s.next++
	return server, nil
}

// ensureInserted creates any missing intermediate directories along p and
// binds a new file node at its leaf. Used by Register to ingest a storage
// server's manifest directly, bypassing CreateFile's remote create call
// since the file already exists on that server's disk.
func (s *Server) ensureInserted(p rpath.Path, storageStub *storage.Stub, commandStub *storage.CommandStub) error {
	cur := s.root
	components := p.Components()
	for i, c := range components {
		if i == len(components)-1 {
			cur.children[c] = newFileNode(storageStub, commandStub)
			return nil
		}
		next, ok := cur.children[c]
		if !ok {
			next = newDirNode()
			cur.children[c] = next
		}
		if !next.isDir {
			return rmi.NewError(rmi.KindInvalidArgument, "component %q of %s is a file", c, p)
		}
		cur = next
	}
	return nil
}
