// Package storage implements a storage server: a local root directory
// exposed over two RMI interfaces, a data interface (size, read, write) and
// a control interface (create, delete).
package storage

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/pkg/rmi"
	"github.com/distfs/distfs/pkg/rpath"
)

// Storage exposes the per-file byte operations a storage server serves on
// its data skeleton.
type Storage interface {
	Size(p rpath.Path) (int64, error)
	Read(p rpath.Path, offset, length int64) ([]byte, error)
	Write(p rpath.Path, offset int64, data []byte) error
}

// Command exposes the control operations a storage server serves on its
// command skeleton.
type Command interface {
	Create(p rpath.Path) (bool, error)
	Delete(p rpath.Path) (bool, error)
}

// Server is the local implementation bound to a storage server's data and
// command skeletons. Every operation, data and control alike, serializes on
// mu: concurrent reads are deliberately ordered against writes, creates,
// and deletes on the same server rather than interleaved for throughput.
type Server struct {
	mu   sync.Mutex
	root string
}

var (
	_ Storage = (*Server)(nil)
	_ Command = (*Server)(nil)
)

// NewServer returns a Server rooted at root. The directory must already
// exist; callers typically os.MkdirAll it before construction.
func NewServer(root string) *Server {
	return &Server{root: root}
}

func (s *Server) Size(p rpath.Path) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(p.JoinRoot(s.root))
	if err != nil {
		return 0, statError(p, err)
	}
	if info.IsDir() {
		return 0, rmi.NewError(rmi.KindNotFound, "%s is a directory", p)
	}
	return info.Size(), nil
}

func (s *Server) Read(p rpath.Path, offset, length int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offset < 0 || length < 0 {
		return nil, rmi.NewError(rmi.KindOutOfBounds, "negative offset or length")
	}

	local := p.JoinRoot(s.root)
	info, err := os.Stat(local)
	if err != nil {
		return nil, statError(p, err)
	}
	if info.IsDir() {
		return nil, rmi.NewError(rmi.KindNotFound, "%s is a directory", p)
	}
	if offset+length > info.Size() {
		return nil, rmi.NewError(rmi.KindOutOfBounds, "read [%d,%d) exceeds size %d of %s", offset, offset+length, info.Size(), p)
	}

	buf := make([]byte, length)
	if length == 0 {
		return buf, nil
	}

	f, err := os.Open(local)
	if err != nil {
		return nil, rmi.NewError(rmi.KindIOError, "open %s: %v", p, err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, rmi.NewError(rmi.KindIOError, "seek %s: %v", p, err)
	}
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, rmi.NewError(rmi.KindIOError, "read %s: %v", p, err)
	}
	return buf, nil
}

func (s *Server) Write(p rpath.Path, offset int64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offset < 0 {
		return rmi.NewError(rmi.KindOutOfBounds, "negative offset")
	}

	local := p.JoinRoot(s.root)
	info, err := os.Stat(local)
	if err != nil {
		return statError(p, err)
	}
	if info.IsDir() {
		return rmi.NewError(rmi.KindNotFound, "%s is a directory", p)
	}

	f, err := os.OpenFile(local, os.O_RDWR, 0644)
	if err != nil {
		return rmi.NewError(rmi.KindIOError, "open %s: %v", p, err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return rmi.NewError(rmi.KindIOError, "seek %s: %v", p, err)
	}
	if _, err := f.Write(data); err != nil {
		return rmi.NewError(rmi.KindIOError, "write %s: %v", p, err)
	}
	return nil
}

// Create creates an empty file at p, creating parent directories as
// needed. It returns (false, nil) when p is root or already exists. Local
// filesystem failures are surfaced as IOError rather than swallowed.
func (s *Server) Create(p rpath.Path) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.IsRoot() {
		return false, nil
	}

	local := p.JoinRoot(s.root)
	if _, err := os.Stat(local); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, rmi.NewError(rmi.KindIOError, "stat %s: %v", p, err)
	}

	if err := os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return false, rmi.NewError(rmi.KindIOError, "create parents for %s: %v", p, err)
	}
	f, err := os.OpenFile(local, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return false, rmi.NewError(rmi.KindIOError, "create %s: %v", p, err)
	}
	f.Close()

	logger.Debug("storage: created %s under %s", p, s.root)
	return true, nil
}

// Delete removes the file or directory at p, recursively for directories.
// It returns (false, nil) for root or a missing path.
func (s *Server) Delete(p rpath.Path) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.IsRoot() {
		return false, nil
	}

	local := p.JoinRoot(s.root)
	if _, err := os.Stat(local); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, rmi.NewError(rmi.KindIOError, "stat %s: %v", p, err)
	}

	if err := os.RemoveAll(local); err != nil {
		return false, rmi.NewError(rmi.KindIOError, "delete %s: %v", p, err)
	}

	logger.Debug("storage: deleted %s under %s", p, s.root)
	return true, nil
}

func statError(p rpath.Path, err error) error {
	if os.IsNotExist(err) {
		return rmi.NewError(rmi.KindNotFound, "%s", p)
	}
	return rmi.NewError(rmi.KindIOError, "stat %s: %v", p, err)
}
