// Package bootstrap implements a storage server's registration bootstrap:
// enumerate the local tree, register it with the naming server, apply the
// returned eviction list, then prune any directories left empty by it. It
// depends on both pkg/naming and pkg/storage; since pkg/naming imports
// pkg/storage, this sequencing logic cannot live in pkg/storage without an
// import cycle.
package bootstrap

import (
	"os"
	"path/filepath"

	"github.com/distfs/distfs/internal/logger"
	"github.com/distfs/distfs/internal/ratelimiter"
	"github.com/distfs/distfs/pkg/naming"
	"github.com/distfs/distfs/pkg/rmi"
	"github.com/distfs/distfs/pkg/rpath"
	"github.com/distfs/distfs/pkg/storage"
)

// Config controls one storage server's startup.
type Config struct {
	// LocalRoot is the directory this storage server serves content from.
	LocalRoot string
	// AdvertiseHost is the externally routable hostname both skeletons
	// advertise to the naming server and to clients.
	AdvertiseHost string
	// BindHost is the local interface the skeletons listen on; empty
	// binds all interfaces.
	BindHost string
	// DataPort and CommandPort pin the skeletons' ports; zero lets the
	// process-wide counter assign one.
	DataPort    int
	CommandPort int
	// NamingAddress is the naming server's registration-interface
	// address.
	NamingAddress string
	// MaxConnRate caps new connections accepted per second on each
	// skeleton; 0 leaves the accept loop unthrottled.
	MaxConnRate uint
}

// Result holds the running components of a bootstrapped storage server.
type Result struct {
	Server          *storage.Server
	DataSkeleton    *rmi.Skeleton
	CommandSkeleton *rmi.Skeleton
	DataStub        *storage.Stub
	CommandStub     *storage.CommandStub
	Evicted         []rpath.Path
}

// Stop shuts down both of the result's skeletons.
func (r *Result) Stop() {
	r.DataSkeleton.Stop()
	r.CommandSkeleton.Stop()
}

// Run executes the full bootstrap sequence described in the naming
// service's registration protocol: configure both skeletons with the
// advertised hostname, start them, enumerate the local root, register with
// naming, locally delete whatever naming evicts, then prune directories
// left empty by that deletion.
func Run(cfg Config) (*Result, error) {
	if err := os.MkdirAll(cfg.LocalRoot, 0755); err != nil {
		return nil, rmi.NewError(rmi.KindIOError, "create local root %s: %v", cfg.LocalRoot, err)
	}

	srv := storage.NewServer(cfg.LocalRoot)

	dataSk := storage.NewDataSkeleton(srv)
	if err := dataSk.SetAddress(cfg.BindHost, cfg.DataPort); err != nil {
		return nil, err
	}
	cmdSk := storage.NewCommandSkeleton(srv)
	if err := cmdSk.SetAddress(cfg.BindHost, cfg.CommandPort); err != nil {
		return nil, err
	}

	if cfg.MaxConnRate > 0 {
		dataSk.AcceptLimiter = ratelimiter.New(cfg.MaxConnRate, cfg.MaxConnRate*2)
		cmdSk.AcceptLimiter = ratelimiter.New(cfg.MaxConnRate, cfg.MaxConnRate*2)
	}

	if err := dataSk.Start(); err != nil {
		return nil, err
	}
	if err := cmdSk.Start(); err != nil {
		dataSk.Stop()
		return nil, err
	}

	dataStub, err := storage.CreateDataStubWithHost(dataSk, cfg.AdvertiseHost)
	if err != nil {
		dataSk.Stop()
		cmdSk.Stop()
		return nil, err
	}
	cmdStub, err := storage.CreateCommandStubWithHost(cmdSk, cfg.AdvertiseHost)
	if err != nil {
		dataSk.Stop()
		cmdSk.Stop()
		return nil, err
	}

	files, err := rpath.List(cfg.LocalRoot)
	if err != nil {
		dataSk.Stop()
		cmdSk.Stop()
		return nil, err
	}

	regStub := naming.NewRegistrationStub(cfg.NamingAddress)
	evicted, err := regStub.Register(dataStub, cmdStub, files)
	if err != nil {
		dataSk.Stop()
		cmdSk.Stop()
		return nil, err
	}

	for _, p := range evicted {
		if _, err := srv.Delete(p); err != nil {
			logger.Warn("bootstrap: local evict of %s failed: %v", p, err)
		}
	}

	if err := pruneEmptyDirs(cfg.LocalRoot); err != nil {
		logger.Warn("bootstrap: prune empty directories under %s: %v", cfg.LocalRoot, err)
	}

	logger.Info("bootstrap: registered %d files, evicted %d, now serving %s as %s",
		len(files), len(evicted), cfg.LocalRoot, dataStub.Address())

	return &Result{
		Server:          srv,
		DataSkeleton:    dataSk,
		CommandSkeleton: cmdSk,
		DataStub:        dataStub,
		CommandStub:     cmdStub,
		Evicted:         evicted,
	}, nil
}

// pruneEmptyDirs walks root bottom-up and removes every directory beneath
// it (never root itself) that ends up with no entries, so that after
// eviction the local tree contains only paths also known to the naming
// tree.
func pruneEmptyDirs(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		child := filepath.Join(root, e.Name())
		if err := pruneEmptyDirs(child); err != nil {
			return err
		}
		remaining, err := os.ReadDir(child)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			if err := os.Remove(child); err != nil {
				return err
			}
		}
	}
	return nil
}
