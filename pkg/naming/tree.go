package naming

import (
	"github.com/distfs/distfs/pkg/rpath"
	"github.com/distfs/distfs/pkg/storage"
)

// node is one entry of the naming server's directory tree: either a
// directory with named children, or a file bound to exactly one storage
// server's (data, command) stub pair.
type node struct {
	isDir    bool
	children map[string]*node

	storageStub *storage.Stub
	commandStub *storage.CommandStub
}

func newDirNode() *node {
	return &node{isDir: true, children: make(map[string]*node)}
}

func newFileNode(storageStub *storage.Stub, commandStub *storage.CommandStub) *node {
	return &node{storageStub: storageStub, commandStub: commandStub}
}

// lookup walks p's components from n and returns the node at p, or nil if a
// component is missing or the walk passes through a file.
func (n *node) lookup(p rpath.Path) *node {
	cur := n
	for _, c := range p.Components() {
		if !cur.isDir {
			return nil
		}
		next, ok := cur.children[c]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// fileEntry pairs a file node with its absolute path, since the tree itself
// only stores names keyed under each directory.
type fileEntry struct {
	path rpath.Path
	node *node
}

// collectFiles returns every file reachable at or beneath n, with n itself
// located at "at". For a file node this is just {at, n}; for a directory it
// recurses, which is what lets a single directory delete fan out to every
// storage server holding a descendant file.
func collectFiles(n *node, at rpath.Path) []fileEntry {
	if !n.isDir {
		return []fileEntry{{path: at, node: n}}
	}
	var out []fileEntry
	for name, child := range n.children {
		childPath, err := rpath.Join(at, name)
		if err != nil {
			// names stored as map keys were validated at insertion time.
			continue
		}
		out = append(out, collectFiles(child, childPath)...)
	}
	return out
}
