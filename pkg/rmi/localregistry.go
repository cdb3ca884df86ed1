package rmi

import "sync"

// localRegistry lets a Stub whose skeleton happens to live in this same
// process bypass the socket entirely. The original design this package is
// grounded on kept a static address-to-skeleton map populated as a side
// effect of every skeleton's construction; here the shortcut is instead an
// explicit transport-layer opt-in (RegisterLocal), owned by this package
// rather than threaded through construction, so a skeleton that is never
// meant to serve in-process callers never appears in it.
var localRegistry = struct {
	mu      sync.RWMutex
	entries map[string]Handler
}{entries: make(map[string]Handler)}

func localKey(iface, address string) string {
	return iface + "@" + address
}

// RegisterLocal makes s's handler reachable via the in-process shortcut at
// its current address. Call after Start, once Address() is final.
func (s *Skeleton) RegisterLocal() {
	localRegistry.mu.Lock()
	defer localRegistry.mu.Unlock()
	localRegistry.entries[localKey(s.iface, s.Address())] = s.handler
}

// UnregisterLocal removes s's in-process shortcut entry, if any.
func (s *Skeleton) UnregisterLocal() {
	localRegistry.mu.Lock()
	defer localRegistry.mu.Unlock()
	delete(localRegistry.entries, localKey(s.iface, s.Address()))
}

func lookupLocal(iface, address string) (Handler, bool) {
	localRegistry.mu.RLock()
	defer localRegistry.mu.RUnlock()
	h, ok := localRegistry.entries[localKey(iface, address)]
	return h, ok
}
