/*
Package hub contains the connection/session registry and the message-routing
engine: it tracks which authenticated identities sit behind which transport
handles, which handles belong to which rooms, and delivers the chat verbs.
*/
package hub

import (
	"sync"

	"pingchat/internal/app/user"
)

// Registry owns the bidirectional mapping between transport handles and
// authenticated identities. The two maps are mutated under one lock so any
// external observer sees them as consistent mirrors: a handle maps to an
// identity exactly when that identity maps back to the same handle.
type Registry struct {
	mu       sync.RWMutex
	byHandle map[string]user.Identity
	byUser   map[string]string
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		byHandle: make(map[string]user.Identity),
		byUser:   make(map[string]string),
	}
}

// Admit records the handle→identity and identity→handle entries. When the
// identity already has a live connection under a different handle, the newer
// connection wins: the old handle is dropped from both maps and returned so
// the caller can tear the stale connection down. Returns "" when nothing was
// displaced.
func (r *Registry) Admit(handle string, ident user.Identity) (displaced string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prior, ok := r.byUser[ident.ID]; ok && prior != handle {
		delete(r.byHandle, prior)
		displaced = prior
	}

	r.byHandle[handle] = ident
	r.byUser[ident.ID] = handle

	return displaced
}

// Evict removes both map entries for the handle and returns the identity that
// was registered under it. Evicting an unknown handle is a no-op, not an
// error.
func (r *Registry) Evict(handle string) (user.Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ident, ok := r.byHandle[handle]
	if !ok {
		return user.Identity{}, false
	}

	delete(r.byHandle, handle)

	// Guard against a newer connection having taken over the identity slot.
	if current, ok := r.byUser[ident.ID]; ok && current == handle {
		delete(r.byUser, ident.ID)
	}

	return ident, true
}

// Identity resolves the identity admitted under the given handle.
func (r *Registry) Identity(handle string) (user.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ident, ok := r.byHandle[handle]
	return ident, ok
}

// Handle resolves the live connection handle for the given identity id.
func (r *Registry) Handle(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handle, ok := r.byUser[userID]
	return handle, ok
}

// Handles returns a snapshot of every currently admitted handle.
func (r *Registry) Handles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := make([]string, 0, len(r.byHandle))
	for handle := range r.byHandle {
		handles = append(handles, handle)
	}
	return handles
}

// Len returns the number of admitted connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byHandle)
}
