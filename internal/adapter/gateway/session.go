package gateway

import (
	"fmt"
	"sync"
)

// SessionRegistry tracks which client identifiers have an open session in this
// process. The gateway allows one session per identifier.
type SessionRegistry struct {
	mu   sync.Mutex
	held map[int]struct{}
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{held: make(map[int]struct{})}
}

// Claim marks id as in use. A nil registry claims nothing.
func (r *SessionRegistry) Claim(id int) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.held[id]; ok {
		return fmt.Errorf("client id %d already has an open session", id)
	}
	r.held[id] = struct{}{}
	return nil
}

// Release frees id.
func (r *SessionRegistry) Release(id int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	delete(r.held, id)
	r.mu.Unlock()
}

// Held reports whether id is currently claimed.
func (r *SessionRegistry) Held(id int) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.held[id]
	return ok
}
