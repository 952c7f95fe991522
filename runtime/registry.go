package runtime

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the process-wide set of live sessions, shared by every
// connection goroutine. One RWMutex serializes structural mutation;
// iteration works on a snapshot so a visitor doing network I/O never
// holds the lock and never observes a half-removed session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Remove deregisters a session. Removing an absent session is a no-op,
// which keeps concurrent teardown triggers harmless.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s.ID)
}

// ForEach visits every session present when the call started, exactly
// once each. The visitor runs outside the lock; its failure handling is
// the caller's concern and never aborts the remaining visits.
func (r *Registry) ForEach(visit func(s *Session)) {
	r.mu.RLock()
	snapshot := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		snapshot = append(snapshot, s)
	}
	r.mu.RUnlock()

	for _, s := range snapshot {
		visit(s)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
