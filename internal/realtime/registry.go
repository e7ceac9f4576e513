// Package realtime pushes order events to connected websocket sessions.
//
// Registry maps a participant (user or seller id) to its live session, Hub owns
// the websocket sessions, and Dispatcher turns order events into frames.
package realtime

import "sync"

// Registry is the participant id -> session id table. It is process-local and
// safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]string)}
}

// Register binds the participant to the session, replacing any earlier session.
func (r *Registry) Register(participantID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[participantID] = sessionID
}

// Unregister removes the entry pointing at sessionID. Disconnects only carry the
// session, so the table is scanned.
func (r *Registry) Unregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for participantID, s := range r.entries {
		if s == sessionID {
			delete(r.entries, participantID)
			return
		}
	}
}

func (r *Registry) Lookup(participantID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.entries[participantID]
	return s, ok
}

// Snapshot returns a copy of the table.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
