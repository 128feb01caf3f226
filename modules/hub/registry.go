package hub

import "sync"

// sendBufferSize bounds each session's outbound channel. When a recipient's
// buffer is full the newest frame for that one recipient is dropped rather
// than blocking the broadcaster.
const sendBufferSize = 256

// Registry maps session identity to the outbound delivery channel for that
// session. Sessions are keyed by user identity: a second connection from the
// same user silently replaces the first entry, orphaning the earlier channel
// without closing its socket (documented behavior).
type Registry struct {
	mu       sync.RWMutex
	channels map[string]chan []byte
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]chan []byte),
	}
}

// Register installs or replaces the outbound channel for id.
func (r *Registry) Register(id string, ch chan []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[id] = ch
}

// Unregister removes the entry for id, but only if it still holds ch. A
// session whose entry was replaced by a newer connection must not evict its
// successor during cleanup. Idempotent.
func (r *Registry) Unregister(id string, ch chan []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.channels[id]; ok && current == ch {
		delete(r.channels, id)
	}
}

// Lookup returns the channel for id, or false when the session is gone.
// Disconnect races are expected and normal; absence is not an error.
func (r *Registry) Lookup(id string) (chan []byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[id]
	return ch, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}
