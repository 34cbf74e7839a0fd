package session

import "sync"

// Sink receives push frames for one live connection. Implementations
// must be safe for concurrent Send calls.
type Sink interface {
	Send(v any) error
}

// Registry tracks the live push targets per session. It is owned by
// the controller; there is no process-wide singleton.
type Registry struct {
	mu    sync.Mutex
	sinks map[string]map[Sink]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sinks: make(map[string]map[Sink]bool)}
}

// Add registers a sink for a session. Called on connect.
func (r *Registry) Add(key string, s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sinks[key] == nil {
		r.sinks[key] = make(map[Sink]bool)
	}
	r.sinks[key][s] = true
}

// Remove deregisters a sink. Called on disconnect.
func (r *Registry) Remove(key string, s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks[key], s)
	if len(r.sinks[key]) == 0 {
		delete(r.sinks, key)
	}
}

// Broadcast sends v to every live sink of the session. Delivery is
// best-effort; send failures drop the frame for that sink only.
func (r *Registry) Broadcast(key string, v any) {
	r.mu.Lock()
	targets := make([]Sink, 0, len(r.sinks[key]))
	for s := range r.sinks[key] {
		targets = append(targets, s)
	}
	r.mu.Unlock()

	for _, s := range targets {
		_ = s.Send(v)
	}
}

// Count returns the number of live sinks for a session.
func (r *Registry) Count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sinks[key])
}
