package realtime

import (
	"sync"
)

// Conn is a live push connection.
type Conn interface {
	// Send queues ev without blocking and reports whether it was accepted.
	Send(ev Event) bool
	Close() error
}

// Registry maps a user id to at most one live connection.
type Registry interface {
	// Register binds conn to userID, replacing any previous binding, and
	// returns the generation of the new binding.
	Register(userID uint64, conn Conn) uint64
	// Unregister removes the binding for userID only when generation is
	// still the current one.
	Unregister(userID, generation uint64) bool
	Lookup(userID uint64) (Conn, bool)
	Len() int
	// Close closes every registered connection and empties the registry.
	Close() error
}

type registration struct {
	conn       Conn
	generation uint64
}

// MemoryRegistry is an in-process Registry. Its contents do not survive a
// restart.
type MemoryRegistry struct {
	mu      sync.RWMutex
	conns   map[uint64]registration
	nextGen uint64
	closed  bool
	metrics *Metrics
}

func NewMemoryRegistry(metrics *Metrics) *MemoryRegistry {
	return &MemoryRegistry{
		conns:   make(map[uint64]registration),
		metrics: metrics,
	}
}

func (r *MemoryRegistry) Register(userID uint64, conn Conn) uint64 {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = conn.Close()
		return 0
	}
	r.nextGen++
	gen := r.nextGen
	r.conns[userID] = registration{conn: conn, generation: gen}
	n := len(r.conns)
	r.mu.Unlock()

	r.metrics.setConnections(n)
	return gen
}

func (r *MemoryRegistry) Unregister(userID, generation uint64) bool {
	r.mu.Lock()
	current, ok := r.conns[userID]
	if !ok || current.generation != generation {
		r.mu.Unlock()
		return false
	}
	delete(r.conns, userID)
	n := len(r.conns)
	r.mu.Unlock()

	r.metrics.setConnections(n)
	return true
}

func (r *MemoryRegistry) Lookup(userID uint64) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.conns[userID]
	if !ok {
		return nil, false
	}
	return reg.conn, true
}

func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *MemoryRegistry) Close() error {
	r.mu.Lock()
	r.closed = true
	conns := make([]Conn, 0, len(r.conns))
	for _, reg := range r.conns {
		conns = append(conns, reg.conn)
	}
	r.conns = make(map[uint64]registration)
	r.mu.Unlock()

	r.metrics.setConnections(0)

	var firstErr error
	for _, conn := range conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
