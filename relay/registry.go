package relay

import (
	"sync"

	"cinechat/auth"

	"github.com/google/uuid"
)

// Registry tracks every live connection by its process-unique ID. It is
// safe for concurrent use by many simultaneous connection handlers.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Connection
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*Connection),
	}
}

// Register allocates a new Connection with a fresh unique ID and stores the
// resolved identity by value.
func (r *Registry) Register(identity auth.Identity, sink Sink) *Connection {
	conn := &Connection{
		ID:       uuid.NewString(),
		Identity: identity,
		sink:     sink,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ID] = conn
	return conn
}

// Unregister removes the connection and returns it so the caller can clean
// up its room memberships. Unregistering an unknown ID is a no-op, not an
// error: the transport layer may report the same disconnect twice.
func (r *Registry) Unregister(connID string) *Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		return nil
	}
	delete(r.conns, connID)
	return conn
}

func (r *Registry) Get(connID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[connID]
	return conn, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Drain removes and returns every live connection. Used at shutdown.
func (r *Registry) Drain() []*Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	drained := make([]*Connection, 0, len(r.conns))
	for id, conn := range r.conns {
		drained = append(drained, conn)
		delete(r.conns, id)
	}
	return drained
}
