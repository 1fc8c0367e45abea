// Package relay implements the real-time messaging core: the registry of
// live connections, the directory of room memberships, and the fan-out of
// chat payloads to room members. All state is process-local and transient.
package relay

import (
	"cinechat/auth"
)

// Sink is the write side of one live client transport. Send must never
// block on a slow consumer: implementations buffer and report failure when
// the buffer is full. Close releases the transport and is idempotent.
type Sink interface {
	Send(payload []byte) error
	Close() error
}

// Connection represents one live real-time channel to a client. The
// Registry exclusively owns it from Register until Unregister; room
// membership is tracked by the Directory, never by the connection itself.
type Connection struct {
	ID       string
	Identity auth.Identity
	sink     Sink
}

func (c *Connection) Sink() Sink {
	return c.sink
}
