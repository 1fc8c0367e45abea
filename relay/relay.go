package relay

import (
	"log/slog"
	"sync/atomic"

	"cinechat/auth"
)

// Relay is the explicitly owned service object tying the connection
// registry to the room directory and fanning inbound chat events out to
// room members. Construct one per process and pass it by reference into
// every transport handler; there are no package-level singletons.
type Relay struct {
	log             *slog.Logger
	registry        *Registry
	directory       *Directory
	broadcastToSelf bool

	deliveryFailures atomic.Uint64
}

// New builds a relay. broadcastToSelf fixes the sender-inclusion policy for
// the lifetime of the relay: false (the default deployment) excludes the
// sender's own connection from fan-out, true mirrors the
// whole-room-including-sender behavior some clients expect.
func New(log *slog.Logger, broadcastToSelf bool) *Relay {
	return &Relay{
		log:             log,
		registry:        NewRegistry(),
		directory:       NewDirectory(),
		broadcastToSelf: broadcastToSelf,
	}
}

// Register records a new live connection under a fresh ID.
func (r *Relay) Register(identity auth.Identity, sink Sink) *Connection {
	conn := r.registry.Register(identity, sink)
	r.log.Info("connection registered", "conn_id", conn.ID, "user", conn.Identity.Handle, "total", r.registry.Len())
	return conn
}

// Unregister removes the connection from the registry and from every room
// it joined, then closes its sink. Idempotent: duplicate disconnect
// notifications from the transport layer are no-ops. Once Unregister
// returns, no subsequent Publish can observe the connection as a member.
func (r *Relay) Unregister(connID string) {
	conn := r.registry.Unregister(connID)
	if conn == nil {
		return
	}
	r.directory.DropAll(conn)
	_ = conn.sink.Close()
	r.log.Info("connection unregistered", "conn_id", conn.ID, "user", conn.Identity.Handle, "total", r.registry.Len())
}

// Join subscribes the connection to a room. A join for a connection that
// already disconnected is silently ignored: the client may have raced its
// own disconnect.
func (r *Relay) Join(connID, room string) {
	conn, ok := r.registry.Get(connID)
	if !ok {
		return
	}
	r.directory.Join(room, conn)
	r.log.Debug("joined room", "conn_id", connID, "room", room)
}

// Leave unsubscribes the connection from a room; unknown connections and
// rooms are ignored.
func (r *Relay) Leave(connID, room string) {
	conn, ok := r.registry.Get(connID)
	if !ok {
		return
	}
	r.directory.Leave(room, conn)
	r.log.Debug("left room", "conn_id", connID, "room", room)
}

// Publish delivers the payload to every member of the room present in the
// snapshot taken at call time, except (by default) the sender. A failed
// delivery to one member is counted and logged but never aborts delivery to
// the rest, and never surfaces to the publisher.
func (r *Relay) Publish(room, senderID string, payload []byte) {
	for _, member := range r.directory.Members(room) {
		if !r.broadcastToSelf && member.ID == senderID {
			continue
		}
		if err := member.sink.Send(payload); err != nil {
			r.deliveryFailures.Add(1)
			r.log.Warn("delivery failed", "room", room, "conn_id", member.ID, "error", err)
		}
	}
}

// DeliveryFailures reports the number of per-member sends that failed since
// the relay was built.
func (r *Relay) DeliveryFailures() uint64 {
	return r.deliveryFailures.Load()
}

// RoomMembers reports the connection IDs currently subscribed to a room.
func (r *Relay) RoomMembers(room string) []string {
	members := r.directory.Members(room)
	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.ID)
	}
	return ids
}

// Connections reports the current number of live connections.
func (r *Relay) Connections() int {
	return r.registry.Len()
}

// Shutdown drains the registry, dropping every connection from its rooms
// and closing every sink. The relay is empty afterwards; connections that
// race their own disconnect hit the idempotent unregister path.
func (r *Relay) Shutdown() {
	for _, conn := range r.registry.Drain() {
		r.directory.DropAll(conn)
		_ = conn.sink.Close()
	}
	r.log.Info("relay shut down")
}
