package relay

import (
	"sync"

	"github.com/samber/lo"
)

type set map[*Connection]struct{}

// Directory maps room names to their current member sets. Rooms are created
// lazily on first join and evicted when their last member leaves, so an
// empty room is indistinguishable from one that never existed.
//
// Both directions of the membership relation (room -> members and
// connection -> rooms) are kept under a single lock, so no interleaving of
// concurrent join/leave/members can observe a torn membership set.
type Directory struct {
	mu     sync.RWMutex
	rooms  map[string]set
	joined map[*Connection]map[string]struct{}
}

func NewDirectory() *Directory {
	return &Directory{
		rooms:  make(map[string]set),
		joined: make(map[*Connection]map[string]struct{}),
	}
}

// Join adds the connection to the room's member set, creating the room on
// the fly if absent. Joining a room already joined is idempotent: no
// duplicate membership, so no duplicate delivery.
func (d *Directory) Join(room string, conn *Connection) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.rooms[room]; !ok {
		d.rooms[room] = make(set)
	}
	d.rooms[room][conn] = struct{}{}

	if _, ok := d.joined[conn]; !ok {
		d.joined[conn] = make(map[string]struct{})
	}
	d.joined[conn][room] = struct{}{}
}

// Leave removes the connection from the room. Idempotent; the room entry is
// removed entirely once no one is left, preventing unbounded growth over
// churny room names.
func (d *Directory) Leave(room string, conn *Connection) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.leaveLocked(room, conn)
}

func (d *Directory) leaveLocked(room string, conn *Connection) {
	if members, ok := d.rooms[room]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(d.rooms, room)
		}
	}

	if rooms, ok := d.joined[conn]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(d.joined, conn)
		}
	}
}

// Members returns a stable snapshot of the room's member set. A concurrent
// join or leave affects only subsequent snapshots, never one already taken.
func (d *Directory) Members(room string) []*Connection {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members, ok := d.rooms[room]
	if !ok {
		return nil
	}
	snapshot := make([]*Connection, 0, len(members))
	for conn := range members {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// Rooms returns the names of every room the connection currently belongs to.
func (d *Directory) Rooms(conn *Connection) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return lo.Keys(d.joined[conn])
}

// DropAll removes the connection from every room it referenced. Called by
// the relay while unregistering, so a destroyed connection can never linger
// in a member set.
func (d *Directory) DropAll(conn *Connection) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for room := range d.joined[conn] {
		d.leaveLocked(room, conn)
	}
}
