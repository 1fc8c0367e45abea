package relay

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"cinechat/auth"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// recordSink captures delivered payloads; it can be switched to failing to
// simulate a broken transport.
type recordSink struct {
	mu       sync.Mutex
	payloads [][]byte
	failing  bool
	closed   bool
}

func (s *recordSink) Send(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return fmt.Errorf("transport write error")
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *recordSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *recordSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

func (s *recordSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func newTestRelay(broadcastToSelf bool) *Relay {
	return New(logs.GetLoggerFromLevel(slog.LevelError), broadcastToSelf)
}

func TestRelay_Publish_Lobby_Scenario(t *testing.T) {
	req := require.New(t)
	r := newTestRelay(false)

	// Given connections A, B, C joined room "lobby"
	sinkA, sinkB, sinkC := &recordSink{}, &recordSink{}, &recordSink{}
	a := r.Register(auth.Identity{ID: "user-a", Handle: "a@example.com"}, sinkA)
	b := r.Register(auth.Identity{ID: "user-b", Handle: "b@example.com"}, sinkB)
	c := r.Register(auth.Identity{ID: "user-c", Handle: "c@example.com"}, sinkC)
	r.Join(a.ID, "lobby")
	r.Join(b.ID, "lobby")
	r.Join(c.ID, "lobby")

	// When A publishes a chat payload
	payload := []byte(`{"type":"chat","room":"lobby","text":"hi"}`)
	r.Publish("lobby", a.ID, payload)

	// Then B and C each receive exactly one copy, A receives nothing
	req.Equal(1, sinkB.count())
	req.Equal(1, sinkC.count())
	req.Equal(0, sinkA.count())
	req.Equal(payload, sinkB.payloads[0])
}

func TestRelay_Publish_Includes_Sender_When_Configured(t *testing.T) {
	req := require.New(t)
	r := newTestRelay(true)

	sinkA, sinkB := &recordSink{}, &recordSink{}
	a := r.Register(auth.Identity{ID: "user-a"}, sinkA)
	b := r.Register(auth.Identity{ID: "user-b"}, sinkB)
	r.Join(a.ID, "lobby")
	r.Join(b.ID, "lobby")

	r.Publish("lobby", a.ID, []byte("hello"))

	// The whole room receives the payload, the sender included
	req.Equal(1, sinkA.count())
	req.Equal(1, sinkB.count())
}

func TestRelay_Publish_After_Leave(t *testing.T) {
	req := require.New(t)
	r := newTestRelay(false)

	sinkA, sinkB, sinkC := &recordSink{}, &recordSink{}, &recordSink{}
	a := r.Register(auth.Identity{ID: "user-a"}, sinkA)
	b := r.Register(auth.Identity{ID: "user-b"}, sinkB)
	c := r.Register(auth.Identity{ID: "user-c"}, sinkC)
	r.Join(a.ID, "lobby")
	r.Join(b.ID, "lobby")
	r.Join(c.ID, "lobby")

	// When B leaves and A publishes
	r.Leave(b.ID, "lobby")
	r.Publish("lobby", a.ID, []byte("hi"))

	// Then only C receives the event
	req.Equal(0, sinkB.count())
	req.Equal(1, sinkC.count())
}

func TestRelay_Duplicate_Join_No_Duplicate_Delivery(t *testing.T) {
	req := require.New(t)
	r := newTestRelay(false)

	sinkA, sinkB := &recordSink{}, &recordSink{}
	a := r.Register(auth.Identity{ID: "user-a"}, sinkA)
	b := r.Register(auth.Identity{ID: "user-b"}, sinkB)
	r.Join(a.ID, "lobby")
	r.Join(b.ID, "lobby")
	r.Join(b.ID, "lobby")
	r.Join(b.ID, "lobby")

	r.Publish("lobby", a.ID, []byte("hi"))

	req.Equal(1, sinkB.count())
}

func TestRelay_Publish_To_Unknown_Room_Is_Noop(t *testing.T) {
	req := require.New(t)
	r := newTestRelay(false)

	r.Publish("ghost-town", "nobody", []byte("hi"))

	req.Zero(r.DeliveryFailures())
}

func TestRelay_Join_Leave_Unknown_Connection_Ignored(t *testing.T) {
	req := require.New(t)
	r := newTestRelay(false)

	// A connection that already disconnected may still race a join
	r.Join("gone", "lobby")
	r.Leave("gone", "lobby")

	req.Empty(r.RoomMembers("lobby"))
}

func TestRelay_Delivery_Failure_Is_Isolated(t *testing.T) {
	req := require.New(t)
	r := newTestRelay(false)

	sinkA, sinkBroken, sinkC := &recordSink{}, &recordSink{failing: true}, &recordSink{}
	a := r.Register(auth.Identity{ID: "user-a"}, sinkA)
	b := r.Register(auth.Identity{ID: "user-b"}, sinkBroken)
	c := r.Register(auth.Identity{ID: "user-c"}, sinkC)
	r.Join(a.ID, "lobby")
	r.Join(b.ID, "lobby")
	r.Join(c.ID, "lobby")

	r.Publish("lobby", a.ID, []byte("hi"))

	// The broken member fails alone; the healthy one still gets its copy
	req.Equal(1, sinkC.count())
	req.Equal(uint64(1), r.DeliveryFailures())
}

func TestRelay_Unregister_Removes_From_All_Rooms(t *testing.T) {
	req := require.New(t)
	r := newTestRelay(false)

	sinkA, sinkB := &recordSink{}, &recordSink{}
	a := r.Register(auth.Identity{ID: "user-a"}, sinkA)
	b := r.Register(auth.Identity{ID: "user-b"}, sinkB)
	r.Join(b.ID, "lobby")
	r.Join(b.ID, "reviews")

	// When B disconnects
	r.Unregister(b.ID)

	// Then no room references it anymore and its sink is closed
	req.NotContains(r.RoomMembers("lobby"), b.ID)
	req.NotContains(r.RoomMembers("reviews"), b.ID)
	req.True(sinkB.isClosed())

	// And publishes reach nobody stale
	r.Publish("lobby", a.ID, []byte("hi"))
	req.Equal(0, sinkB.count())
	req.Zero(r.DeliveryFailures())
}

func TestRelay_Unregister_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	r := newTestRelay(false)

	sink := &recordSink{}
	conn := r.Register(auth.Identity{ID: "user-a"}, sink)
	r.Join(conn.ID, "lobby")

	// Duplicate disconnect notifications from the transport layer
	r.Unregister(conn.ID)
	r.Unregister(conn.ID)

	req.Zero(r.Connections())
}

func TestRelay_No_Delivery_After_Unregister_Completes(t *testing.T) {
	req := require.New(t)
	r := newTestRelay(false)

	sinkA := &recordSink{}
	a := r.Register(auth.Identity{ID: "user-a"}, sinkA)
	r.Join(a.ID, "lobby")

	// Concurrent churn: members come and go while the publisher runs
	var wg sync.WaitGroup
	var violations atomic.Int64
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink := &recordSink{}
			conn := r.Register(auth.Identity{ID: "churn"}, sink)
			r.Join(conn.ID, "lobby")
			r.Unregister(conn.ID)
			// Once Unregister returned, no later publish may reach this sink
			before := sink.count()
			r.Publish("lobby", a.ID, []byte("hi"))
			if sink.count() != before {
				violations.Add(1)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 64; i++ {
			r.Publish("lobby", "someone-else", []byte("noise"))
		}
	}()
	wg.Wait()

	req.Zero(violations.Load())
}

func TestRelay_Shutdown_Drains_Everything(t *testing.T) {
	req := require.New(t)
	r := newTestRelay(false)

	sinkA, sinkB := &recordSink{}, &recordSink{}
	a := r.Register(auth.Identity{ID: "user-a"}, sinkA)
	b := r.Register(auth.Identity{ID: "user-b"}, sinkB)
	r.Join(a.ID, "lobby")
	r.Join(b.ID, "lobby")

	r.Shutdown()

	req.Zero(r.Connections())
	req.Empty(r.RoomMembers("lobby"))
	req.True(sinkA.isClosed())
	req.True(sinkB.isClosed())
}
