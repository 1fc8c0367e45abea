// Package ws binds gorilla/websocket connections to the relay core: the
// handshake resolves an identity, each socket becomes one relay connection,
// and inbound subscribe/chat events drive room membership and fan-out.
package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cinechat/relay"

	"github.com/gorilla/websocket"
)

var (
	writeWait      = 10 * time.Second
	maxMessageSize = int64(4096)
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
)

const (
	eventSubscribe = "subscribe"
	eventChat      = "chat"
)

var errSlowConsumer = fmt.Errorf("send buffer full")
var errClosed = fmt.Errorf("connection closed")

// envelope is the minimal view of an inbound event. Chat payloads are
// relayed as the exact bytes received; only type and room are inspected.
type envelope struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// client owns one websocket and implements relay.Sink. Writes go through a
// buffered channel drained by writePump so one slow socket never blocks a
// broadcast.
type client struct {
	connID string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	relay  *relay.Relay
	log    *slog.Logger
}

func newClient(conn *websocket.Conn, r *relay.Relay, log *slog.Logger, sendBuffer int) *client {
	return &client{
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
		relay: r,
		log:   log,
	}
}

// Send implements relay.Sink. It never blocks: a full buffer means this
// member is too slow and the delivery fails for it alone.
func (c *client) Send(payload []byte) error {
	select {
	case <-c.done:
		return errClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return errClosed
	default:
		return errSlowConsumer
	}
}

// Close implements relay.Sink. Idempotent; wakes writePump so it can emit a
// close frame and release the socket.
func (c *client) Close() error {
	c.once.Do(func() {
		close(c.done)
	})
	return nil
}

func (c *client) readPump() {
	defer func() {
		c.relay.Unregister(c.connID)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read failed", "conn_id", c.connID, "error", err)
			}
			return
		}

		var ev envelope
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.log.Debug("malformed event dropped", "conn_id", c.connID, "error", err)
			continue
		}
		if ev.Room == "" {
			continue
		}

		switch ev.Type {
		case eventSubscribe:
			c.relay.Join(c.connID, ev.Room)
		case eventChat:
			// The payload is fanned out exactly as received.
			c.relay.Publish(ev.Room, c.connID, raw)
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Debug("write failed", "conn_id", c.connID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
