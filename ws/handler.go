package ws

import (
	"log/slog"
	"net/http"
	"time"

	"cinechat/auth"
	"cinechat/relay"

	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests to websockets and registers each socket
// with the relay. When requireAuth is set, a connection whose credential is
// absent or invalid is closed immediately after the handshake and no events
// from it are processed.
type Handler struct {
	log           *slog.Logger
	relay         *relay.Relay
	authenticator *auth.Authenticator
	requireAuth   bool
	sendBuffer    int
	upgrader      websocket.Upgrader
}

func NewHandler(log *slog.Logger, r *relay.Relay, authenticator *auth.Authenticator, requireAuth bool, sendBuffer int) *Handler {
	return &Handler{
		log:           log,
		relay:         r,
		authenticator: authenticator,
		requireAuth:   requireAuth,
		sendBuffer:    sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	credential := auth.BearerFromRequest(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	var identity auth.Identity
	if credential != "" {
		identity, err = h.authenticator.Verify(credential)
	}
	if h.requireAuth && (credential == "" || err != nil) {
		h.log.Info("unauthenticated socket closed", "remote", r.RemoteAddr, "error", err)
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Unauthorized"),
			time.Now().Add(writeWait),
		)
		_ = conn.Close()
		return
	}
	if err != nil {
		// Auth optional in this deployment: fall back to anonymous.
		identity = auth.Identity{}
	}

	c := newClient(conn, h.relay, h.log, h.sendBuffer)
	registered := h.relay.Register(identity, c)
	c.connID = registered.ID

	go c.writePump()
	go c.readPump()
}
