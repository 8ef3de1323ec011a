package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yourorg/taskboard/internal/realtime"
	"github.com/yourorg/taskboard/internal/security/middleware"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// WSHandler upgrades /ws connections and bridges them onto the broadcast
// hub. Authentication happened upstream; browsers pass the token as a
// query parameter since they cannot set headers on the upgrade request.
type WSHandler struct {
	hub            *realtime.Hub
	logger         *slog.Logger
	allowedOrigins []string
}

// NewWSHandler creates a websocket handler
func NewWSHandler(hub *realtime.Hub, allowedOrigins []string, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		hub:            hub,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

// upgrader is initialized per-request to use instance's allowed origins
func (h *WSHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Allow requests with no origin (e.g., non-browser clients)
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing auth", http.StatusUnauthorized)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	// One subscriber per connection, not per user; the same account may
	// listen from several tabs
	sub := h.hub.Subscribe(uuid.New().String(), actor.Role)

	go h.writeLoop(conn, sub)
	h.readLoop(conn, sub)
}

// writeLoop drains the subscriber channel onto the connection and keeps it
// alive with pings
func (h *WSHandler) writeLoop(conn *websocket.Conn, sub *realtime.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-sub.Messages():
			if !ok {
				conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.hub.Unsubscribe(sub.ID)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				h.hub.Unsubscribe(sub.ID)
				return
			}
		}
	}
}

// readLoop discards inbound frames; its job is noticing the close
func (h *WSHandler) readLoop(conn *websocket.Conn, sub *realtime.Subscriber) {
	defer h.hub.Unsubscribe(sub.ID)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket closed unexpectedly", slog.String("subscriber_id", sub.ID))
			}
			return
		}
	}
}
