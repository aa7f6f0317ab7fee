package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/wavely-app/backend/internal/middleware"
	"github.com/wavely-app/backend/internal/realtime"
	"go.uber.org/zap"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
)

// WSHandler upgrades authenticated clients to a websocket and keeps the
// connection registered in the hub for its lifetime. The channel is removed
// synchronously when the read loop ends, so the hub never hands out a closed
// channel.
type WSHandler struct {
	hub       *realtime.Hub
	jwtSecret string
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *realtime.Hub, jwtSecret string, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RegisterWSRoutes registers the websocket endpoint
func (h *WSHandler) RegisterWSRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Serve authenticates via the token query param (browsers cannot set headers
// on websocket upgrades), registers a channel and blocks on the read loop
// until the client goes away.
func (h *WSHandler) Serve(c echo.Context) error {
	claims, err := middleware.ParseToken(h.jwtSecret, c.QueryParam("token"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	ch := realtime.NewChannel(claims.UserID, conn)
	h.hub.Register(ch)
	defer func() {
		h.hub.Unregister(ch)
		_ = ch.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stop := make(chan struct{})
	defer close(stop)
	go h.keepalive(conn, stop)

	for {
		// Clients only listen on this socket; frames are read solely to
		// observe pongs and the close handshake.
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket closed unexpectedly",
					zap.Uint("user_id", claims.UserID), zap.Error(err))
			}
			return nil
		}
	}
}

func (h *WSHandler) keepalive(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}
