package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tbourn/go-topup-portal/internal/http/middleware"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Clients only send control frames.
	maxMessageSize = 512
)

// The default origin check applies: only same-origin pages may listen.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Events godoc
// @ID          events
// @Summary     Logout notifications
// @Description Upgrades to a websocket and sends one JSON events.LogoutEvent per ended session, including sessions the portal ended because the backend refused the credential.
// @Tags        Session
// @Success     101  {object}  events.LogoutEvent
// @Router      /events [get]
func (h *Handlers) Events(c *gin.Context) {
	if eventsUnavailable(c) {
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		middleware.LoggerFrom(c).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	lg := middleware.LoggerFrom(c)
	sub := h.events.Subscribe(4)
	defer sub.Close()
	defer middleware.TrackListener()()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					lg.Debug().Err(err).Msg("event listener gone")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, open := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

// eventsUnavailable answers plain HTTP requests to the events route.
func eventsUnavailable(c *gin.Context) bool {
	if websocket.IsWebSocketUpgrade(c.Request) {
		return false
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, "websocket upgrade required")
	return true
}
