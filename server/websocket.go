package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"verbum-lector/internal/config"
	"verbum-lector/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// CORS is open for the REST routes, so it is for the stream too.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamEvents upgrades to a WebSocket and forwards session events as JSON
// until the client disconnects or the session is closed. The first message
// is the current status.
func (s *Server) streamEvents(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	// The client never sends anything we act on; reading detects the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	status := sess.Status()
	if err := writeJSON(conn, services.Event{Type: services.EventStage, SessionID: sess.ID(), Status: &status}); err != nil {
		return
	}

	ping := time.NewTicker(config.WebSocketPingPeriod)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(config.WebSocketWriteWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := writeJSON(conn, ev); err != nil {
				s.log.Debug("websocket write failed: %v", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(config.WebSocketWriteWait)); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(config.WebSocketWriteWait))
	return conn.WriteJSON(v)
}
