package progress

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the feed is public read-only data; no origin-scoped state to protect
	CheckOrigin: func(*http.Request) bool { return true },
}

// WSHandler upgrades the request and subscribes it to the hub for the
// lifetime of the connection. Incoming messages are drained and ignored.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer hub.RemoveWS(conn)

		hub.AddWS(conn)
		log.Printf("[progress] ws subscriber connected: %s", conn.RemoteAddr())

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				log.Printf("[progress] ws subscriber disconnected: %s", conn.RemoteAddr())
				return
			}
		}
	}
}
