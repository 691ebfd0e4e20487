package events

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Identify resolves the user behind an upgrade request.
type Identify func(c *gin.Context) (userID string, ok bool)

// NewUpgrader accepts requests from the given origins; an empty list
// accepts any origin.
func NewUpgrader(origins []string) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowed) == 0 {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

func WSHandler(hub *Hub, upgrader websocket.Upgrader, identify Identify) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := identify(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Debug("websocket upgrade failed", "error", err)
			return
		}

		// written before registering so it never races a Publish on the same conn
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"welcome","transport":"websocket"}`))

		hub.Add(userID, ws)
		hub.log.Debug("websocket client connected", "user_id", userID)

		// incoming messages are ignored; the read loop only detects disconnects
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Remove(userID, ws)
		hub.log.Debug("websocket client disconnected", "user_id", userID)
	}
}
