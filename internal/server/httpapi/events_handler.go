package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleEvents upgrades the connection and joins it to the user's broadcast
// group. Messages received from one tab are relayed to the user's other tabs;
// the server itself also publishes LOGIN/LOGOUT on auth changes.
func (rt *Router) handleEvents(c *gin.Context) {
	user, _ := rt.currentIdentity(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		rt.logger.Warn(c.Request.Context(), "websocket upgrade failed", "err", err)
		return
	}

	rt.hub.Register(user.ID, conn)
	defer func() {
		rt.hub.Unregister(user.ID, conn)
		_ = conn.Close()
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}
		if ev.Type != EventLogin && ev.Type != EventLogout {
			continue
		}
		rt.hub.Broadcast(c.Request.Context(), user.ID, ev, conn)
	}
}
