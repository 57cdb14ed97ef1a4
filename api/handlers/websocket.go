package handlers

import (
	"net/http"

	"github.com/NethermindEth/aigent-launchpad/communication"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket streams agent events to the client until it disconnects
func HandleWebSocket(hub *communication.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.L().Warn("failed to upgrade connection", zap.Error(err))
			return
		}
		hub.Serve(c.Request.Context(), conn)
	}
}
