package controllers

import (
	"ytdownloader/logger"
	"ytdownloader/websocket"

	"github.com/gin-gonic/gin"
)

// WebSocketHandler streams progress events of one download over a WebSocket.
func (ctl *Controller) WebSocketHandler(c *gin.Context) {
	requestID := c.Param("request_id")

	conn, err := ctl.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Component("WsController").Warn().Str("request_id", requestID).Err(err).Msg("upgrade failed")
		return
	}

	websocket.Stream(ctl.Hub, websocket.NewWSConnection(conn), requestID)
}
