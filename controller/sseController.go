package controllers

import (
	"io"

	"github.com/gin-gonic/gin"
)

// SSEHandler streams progress events of one download as server-sent events.
func (ctl *Controller) SSEHandler(c *gin.Context) {
	requestID := c.Param("request_id")

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	client := ctl.Hub.Subscribe(requestID)
	defer ctl.Hub.Unsubscribe(requestID, client)

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-client.Channel:
			if !ok {
				return false
			}
			c.SSEvent("progress", msg)
			return msg.Status != "completed" && msg.Status != "error"
		}
	})
}
