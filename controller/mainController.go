package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RootHandler describes the service for deployment platforms probing "/".
func (ctl *Controller) RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "YouTube Downloader API is running",
		"version": ctl.Version,
		"endpoints": gin.H{
			"health":   "/api/health",
			"info":     "/api/info",
			"download": "/api/download",
		},
	})
}

func (ctl *Controller) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}
