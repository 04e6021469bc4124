package router

import (
	"fmt"
	"net/http"

	controllers "ytdownloader/controller"
	"ytdownloader/logger"
	"ytdownloader/models"
	"ytdownloader/ratelimit"
	util "ytdownloader/utils"

	"github.com/gin-gonic/gin"
)

// SetupRouter builds the engine. Client addresses come from X-Forwarded-For
// only when the direct peer is one of trustedProxies; with none, the socket
// address is used so a forged header cannot buy a fresh rate limit quota.
func SetupRouter(ctl *controllers.Controller, limiter ratelimit.Limiter, trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	if len(trustedProxies) == 0 {
		trustedProxies = nil
	}
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(
		requestID(),
		logger.GinMiddleware(),
		gin.CustomRecovery(recoverJSON),
		securityHeaders(),
	)

	r.GET("/", ctl.RootHandler)

	api := r.Group("/api")
	api.Use(ratelimit.Middleware(limiter, ratelimit.DefaultMessage))
	{
		api.GET("/health", ctl.HealthHandler)
		api.POST("/info", ctl.InfoHandler)
		api.POST("/download", ctl.DownloadHandler)
		api.GET("/progress/:request_id", ctl.SSEHandler)
		api.GET("/ws/:request_id", ctl.WebSocketHandler)
	}

	return r, nil
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = util.GenerateRequestID()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func recoverJSON(c *gin.Context, recovered any) {
	// net/http drops the connection on this sentinel; answering would hide
	// a cut-off body behind a clean end of response.
	if recovered == http.ErrAbortHandler {
		panic(http.ErrAbortHandler)
	}
	logger.Component("http").Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
	if c.Writer.Written() {
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error:   "Something went wrong!",
	})
}

// securityHeaders sets the baseline headers of an API that never serves HTML.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Download-Options", "noopen")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		h.Set("Content-Security-Policy", "default-src 'self';base-uri 'self';frame-ancestors 'self';object-src 'none'")
		c.Next()
	}
}
