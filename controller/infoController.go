package controllers

import (
	"errors"
	"io"
	"net/http"

	"ytdownloader/models"

	"github.com/gin-gonic/gin"
)

// InfoHandler answers POST /api/info with the normalized video metadata.
func (ctl *Controller) InfoHandler(c *gin.Context) {
	var req models.InfoRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "Invalid JSON payload", "")
		return
	}

	info, err := ctl.Info.GetVideoInfo(c.Request.Context(), req.URL)
	if err != nil {
		writeError(c, err, infoFailureMessage)
		return
	}

	c.JSON(http.StatusOK, info)
}
