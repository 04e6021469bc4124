package controllers

import (
	"errors"
	"net/http"

	"ytdownloader/models"
	"ytdownloader/progress"
	"ytdownloader/services"
	util "ytdownloader/utils"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
)

const (
	infoFailureMessage     = "Failed to fetch video information. Please check the URL and try again."
	downloadFailureMessage = "Failed to download video. Please try again."
	streamFailureMessage   = "Download failed"
	internalErrorMessage   = "Something went wrong!"
)

// Controller carries the dependencies of every HTTP handler.
type Controller struct {
	Info      *services.InfoService
	Download  *services.DownloadService
	Hub       *progress.Hub
	Gate      *util.Gate
	Upgrader  *gws.Upgrader
	ChunkSize int
	Version   string
}

func fail(c *gin.Context, status int, message, details string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Success: false,
		Error:   message,
		Details: details,
	})
}

// writeError maps a service error onto the JSON error contract.
// providerMessage is the caller facing text for provider failures.
func writeError(c *gin.Context, err error, providerMessage string) {
	var perr *services.ProviderError
	switch {
	case errors.Is(err, services.ErrMissingInput):
		fail(c, http.StatusBadRequest, services.ErrMissingInput.Error(), "")
	case errors.Is(err, services.ErrInvalidURL):
		fail(c, http.StatusBadRequest, services.ErrInvalidURL.Error(), "")
	case errors.Is(err, services.ErrNoMatchingFormat):
		fail(c, http.StatusBadRequest, "No format matches the requested quality", err.Error())
	case errors.As(err, &perr):
		fail(c, http.StatusInternalServerError, providerMessage, perr.Err.Error())
	case errors.Is(err, services.ErrStreamFailure):
		fail(c, http.StatusInternalServerError, streamFailureMessage, "")
	default:
		fail(c, http.StatusInternalServerError, internalErrorMessage, "")
	}
}
