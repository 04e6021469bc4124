package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"ytdownloader/logger"
	"ytdownloader/models"
	"ytdownloader/services"

	"github.com/gin-gonic/gin"
)

var downloadHeaders = []string{"Content-Disposition", "Content-Type", "Content-Length"}

// DownloadHandler answers POST /api/download by relaying the selected
// encoding as an attachment.
func (ctl *Controller) DownloadHandler(c *gin.Context) {
	log := logger.Component("DL")

	var req models.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, "Invalid JSON payload", "")
		return
	}

	if !ctl.Gate.TryAcquire() {
		log.Warn().Int("active", ctl.Gate.Active()).Msg("download slots full")
		fail(c, http.StatusServiceUnavailable, "Too many downloads right now, please try again shortly", "")
		return
	}
	defer ctl.Gate.Release()

	ctx := c.Request.Context()
	dl, err := ctl.Download.Prepare(ctx, req)
	if err != nil {
		log.Warn().Str("request_id", req.RequestID).Str("url", req.URL).Str("quality", req.Quality).Err(err).Msg("download rejected")
		ctl.Hub.Publish(models.Progress{RequestID: req.RequestID, Status: "error", Message: err.Error()})
		writeError(c, err, downloadFailureMessage)
		return
	}
	defer dl.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, dl.FileName))
	c.Header("Content-Type", dl.ContentType)
	if dl.ContentLength > 0 {
		c.Header("Content-Length", strconv.FormatInt(dl.ContentLength, 10))
	}
	c.Status(http.StatusOK)

	milestones := newProgressMilestones()
	report := func(p models.Progress) {
		if milestones.reached(p) {
			log.Info().Str("request_id", p.RequestID).Int("percent", p.Percent).
				Int64("downloaded", p.DownloadedBytes).Msgf("Download progress: %d%%", p.Percent)
		}
		ctl.Hub.Publish(p)
	}

	err = services.Relay(ctx, services.Chunks(dl.Stream, ctl.ChunkSize), c.Writer, dl.Session, report)
	if err != nil {
		ctl.Hub.Publish(models.Progress{
			RequestID:       req.RequestID,
			Status:          "error",
			DownloadedBytes: dl.Session.Downloaded,
			TotalBytes:      dl.Session.Total,
			Percent:         dl.Session.Percent(),
			Message:         streamFailureMessage,
		})

		switch {
		case errors.Is(err, services.ErrClientGone):
			log.Info().Str("request_id", req.RequestID).Int64("sent", dl.Session.Downloaded).Err(err).Msg("client went away")
			c.Abort()
		case c.Writer.Written():
			// Status and part of the body are out. Dropping the connection keeps
			// net/http from finishing the response, so the client sees a broken
			// transfer instead of a short but well-formed file.
			log.Error().Str("request_id", req.RequestID).Int64("sent", dl.Session.Downloaded).Err(err).Msg("stream failed mid-transfer")
			panic(http.ErrAbortHandler)
		default:
			log.Error().Str("request_id", req.RequestID).Err(err).Msg("stream failed before first byte")
			for _, h := range downloadHeaders {
				c.Writer.Header().Del(h)
			}
			writeError(c, err, downloadFailureMessage)
		}
		return
	}

	ctl.Hub.Publish(models.Progress{
		RequestID:       req.RequestID,
		Status:          "completed",
		DownloadedBytes: dl.Session.Downloaded,
		TotalBytes:      dl.Session.Total,
		Percent:         100,
	})
	log.Info().Str("request_id", req.RequestID).Str("file", dl.FileName).Int64("bytes", dl.Session.Downloaded).Msg("download complete")
}

// progressMilestones picks which progress updates are worth an info line:
// every 10 percent when the size is known, every 10 MiB otherwise.
type progressMilestones struct {
	last int64
}

const unsizedLogStep = 10 << 20

func newProgressMilestones() *progressMilestones {
	return &progressMilestones{last: -1}
}

func (m *progressMilestones) reached(p models.Progress) bool {
	step := p.DownloadedBytes / unsizedLogStep
	if p.TotalBytes > 0 {
		step = int64(p.Percent / 10)
	}
	if step == m.last {
		return false
	}
	m.last = step
	return true
}
