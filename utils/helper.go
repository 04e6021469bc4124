package util

import (
	"regexp"
	"strings"
	"sync/atomic"

	"ytdownloader/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const DefaultExtension = "mp4"

// GenerateRequestID creates a random id for request correlation.
func GenerateRequestID() string {
	return uuid.NewString()
}

var (
	nonAlnum    = regexp.MustCompile(`[^a-zA-Z0-9]`)
	nonAlnumExt = regexp.MustCompile(`[^a-z0-9]`)
)

// AttachmentFileName builds "<title>.<ext>" where every non-alphanumeric
// character of the title becomes an underscore.
func AttachmentFileName(title, ext string) string {
	name := nonAlnum.ReplaceAllString(title, "_")
	if name == "" {
		name = "video"
	}
	return name + "." + SanitizeExtension(ext)
}

// SanitizeExtension lowercases ext, drops a leading dot and anything that is
// not [a-z0-9]. Empty results become the default container.
func SanitizeExtension(ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	ext = nonAlnumExt.ReplaceAllString(ext, "")
	if ext == "" {
		return DefaultExtension
	}
	return ext
}

// SanitizeURL rewrites YouTube links to the canonical watch URL and leaves
// everything else untouched.
func SanitizeURL(rawURL string) string {
	videoID, err := YouTubeVideoID(rawURL)
	if err != nil {
		logger.Component("URL").Debug().Str("url", rawURL).Err(err).Msg("not rewriting URL")
		return strings.TrimSpace(rawURL)
	}
	return "https://www.youtube.com/watch?v=" + videoID
}

// Gate bounds the number of concurrent downloads without queueing.
type Gate struct {
	sem    *semaphore.Weighted
	active atomic.Int64
}

func NewGate(max int) *Gate {
	if max <= 0 {
		max = 1
	}
	return &Gate{sem: semaphore.NewWeighted(int64(max))}
}

// TryAcquire takes a slot if one is free.
func (g *Gate) TryAcquire() bool {
	if !g.sem.TryAcquire(1) {
		return false
	}
	g.active.Add(1)
	return true
}

func (g *Gate) Release() {
	g.active.Add(-1)
	g.sem.Release(1)
}

// Active is the number of slots currently held.
func (g *Gate) Active() int {
	return int(g.active.Load())
}
