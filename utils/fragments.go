package util

import (
	"fmt"
	"strconv"
	"strings"
)

// FragmentsFlag returns the yt-dlp --concurrent-fragments flag for a download.
// Fewer fragments are fetched per download when many downloads are active,
// and low resolutions never use more than three.
func FragmentsFlag(activeDownloads int, quality string) string {
	fragments := 2
	switch {
	case activeDownloads <= 1:
		fragments = 4
	case activeDownloads <= 3:
		fragments = 3
	}

	if height, err := strconv.Atoi(strings.SplitN(quality, "p", 2)[0]); err == nil && height < 720 {
		fragments = min(fragments, 3)
	}

	return fmt.Sprintf("--concurrent-fragments=%d", fragments)
}
