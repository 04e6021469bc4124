package services

import (
	"fmt"
	"math"
	"mime"
	"sort"
	"strconv"
	"strings"

	"ytdownloader/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const unknownQuality = "unknown"

var byteUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes renders a byte count with 1024-based units and at most two decimals.
func FormatBytes(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	i := 0
	div := int64(1)
	for i < len(byteUnits)-1 && bytes >= div*1024 {
		div *= 1024
		i++
	}

	v := math.Round(float64(bytes)/float64(div)*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// FormatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hrs := seconds / 3600
	mins := (seconds % 3600) / 60
	secs := seconds % 60

	if hrs > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hrs, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

var viewPrinter = message.NewPrinter(language.English)

// FormatViews groups thousands, e.g. 1234567 -> "1,234,567".
func FormatViews(views int64) string {
	return viewPrinter.Sprintf("%d", views)
}

// NormalizeFormats keeps every encoding carrying video or audio, in provider order.
func NormalizeFormats(raw []models.RawFormat) []models.FormatDescriptor {
	out := make([]models.FormatDescriptor, 0, len(raw))
	for _, f := range raw {
		if !f.HasVideo && !f.HasAudio {
			continue
		}

		quality := f.QualityLabel
		if quality == "" {
			quality = f.AudioQuality
		}
		if quality == "" {
			quality = unknownQuality
		}

		container, codecs := parseMimeType(f.MimeType)

		out = append(out, models.FormatDescriptor{
			Itag:          f.Itag,
			Quality:       quality,
			Container:     container,
			HasVideo:      f.HasVideo,
			HasAudio:      f.HasAudio,
			Codec:         codecs,
			Bitrate:       f.Bitrate,
			Size:          FormatBytes(f.ContentLength),
			MimeType:      f.MimeType,
			ContentLength: f.ContentLength,
			ExactSize:     f.ExactSize,
			SourceID:      f.SourceID,
		})
	}
	return out
}

// AvailableQualities returns the distinct video quality labels. Labels with a
// leading integer come first, highest first; the rest follow in encounter order.
func AvailableQualities(formats []models.FormatDescriptor) []string {
	seen := make(map[string]struct{})
	labels := make([]string, 0)
	for _, f := range formats {
		if !f.HasVideo || f.Quality == unknownQuality || f.Quality == "" {
			continue
		}
		if _, ok := seen[f.Quality]; ok {
			continue
		}
		seen[f.Quality] = struct{}{}
		labels = append(labels, f.Quality)
	}

	sort.SliceStable(labels, func(i, j int) bool {
		a, aok := leadingInt(labels[i])
		b, bok := leadingInt(labels[j])
		switch {
		case aok && bok:
			return a > b
		case aok:
			return true
		default:
			return false
		}
	})
	return labels
}

// Normalize builds the info payload from the provider's metadata.
func Normalize(raw models.RawVideo) models.VideoMetadata {
	formats := NormalizeFormats(raw.Formats)

	var thumb string
	if n := len(raw.Thumbnails); n > 0 {
		thumb = raw.Thumbnails[n-1].URL
	}

	seconds := raw.LengthSeconds
	if seconds < 0 {
		seconds = 0
	}

	return models.VideoMetadata{
		Success:            true,
		ID:                 raw.ID,
		Title:              raw.Title,
		DurationSeconds:    seconds,
		Duration:           FormatDuration(seconds),
		Thumbnail:          thumb,
		Author:             raw.Author,
		Views:              FormatViews(raw.ViewCount),
		UploadDate:         raw.UploadDate,
		Description:        raw.Description,
		AvailableQualities: AvailableQualities(formats),
		AvailableLanguages: []string{"auto", "en"},
		IsPlaylist:         false,
		Formats:            formats,
	}
}

// parseMimeType splits `video/mp4; codecs="avc1.4d401f, mp4a.40.2"` into
// ("mp4", "avc1.4d401f, mp4a.40.2").
func parseMimeType(mimeType string) (string, string) {
	if mimeType == "" {
		return "", ""
	}
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	_, sub, _ := strings.Cut(mediaType, "/")
	return sub, params["codecs"]
}

// leadingInt parses the integer prefix of s ("1080p60" -> 1080).
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
