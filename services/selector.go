package services

import (
	"fmt"

	"ytdownloader/logger"
	"ytdownloader/models"
)

const (
	QualityAudio   = "audio"
	QualityHighest = "highest"
)

// SelectFormat picks one encoding for the requested quality. The catalog is
// expected in provider rank order, best first, so the first candidate wins.
//
//	"audio"            -> best audio-only encoding
//	"" or "highest"    -> best encoding with audio and video
//	anything else      -> first audio+video encoding with exactly that label
func SelectFormat(formats []models.FormatDescriptor, quality string) (models.FormatDescriptor, error) {
	log := logger.Component("QualityAnalyzer")

	var match func(models.FormatDescriptor) bool
	switch quality {
	case QualityAudio:
		match = func(f models.FormatDescriptor) bool { return f.HasAudio && !f.HasVideo }
	case "", QualityHighest:
		match = func(f models.FormatDescriptor) bool { return f.HasAudio && f.HasVideo }
	default:
		match = func(f models.FormatDescriptor) bool {
			return f.HasAudio && f.HasVideo && f.Quality == quality
		}
	}

	for _, f := range formats {
		if match(f) {
			log.Debug().Str("quality", quality).Int("itag", f.Itag).Str("label", f.Quality).Msg("format selected")
			return f, nil
		}
	}

	log.Warn().Str("quality", quality).Int("candidates", len(formats)).Msg("no format matches requested quality")
	return models.FormatDescriptor{}, fmt.Errorf("%w: %q", ErrNoMatchingFormat, displayQuality(quality))
}

func displayQuality(q string) string {
	if q == "" {
		return QualityHighest
	}
	return q
}
