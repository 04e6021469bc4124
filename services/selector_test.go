package services

import (
	"testing"

	"ytdownloader/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectFormat(t *testing.T) {
	t.Parallel()

	formats := NormalizeFormats(sampleVideo().Formats)

	tests := []struct {
		name     string
		quality  string
		wantItag int
	}{
		{name: "highest by default", quality: "", wantItag: 22},
		{name: "explicit highest", quality: "highest", wantItag: 22},
		{name: "exact label", quality: "360p", wantItag: 18},
		{name: "audio only", quality: "audio", wantItag: 251},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectFormat(formats, tt.quality)
			require.NoError(t, err)
			assert.Equal(t, tt.wantItag, got.Itag)
		})
	}
}

func TestSelectFormatAudioNeverHasVideo(t *testing.T) {
	t.Parallel()

	formats := []models.FormatDescriptor{
		{Itag: 1, Quality: "720p", HasVideo: true, HasAudio: true},
		{Itag: 2, Quality: "1080p", HasVideo: true},
		{Itag: 3, Quality: "AUDIO_QUALITY_LOW", HasAudio: true},
	}
	got, err := SelectFormat(formats, "audio")
	require.NoError(t, err)
	assert.False(t, got.HasVideo)
	assert.Equal(t, 3, got.Itag)
}

func TestSelectFormatLabelRequiresAudioAndVideo(t *testing.T) {
	t.Parallel()

	formats := NormalizeFormats(sampleVideo().Formats)

	// 1080p exists only as a video-only encoding.
	_, err := SelectFormat(formats, "1080p")
	assert.ErrorIs(t, err, ErrNoMatchingFormat)

	_, err = SelectFormat(formats, "4320p")
	assert.ErrorIs(t, err, ErrNoMatchingFormat)
}

func TestSelectFormatLabelIsExact(t *testing.T) {
	t.Parallel()

	formats := []models.FormatDescriptor{
		{Itag: 1, Quality: "720p60", HasVideo: true, HasAudio: true},
		{Itag: 2, Quality: "720p", HasVideo: true, HasAudio: true},
	}
	got, err := SelectFormat(formats, "720p")
	require.NoError(t, err)
	assert.Equal(t, "720p", got.Quality)
	assert.Equal(t, 2, got.Itag)
}

func TestSelectFormatNoCandidates(t *testing.T) {
	t.Parallel()

	videoOnly := []models.FormatDescriptor{{Itag: 1, Quality: "720p", HasVideo: true}}

	_, err := SelectFormat(videoOnly, "audio")
	assert.ErrorIs(t, err, ErrNoMatchingFormat)

	_, err = SelectFormat(videoOnly, "")
	assert.ErrorIs(t, err, ErrNoMatchingFormat)

	_, err = SelectFormat(nil, "")
	assert.ErrorIs(t, err, ErrNoMatchingFormat)
}
