package services

import (
	"context"
	"io"
	"strings"
	"sync"

	"ytdownloader/models"
)

type fakeProvider struct {
	mu         sync.Mutex
	video      *models.RawVideo
	fetchErr   error
	openErr    error
	body       string
	openHook   func(ctx context.Context)
	fetchCalls int
	openCalls  int
	opened     []models.FormatDescriptor
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) ValidateURL(rawURL string) bool {
	return strings.HasPrefix(rawURL, "https://www.youtube.com/watch?v=")
}

func (f *fakeProvider) FetchMetadata(ctx context.Context, rawURL string) (*models.RawVideo, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.video, nil
}

func (f *fakeProvider) OpenStream(ctx context.Context, rawURL string, format models.FormatDescriptor) (io.ReadCloser, error) {
	f.mu.Lock()
	f.openCalls++
	f.opened = append(f.opened, format)
	f.mu.Unlock()
	if f.openHook != nil {
		f.openHook(ctx)
	}
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func sampleVideo() *models.RawVideo {
	return &models.RawVideo{
		ID:            "dQw4w9WgXcQ",
		Title:         "Never Gonna Give You Up (Official Video)",
		LengthSeconds: 213,
		Thumbnails: []models.Thumbnail{
			{URL: "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg", Width: 120, Height: 90},
			{URL: "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", Width: 1280, Height: 720},
		},
		Author:      "Rick Astley",
		ViewCount:   1234567,
		UploadDate:  "2009-10-25",
		Description: "The official video",
		Formats: []models.RawFormat{
			{Itag: 137, QualityLabel: "1080p", MimeType: `video/mp4; codecs="avc1.640028"`, HasVideo: true, Bitrate: 4000000, ContentLength: 50000000},
			{Itag: 22, QualityLabel: "720p", MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`, HasVideo: true, HasAudio: true, Bitrate: 1500000},
			{Itag: 18, QualityLabel: "360p", MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, HasVideo: true, HasAudio: true, Bitrate: 500000, ContentLength: 1048576, ExactSize: true},
			{Itag: 251, AudioQuality: "AUDIO_QUALITY_MEDIUM", MimeType: `audio/webm; codecs="opus"`, HasAudio: true, Bitrate: 160000, ContentLength: 3500000},
			{Itag: 140, AudioQuality: "AUDIO_QUALITY_MEDIUM", MimeType: `audio/mp4; codecs="mp4a.40.2"`, HasAudio: true, Bitrate: 130000, ContentLength: 3400000},
			{Itag: 999, MimeType: "image/jpeg"},
		},
	}
}
