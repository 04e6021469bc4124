package youtube

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"ytdownloader/models"

	yt "github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRawVideo(t *testing.T) {
	t.Parallel()

	v := &yt.Video{
		ID:          "dQw4w9WgXcQ",
		Title:       "Never Gonna Give You Up",
		Description: "The official video",
		Author:      "Rick Astley",
		Views:       1234,
		Duration:    213*time.Second + 400*time.Millisecond,
		PublishDate: time.Date(2009, 10, 25, 0, 0, 0, 0, time.UTC),
		Thumbnails: yt.Thumbnails{
			{URL: "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg", Width: 120, Height: 90},
			{URL: "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", Width: 1280, Height: 720},
		},
		Formats: yt.FormatList{
			{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, AudioQuality: "AUDIO_QUALITY_MEDIUM", AudioChannels: 2, Bitrate: 130000, ContentLength: 3400000},
			{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, QualityLabel: "360p", Width: 640, Height: 360, AudioChannels: 2, FPS: 30},
			{ItagNo: 248, MimeType: `video/webm; codecs="vp9"`, QualityLabel: "1080p", Width: 1920, Height: 1080, FPS: 30},
			{ItagNo: 22, MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`, QualityLabel: "720p", Width: 1280, Height: 720, AudioChannels: 2, FPS: 30},
		},
	}

	raw := ToRawVideo(v)

	assert.Equal(t, "dQw4w9WgXcQ", raw.ID)
	assert.Equal(t, 213, raw.LengthSeconds)
	assert.Equal(t, int64(1234), raw.ViewCount)
	assert.Equal(t, "2009-10-25", raw.UploadDate)
	assert.Equal(t, "Rick Astley", raw.Author)
	require.Len(t, raw.Thumbnails, 2)
	assert.Equal(t, uint(1280), raw.Thumbnails[1].Width)

	itags := make([]int, 0, len(raw.Formats))
	for _, f := range raw.Formats {
		itags = append(itags, f.Itag)
	}
	assert.Equal(t, []int{248, 22, 18, 140}, itags, "widest first")
	assert.Equal(t, 140, v.Formats[0].ItagNo, "input order untouched")

	assert.True(t, raw.Formats[0].HasVideo)
	assert.False(t, raw.Formats[0].HasAudio)
	assert.True(t, raw.Formats[1].HasVideo && raw.Formats[1].HasAudio)

	audio := raw.Formats[3]
	assert.Equal(t, models.RawFormat{
		Itag:          140,
		AudioQuality:  "AUDIO_QUALITY_MEDIUM",
		MimeType:      `audio/mp4; codecs="mp4a.40.2"`,
		HasAudio:      true,
		Bitrate:       130000,
		ContentLength: 3400000,
		ExactSize:     true,
	}, audio)
	assert.False(t, raw.Formats[1].ExactSize, "no contentLength means no exact size")
}

func TestToRawVideoWithoutPublishDate(t *testing.T) {
	t.Parallel()

	raw := ToRawVideo(&yt.Video{ID: "x"})
	assert.Empty(t, raw.UploadDate)
	assert.Empty(t, raw.Formats)
	assert.Empty(t, raw.Thumbnails)
}

func TestClientRejectsNonYouTubeURL(t *testing.T) {
	t.Parallel()

	c := New(nil)
	assert.Equal(t, "youtube", c.Name())
	assert.True(t, c.ValidateURL("https://youtu.be/dQw4w9WgXcQ"))
	assert.False(t, c.ValidateURL("https://vimeo.com/1"))

	_, err := c.FetchMetadata(context.Background(), "https://vimeo.com/1")
	assert.Error(t, err)

	_, err = c.OpenStream(context.Background(), "https://vimeo.com/1", models.FormatDescriptor{Itag: 18})
	assert.Error(t, err)
}

// redirectTransport sends every request to target, keeping path and query.
type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	req.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

const playerResponse = `{
	"playabilityStatus": {"status": "OK"},
	"videoDetails": {"videoId": "dQw4w9WgXcQ", "title": "Never Gonna Give You Up", "lengthSeconds": "10", "author": "Rick Astley", "viewCount": "7"},
	"streamingData": {"formats": [{
		"itag": 18,
		"url": "https://rr1.googlevideo.com/stream/18",
		"mimeType": "video/mp4; codecs=\"avc1.42001E, mp4a.40.2\"",
		"qualityLabel": "360p",
		"width": 640,
		"height": 360,
		"audioChannels": 2
	}]}
}`

func newUpstream(t *testing.T) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, playerResponse)
	})
	mux.HandleFunc("GET /stream/18", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "video-bytes")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return New(&http.Client{Transport: redirectTransport{target: target}})
}

func TestClientAgainstUpstream(t *testing.T) {
	t.Parallel()

	c := newUpstream(t)
	ctx := context.Background()

	raw, err := c.FetchMetadata(ctx, "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Never Gonna Give You Up", raw.Title)
	assert.Equal(t, 10, raw.LengthSeconds)
	require.Len(t, raw.Formats, 1)
	assert.Equal(t, 18, raw.Formats[0].Itag)
	assert.True(t, raw.Formats[0].HasVideo && raw.Formats[0].HasAudio)

	stream, err := c.OpenStream(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", models.FormatDescriptor{Itag: 18})
	require.NoError(t, err)
	defer stream.Close()

	body, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(body))
}

func TestOpenStreamUnknownItag(t *testing.T) {
	t.Parallel()

	c := newUpstream(t)
	_, err := c.OpenStream(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", models.FormatDescriptor{Itag: 22})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "itag 22")
}
