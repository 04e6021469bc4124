// Package youtube is the Provider backed by github.com/kkdai/youtube/v2.
package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"ytdownloader/models"
	util "ytdownloader/utils"

	yt "github.com/kkdai/youtube/v2"
)

type Client struct {
	client *yt.Client
}

// New returns a provider using httpClient for every upstream call; nil means
// http.DefaultClient.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{client: &yt.Client{HTTPClient: httpClient}}
}

func (c *Client) Name() string { return "youtube" }

func (c *Client) ValidateURL(rawURL string) bool {
	return util.IsYouTubeURL(rawURL)
}

func (c *Client) FetchMetadata(ctx context.Context, rawURL string) (*models.RawVideo, error) {
	video, err := c.video(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return ToRawVideo(video), nil
}

// OpenStream resolves the video again; stream URLs are only valid for the
// client session that deciphered them.
func (c *Client) OpenStream(ctx context.Context, rawURL string, format models.FormatDescriptor) (io.ReadCloser, error) {
	video, err := c.video(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	matches := video.Formats.Itag(format.Itag)
	if len(matches) == 0 {
		return nil, fmt.Errorf("itag %d no longer offered for %s", format.Itag, video.ID)
	}

	stream, _, err := c.client.GetStreamContext(ctx, video, &matches[0])
	if err != nil {
		return nil, fmt.Errorf("get stream itag %d: %w", format.Itag, err)
	}
	return stream, nil
}

func (c *Client) video(ctx context.Context, rawURL string) (*yt.Video, error) {
	id, err := util.YouTubeVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	video, err := c.client.GetVideoContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	return video, nil
}

// ToRawVideo converts library metadata, ranking formats best first.
func ToRawVideo(v *yt.Video) *models.RawVideo {
	formats := make(yt.FormatList, len(v.Formats))
	copy(formats, v.Formats)
	formats.Sort()

	raw := &models.RawVideo{
		ID:            v.ID,
		Title:         v.Title,
		LengthSeconds: int(v.Duration.Seconds()),
		Author:        v.Author,
		ViewCount:     int64(v.Views),
		Description:   v.Description,
		Thumbnails:    make([]models.Thumbnail, 0, len(v.Thumbnails)),
		Formats:       make([]models.RawFormat, 0, len(formats)),
	}
	if !v.PublishDate.IsZero() {
		raw.UploadDate = v.PublishDate.Format("2006-01-02")
	}
	for _, t := range v.Thumbnails {
		raw.Thumbnails = append(raw.Thumbnails, models.Thumbnail{URL: t.URL, Width: t.Width, Height: t.Height})
	}
	for _, f := range formats {
		raw.Formats = append(raw.Formats, models.RawFormat{
			Itag:          f.ItagNo,
			QualityLabel:  f.QualityLabel,
			AudioQuality:  f.AudioQuality,
			MimeType:      f.MimeType,
			HasVideo:      f.QualityLabel != "" || f.Width > 0,
			HasAudio:      f.AudioChannels > 0,
			Bitrate:       f.Bitrate,
			ContentLength: f.ContentLength,
			ExactSize:     f.ContentLength > 0,
		})
	}
	return raw
}
