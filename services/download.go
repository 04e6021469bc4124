package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"ytdownloader/logger"
	"ytdownloader/models"
	util "ytdownloader/utils"
)

const (
	ContentTypeLegacy    = "legacy"
	ContentTypeContainer = "container"

	legacyContentType = "video/mp4"
)

type DownloadOptions struct {
	OpenTimeout       time.Duration
	ContentTypePolicy string
}

type DownloadService struct {
	info     *InfoService
	provider Provider
	opts     DownloadOptions
}

func NewDownloadService(info *InfoService, provider Provider, opts DownloadOptions) *DownloadService {
	return &DownloadService{info: info, provider: provider, opts: opts}
}

// PreparedDownload is everything needed to answer one download request. The
// caller owns Stream and must call Close.
type PreparedDownload struct {
	Title       string
	FileName    string
	ContentType string
	// ContentLength is the size to declare to the client, 0 unless the
	// provider reported an exact size. Session.Total may hold an estimate.
	ContentLength int64
	Format        models.FormatDescriptor
	Stream        io.ReadCloser
	Session       *Session

	cancel context.CancelFunc
}

func (p *PreparedDownload) Close() error {
	defer p.cancel()
	return p.Stream.Close()
}

// Prepare validates the request, fetches metadata, selects an encoding and
// opens its stream. Nothing has been written to the client when it returns.
func (s *DownloadService) Prepare(ctx context.Context, req models.DownloadRequest) (*PreparedDownload, error) {
	log := logger.Component("DL")

	if err := s.info.Validate(req.URL); err != nil {
		return nil, err
	}

	raw, err := s.info.Fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	format, err := SelectFormat(NormalizeFormats(raw.Formats), req.Quality)
	if err != nil {
		return nil, err
	}

	stream, cancel, err := s.open(ctx, req.URL, format)
	if err != nil {
		return nil, err
	}

	log.Info().Str("request_id", req.RequestID).Str("id", raw.ID).Int("itag", format.Itag).
		Str("quality", format.Quality).Int64("size", format.ContentLength).Bool("exact_size", format.ExactSize).Msg("stream opened")

	var declared int64
	if format.ExactSize {
		declared = format.ContentLength
	}

	return &PreparedDownload{
		Title:         raw.Title,
		FileName:      util.AttachmentFileName(raw.Title, req.Format),
		ContentType:   ContentTypeFor(s.opts.ContentTypePolicy, format),
		ContentLength: declared,
		Format:        format,
		Stream:        stream,
		Session:       &Session{RequestID: req.RequestID, Total: format.ContentLength},
		cancel:        cancel,
	}, nil
}

// open bounds only the opening of the stream by OpenTimeout; once open, the
// stream lives as long as ctx.
func (s *DownloadService) open(ctx context.Context, videoURL string, format models.FormatDescriptor) (io.ReadCloser, context.CancelFunc, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	var timer *time.Timer
	if s.opts.OpenTimeout > 0 {
		timer = time.AfterFunc(s.opts.OpenTimeout, cancel)
	}

	stream, err := s.provider.OpenStream(streamCtx, videoURL, format)
	if timer != nil && !timer.Stop() {
		if stream != nil {
			stream.Close()
		}
		cancel()
		return nil, nil, &ProviderError{
			Op:  s.provider.Name() + " open stream",
			Err: fmt.Errorf("timed out after %s", s.opts.OpenTimeout),
		}
	}
	if err != nil {
		cancel()
		return nil, nil, &ProviderError{Op: s.provider.Name() + " open stream", Err: err}
	}
	return stream, cancel, nil
}

// ContentTypeFor returns the Content-Type header for a download. The legacy
// policy always answers video/mp4, which existing clients rely on.
func ContentTypeFor(policy string, format models.FormatDescriptor) string {
	if policy != ContentTypeContainer {
		return legacyContentType
	}
	if format.MimeType != "" {
		if mediaType, _, err := mime.ParseMediaType(format.MimeType); err == nil {
			return mediaType
		}
	}
	if format.Container != "" {
		kind := "video"
		if !format.HasVideo {
			kind = "audio"
		}
		return kind + "/" + strings.ToLower(format.Container)
	}
	return "application/octet-stream"
}
