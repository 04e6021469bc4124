package services

import (
	"context"
	"io"

	"ytdownloader/models"
)

// Provider resolves a video URL into metadata and byte streams.
type Provider interface {
	Name() string
	// ValidateURL reports whether rawURL has a shape the provider accepts.
	ValidateURL(rawURL string) bool
	// FetchMetadata returns formats ranked best first.
	FetchMetadata(ctx context.Context, rawURL string) (*models.RawVideo, error)
	// OpenStream opens the bytes of one encoding. The stream lives as long as ctx.
	OpenStream(ctx context.Context, rawURL string, format models.FormatDescriptor) (io.ReadCloser, error)
}
