package services

import (
	"errors"
	"fmt"
)

var (
	ErrMissingInput     = errors.New("URL is required")
	ErrInvalidURL       = errors.New("Invalid YouTube URL")
	ErrNoMatchingFormat = errors.New("no matching format found")
	ErrStreamFailure    = errors.New("stream failure")
	// ErrClientGone means the response could no longer be written.
	ErrClientGone = errors.New("client connection lost")
)

// ProviderError wraps any failure reported by the metadata/stream provider.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
