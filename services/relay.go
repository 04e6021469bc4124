package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"ytdownloader/models"
)

const DefaultChunkSize = 64 * 1024

// Sink is the outgoing side of a relay; gin.ResponseWriter satisfies it.
type Sink interface {
	io.Writer
	Flush()
}

// Chunks turns r into a lazy, finite sequence of chunks. The yielded slice is
// reused between iterations and must not be retained. A read error is yielded
// once and ends the sequence; io.EOF ends it silently.
func Chunks(r io.Reader, size int) iter.Seq2[[]byte, error] {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return func(yield func([]byte, error) bool) {
		buf := make([]byte, size)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				if !yield(buf[:n], nil) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// Session tracks one streamed response.
type Session struct {
	RequestID  string
	Downloaded int64
	Total      int64 // 0 when the provider declared no size
}

// Add records n relayed bytes and returns the new percentage.
func (s *Session) Add(n int) int {
	s.Downloaded += int64(n)
	return s.Percent()
}

// Percent is floor(downloaded / total * 100), or 0 when the total is unknown.
func (s *Session) Percent() int {
	if s.Total <= 0 {
		return 0
	}
	return int(s.Downloaded * 100 / s.Total)
}

func (s *Session) progress(status string) models.Progress {
	return models.Progress{
		RequestID:       s.RequestID,
		Status:          status,
		DownloadedBytes: s.Downloaded,
		TotalBytes:      s.Total,
		Percent:         s.Percent(),
	}
}

// Relay pushes every chunk to dst, flushing after each one, and reports
// progress once per chunk. Upstream failures are ErrStreamFailure; failures
// writing to dst, or a cancelled ctx, are ErrClientGone.
func Relay(ctx context.Context, chunks iter.Seq2[[]byte, error], dst Sink, s *Session, report func(models.Progress)) error {
	for chunk, err := range chunks {
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %w", ErrClientGone, ctx.Err())
			}
			return fmt.Errorf("%w: %w", ErrStreamFailure, err)
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrClientGone, err)
		}

		if _, err := dst.Write(chunk); err != nil {
			return fmt.Errorf("%w: %w", ErrClientGone, err)
		}
		dst.Flush()

		s.Add(len(chunk))
		if report != nil {
			report(s.progress("downloading"))
		}
	}
	return nil
}
