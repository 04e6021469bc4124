package services

import (
	"context"
	"strings"
	"time"

	"ytdownloader/logger"
	"ytdownloader/models"

	"golang.org/x/time/rate"
)

type infoState string

const (
	stateValidating  infoState = "validating"
	stateFetching    infoState = "fetching"
	stateNormalizing infoState = "normalizing"
	stateResponding  infoState = "responding"
	stateFailed      infoState = "failed"
)

type InfoService struct {
	provider     Provider
	fetchTimeout time.Duration
	throttle     *rate.Limiter
}

func NewInfoService(provider Provider, fetchTimeout time.Duration) *InfoService {
	return &InfoService{provider: provider, fetchTimeout: fetchTimeout}
}

// WithThrottle spaces out metadata lookups across all clients so bursts of
// requests do not hammer the upstream site. A nil limiter disables it.
func (s *InfoService) WithThrottle(l *rate.Limiter) *InfoService {
	s.throttle = l
	return s
}

// Validate rejects a missing URL or one the provider does not recognise.
func (s *InfoService) Validate(videoURL string) error {
	if strings.TrimSpace(videoURL) == "" {
		return ErrMissingInput
	}
	if !s.provider.ValidateURL(videoURL) {
		return ErrInvalidURL
	}
	return nil
}

// Fetch calls the provider with the configured timeout.
func (s *InfoService) Fetch(ctx context.Context, videoURL string) (*models.RawVideo, error) {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	if s.throttle != nil {
		if err := s.throttle.Wait(ctx); err != nil {
			return nil, &ProviderError{Op: s.provider.Name() + " throttle", Err: err}
		}
	}

	raw, err := s.provider.FetchMetadata(ctx, videoURL)
	if err != nil {
		return nil, &ProviderError{Op: s.provider.Name() + " fetch metadata", Err: err}
	}
	return raw, nil
}

// GetVideoInfo runs validate -> fetch -> normalize for one info request.
func (s *InfoService) GetVideoInfo(ctx context.Context, videoURL string) (*models.VideoMetadata, error) {
	log := logger.Component("InfoService")
	state := stateValidating

	fail := func(err error) (*models.VideoMetadata, error) {
		log.Warn().Str("state", string(state)).Str("next", string(stateFailed)).Str("url", videoURL).Err(err).Msg("info request failed")
		return nil, err
	}

	if err := s.Validate(videoURL); err != nil {
		return fail(err)
	}

	state = stateFetching
	log.Debug().Str("state", string(state)).Str("provider", s.provider.Name()).Str("url", videoURL).Msg("fetching metadata")
	raw, err := s.Fetch(ctx, videoURL)
	if err != nil {
		return fail(err)
	}

	state = stateNormalizing
	info := Normalize(*raw)

	state = stateResponding
	log.Info().Str("state", string(state)).Str("id", info.ID).Int("formats", len(info.Formats)).
		Strs("qualities", info.AvailableQualities).Msg("video info ready")
	return &info, nil
}
