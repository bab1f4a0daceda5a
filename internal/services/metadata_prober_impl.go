package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Belphemur/YoutubeAudio/internal/apperrors"
	"github.com/Belphemur/YoutubeAudio/internal/cache"
	"github.com/Belphemur/YoutubeAudio/internal/config"
	"github.com/Belphemur/YoutubeAudio/internal/metrics"
	"github.com/Belphemur/YoutubeAudio/internal/models"
	"github.com/Belphemur/YoutubeAudio/internal/validation"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// ProberOptions tunes retries of metadata lookups.
type ProberOptions struct {
	MaxRetries int
	Delay      time.Duration
	MaxDelay   time.Duration
}

// DefaultProberOptions retries twice with exponential backoff from 500ms.
func DefaultProberOptions() ProberOptions {
	return ProberOptions{MaxRetries: 2, Delay: 500 * time.Millisecond, MaxDelay: 5 * time.Second}
}

// CachedMetadataProber resolves metadata through the Downloader and caches it
// by video ID. Lookups are retried; audio downloads never go through here.
type CachedMetadataProber struct {
	downloader Downloader
	cache      cache.Cache
	executor   failsafe.Executor[*models.MediaInfo]
}

// NewMetadataProber creates a prober. c may be nil to disable caching.
func NewMetadataProber(downloader Downloader, c cache.Cache, opts ProberOptions) *CachedMetadataProber {
	builder := retrypolicy.NewBuilder[*models.MediaInfo]().
		HandleIf(func(_ *models.MediaInfo, err error) bool {
			return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}).
		WithMaxRetries(opts.MaxRetries).
		ReturnLastFailure()
	if opts.Delay > 0 {
		builder = builder.WithBackoff(opts.Delay, max(opts.MaxDelay, opts.Delay))
	}

	return &CachedMetadataProber{
		downloader: downloader,
		cache:      c,
		executor:   failsafe.With[*models.MediaInfo](builder.Build()),
	}
}

// Probe implements MetadataProber.
func (p *CachedMetadataProber) Probe(ctx context.Context, url string) (*models.MediaInfo, error) {
	logger := config.GetLogger()
	key := validation.VideoID(url)

	if info, ok := p.fromCache(ctx, key); ok {
		metrics.MetadataProbesTotal.WithLabelValues("cached").Inc()
		logger.Debug().Str("video_id", key).Msg("Metadata served from cache")
		return info, nil
	}

	info, err := p.executor.WithContext(ctx).GetWithExecution(func(exec failsafe.Execution[*models.MediaInfo]) (*models.MediaInfo, error) {
		if exec.Attempts() > 1 {
			logger.Warn().Str("url", url).Int("attempt", exec.Attempts()).Err(exec.LastError()).Msg("Retrying metadata lookup")
		}
		return p.downloader.Probe(exec.Context(), url)
	})
	if err != nil {
		metrics.MetadataProbesTotal.WithLabelValues("error").Inc()
		logger.Error().Err(err).Str("url", url).Msg("Metadata lookup failed")
		return nil, apperrors.NewExtractionError(err)
	}
	if info == nil {
		info = &models.MediaInfo{Title: models.UnknownTitle}
	}

	metrics.MetadataProbesTotal.WithLabelValues("success").Inc()
	p.toCache(ctx, key, info)
	return info, nil
}

func (p *CachedMetadataProber) fromCache(ctx context.Context, key string) (*models.MediaInfo, bool) {
	if p.cache == nil || key == "" {
		return nil, false
	}
	data, ok := p.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var info models.MediaInfo
	if err := json.Unmarshal(data, &info); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("video_id", key).Msg("Discarding undecodable cache entry")
		return nil, false
	}
	return &info, true
}

func (p *CachedMetadataProber) toCache(ctx context.Context, key string, info *models.MediaInfo) {
	if p.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(info)
	if err != nil {
		return
	}
	p.cache.Set(ctx, key, data)
}

var _ MetadataProber = (*CachedMetadataProber)(nil)
