package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Belphemur/YoutubeAudio/internal/apperrors"
	"github.com/Belphemur/YoutubeAudio/internal/config"
	"github.com/Belphemur/YoutubeAudio/internal/metrics"
	"github.com/Belphemur/YoutubeAudio/internal/models"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/timeout"
)

// DefaultAudioExtractor implements AudioExtractor on top of a Downloader.
// Each call is a single attempt; a failure is final for that request.
type DefaultAudioExtractor struct {
	downloader Downloader
	opts       DownloadOptions
	timeout    time.Duration
	locate     func(string) (string, error)
}

// ExtractorOption is a functional option for configuring DefaultAudioExtractor
type ExtractorOption func(*DefaultAudioExtractor)

// WithDownloadOptions overrides stream selection and output settings.
func WithDownloadOptions(opts DownloadOptions) ExtractorOption {
	return func(e *DefaultAudioExtractor) {
		e.opts = opts
	}
}

// WithTimeout bounds the fetch+transcode duration. Zero disables the limit.
func WithTimeout(d time.Duration) ExtractorOption {
	return func(e *DefaultAudioExtractor) {
		e.timeout = d
	}
}

// WithFFmpegLocator replaces the ffmpeg lookup (for testing).
func WithFFmpegLocator(locate func(string) (string, error)) ExtractorOption {
	return func(e *DefaultAudioExtractor) {
		e.locate = locate
	}
}

// NewAudioExtractor creates an extractor converting to 192 kbps MP3 in ./audio by default.
func NewAudioExtractor(downloader Downloader, opts ...ExtractorOption) *DefaultAudioExtractor {
	e := &DefaultAudioExtractor{
		downloader: downloader,
		opts:       DefaultDownloadOptions(),
		locate:     LocateFFmpeg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract implements AudioExtractor.
func (e *DefaultAudioExtractor) Extract(ctx context.Context, url string) (*models.DownloadResult, error) {
	logger := config.GetLogger()
	start := time.Now()

	info, err := e.download(ctx, url)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.AudioDownloadsTotal.WithLabelValues("error").Inc()
		metrics.AudioDownloadDuration.WithLabelValues("error").Observe(elapsed)
		logger.Error().Err(err).Str("url", url).Float64("elapsed_seconds", elapsed).Msg("Audio download failed")
		return nil, apperrors.NewExtractionError(err)
	}

	title := info.Title

	metrics.AudioDownloadsTotal.WithLabelValues("success").Inc()
	metrics.AudioDownloadDuration.WithLabelValues("success").Observe(elapsed)
	logger.Info().
		Str("url", url).
		Str("title", title).
		Str("filename", info.Filename).
		Float64("elapsed_seconds", elapsed).
		Msg("Audio downloaded")

	return models.NewSuccessResult(title), nil
}

func (e *DefaultAudioExtractor) download(ctx context.Context, url string) (*models.MediaInfo, error) {
	opts := e.opts
	ffmpeg, err := e.locate(opts.FFmpegLocation)
	if err != nil {
		return nil, err
	}
	opts.FFmpegLocation = ffmpeg

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if e.timeout <= 0 {
		info, err := e.downloader.Download(ctx, url, opts)
		return checkInfo(info, err)
	}

	info, err := failsafe.With[*models.MediaInfo](timeout.New[*models.MediaInfo](e.timeout)).
		WithContext(ctx).
		GetWithExecution(func(exec failsafe.Execution[*models.MediaInfo]) (*models.MediaInfo, error) {
			return e.downloader.Download(exec.Context(), url, opts)
		})
	return checkInfo(info, err)
}

func checkInfo(info *models.MediaInfo, err error) (*models.MediaInfo, error) {
	if err != nil {
		return nil, err
	}
	if info == nil {
		return &models.MediaInfo{Title: models.UnknownTitle}, nil
	}
	return info, nil
}

var _ AudioExtractor = (*DefaultAudioExtractor)(nil)
