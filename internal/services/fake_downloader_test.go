package services

import (
	"context"
	"sync"

	"github.com/Belphemur/YoutubeAudio/internal/models"
)

// fakeDownloader records calls and returns canned results.
type fakeDownloader struct {
	mu           sync.Mutex
	downloadURLs []string
	downloadOpts []DownloadOptions
	probeURLs    []string

	downloadFn func(ctx context.Context, url string) (*models.MediaInfo, error)
	probeFn    func(ctx context.Context, attempt int) (*models.MediaInfo, error)
}

func (f *fakeDownloader) Download(ctx context.Context, url string, opts DownloadOptions) (*models.MediaInfo, error) {
	f.mu.Lock()
	f.downloadURLs = append(f.downloadURLs, url)
	f.downloadOpts = append(f.downloadOpts, opts)
	f.mu.Unlock()
	if f.downloadFn == nil {
		return &models.MediaInfo{}, nil
	}
	return f.downloadFn(ctx, url)
}

func (f *fakeDownloader) Probe(ctx context.Context, url string) (*models.MediaInfo, error) {
	f.mu.Lock()
	f.probeURLs = append(f.probeURLs, url)
	attempt := len(f.probeURLs)
	f.mu.Unlock()
	if f.probeFn == nil {
		return &models.MediaInfo{}, nil
	}
	return f.probeFn(ctx, attempt)
}

func (f *fakeDownloader) downloadCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.downloadURLs)
}

func (f *fakeDownloader) probeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.probeURLs)
}

func fixedFFmpeg(string) (string, error) {
	return "/usr/bin/ffmpeg", nil
}
