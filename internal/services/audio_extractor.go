package services

import (
	"context"

	"github.com/Belphemur/YoutubeAudio/internal/models"
)

// AudioExtractor fetches the audio of a validated video URL and transcodes it.
type AudioExtractor interface {
	// Extract downloads url as audio. Every failure is an *apperrors.ErrExtraction.
	Extract(ctx context.Context, url string) (*models.DownloadResult, error)
}

// MetadataProber looks up video metadata without downloading anything.
type MetadataProber interface {
	Probe(ctx context.Context, url string) (*models.MediaInfo, error)
}

// Downloader is the seam to the external download/transcode toolchain.
// Implementations set Title to models.UnknownTitle when the tool reports none.
type Downloader interface {
	// Download fetches url, converts it to audio and returns the reported metadata.
	Download(ctx context.Context, url string, opts DownloadOptions) (*models.MediaInfo, error)

	// Probe returns the metadata of url without downloading it.
	Probe(ctx context.Context, url string) (*models.MediaInfo, error)
}

// DownloadOptions configures stream selection and post-processing.
type DownloadOptions struct {
	Format         string // yt-dlp format selector, e.g. "bestaudio/best"
	AudioFormat    string // target codec, e.g. "mp3"
	AudioQuality   string // target bitrate, e.g. "192K"
	FFmpegLocation string // resolved path to the ffmpeg binary
	OutputDir      string // directory the file is written to, named after the title
}

// DefaultDownloadOptions returns best audio converted to 192 kbps MP3 in ./audio.
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{
		Format:       "bestaudio/best",
		AudioFormat:  "mp3",
		AudioQuality: "192K",
		OutputDir:    "audio",
	}
}
