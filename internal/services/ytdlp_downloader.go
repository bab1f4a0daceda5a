package services

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Belphemur/YoutubeAudio/internal/config"
	"github.com/Belphemur/YoutubeAudio/internal/models"
	"github.com/lrstanley/go-ytdlp"
)

// outputTemplate names files after the media title; yt-dlp swaps the
// extension once the audio has been converted.
const outputTemplate = "%(title)s.%(ext)s"

// ytdlpInfo is the subset of yt-dlp's info JSON we consume.
type ytdlpInfo struct {
	ID         string  `json:"id"`
	Title      *string `json:"title"`
	Uploader   string  `json:"uploader"`
	Duration   float64 `json:"duration"`
	WebpageURL string  `json:"webpage_url"`
	Filename   string  `json:"filename"`
}

// YtdlpDownloader drives the yt-dlp binary through go-ytdlp.
type YtdlpDownloader struct {
	executable string
}

// NewYtdlpDownloader creates a downloader. An empty executable resolves
// "yt-dlp" from PATH (or go-ytdlp's install cache).
func NewYtdlpDownloader(executable string) *YtdlpDownloader {
	return &YtdlpDownloader{executable: executable}
}

func (d *YtdlpDownloader) command() *ytdlp.Command {
	cmd := ytdlp.New()
	if d.executable != "" {
		cmd = cmd.SetExecutable(d.executable)
	}
	return cmd
}

// Download implements Downloader.
func (d *YtdlpDownloader) Download(ctx context.Context, url string, opts DownloadOptions) (*models.MediaInfo, error) {
	cmd := d.command().
		Format(opts.Format).
		ExtractAudio().
		AudioFormat(opts.AudioFormat).
		AudioQuality(opts.AudioQuality).
		Output(filepath.Join(opts.OutputDir, outputTemplate)).
		NoPlaylist().
		NoWarnings().
		NoProgress().
		DumpJSON().
		NoSimulate()
	if opts.FFmpegLocation != "" {
		cmd = cmd.FFmpegLocation(opts.FFmpegLocation)
	}

	result, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, toolError(result, err)
	}

	info, err := parseInfo(result.Stdout)
	if err != nil {
		return nil, err
	}
	if info.Filename != "" && opts.AudioFormat != "" {
		info.Filename = strings.TrimSuffix(info.Filename, filepath.Ext(info.Filename)) + "." + opts.AudioFormat
	}
	return info, nil
}

// Probe implements Downloader.
func (d *YtdlpDownloader) Probe(ctx context.Context, url string) (*models.MediaInfo, error) {
	result, err := d.command().
		NoPlaylist().
		NoWarnings().
		SkipDownload().
		DumpJSON().
		Run(ctx, url)
	if err != nil {
		return nil, toolError(result, err)
	}
	return parseInfo(result.Stdout)
}

// toolError prefers yt-dlp's own ERROR line over the bare exit status.
func toolError(result *ytdlp.Result, err error) error {
	if result == nil {
		return err
	}
	var last string
	for _, line := range strings.Split(result.Stderr, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR:") {
			last = line
		}
	}
	if last == "" {
		return err
	}
	return errors.New(last)
}

// parseInfo reads the last JSON object printed by yt-dlp. Output without any
// JSON line yields a MediaInfo with only the unknown title rather than an
// error: the download itself succeeded, only the metadata is missing.
func parseInfo(stdout string) (*models.MediaInfo, error) {
	var lastJSON string
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "{") {
			lastJSON = line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read yt-dlp output: %w", err)
	}
	if lastJSON == "" {
		return &models.MediaInfo{Title: models.UnknownTitle}, nil
	}

	var raw ytdlpInfo
	if err := json.Unmarshal([]byte(lastJSON), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp JSON: %w", err)
	}
	// Only a missing title falls back; an empty one is kept as reported.
	title := models.UnknownTitle
	if raw.Title != nil {
		title = *raw.Title
	}
	return &models.MediaInfo{
		ID:         raw.ID,
		Title:      title,
		Uploader:   raw.Uploader,
		Duration:   raw.Duration,
		WebpageURL: raw.WebpageURL,
		Filename:   raw.Filename,
	}, nil
}

// LocateFFmpeg resolves the ffmpeg binary used for audio conversion.
// configured may point at the binary or at the directory holding it; when
// empty, PATH is searched.
func LocateFFmpeg(configured string) (string, error) {
	if configured == "" {
		path, err := exec.LookPath("ffmpeg")
		if err != nil {
			return "", fmt.Errorf("ffmpeg not found in PATH: %w", err)
		}
		return path, nil
	}

	info, err := os.Stat(configured)
	if err != nil {
		return "", fmt.Errorf("ffmpeg location %q: %w", configured, err)
	}
	if info.IsDir() {
		candidate := filepath.Join(configured, "ffmpeg")
		if _, err := os.Stat(candidate); err != nil {
			return "", fmt.Errorf("ffmpeg not found in %q: %w", configured, err)
		}
		return candidate, nil
	}
	return configured, nil
}

// InstallYtdlp makes sure a yt-dlp binary is available, downloading it into
// go-ytdlp's cache when missing, and returns its path.
func InstallYtdlp(ctx context.Context) (string, error) {
	logger := config.GetLogger()

	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to install yt-dlp: %w", err)
	}

	logger.Info().
		Str("executable", resolved.Executable).
		Str("version", resolved.Version).
		Msg("yt-dlp available")
	return resolved.Executable, nil
}

var _ Downloader = (*YtdlpDownloader)(nil)
