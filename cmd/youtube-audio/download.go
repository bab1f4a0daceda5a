package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/Belphemur/YoutubeAudio/internal/models"
	"github.com/Belphemur/YoutubeAudio/internal/services"
	"github.com/Belphemur/YoutubeAudio/internal/validation"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Download the audio of a single video",
	Long: `Download the audio of a single video without starting the server.

The URL goes through the same checks as the HTTP API. The result is printed
as JSON; the command exits non-zero when the download fails.

Example:
  youtube-audio download "https://www.youtube.com/watch?v=dQw4w9WgXcQ"`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := download(ctx, args[0])
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err != nil {
		if encErr := enc.Encode(models.NewFailureResult(err)); encErr != nil {
			return encErr
		}
		return err
	}
	return enc.Encode(result)
}

func download(ctx context.Context, raw string) (*models.DownloadResult, error) {
	url, err := validation.ValidateURL(raw)
	if err != nil {
		return nil, err
	}
	extractor := newExtractor(services.NewYtdlpDownloader(cfg.Extractor.YtdlpPath))
	return extractor.Extract(ctx, url)
}
