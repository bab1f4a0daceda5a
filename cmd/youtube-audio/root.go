package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Belphemur/YoutubeAudio/internal/config"
	"github.com/Belphemur/YoutubeAudio/internal/services"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "youtube-audio",
	Short: "Download the audio track of YouTube videos as MP3",
	Long: `youtube-audio fetches the best available audio stream of a YouTube video
and converts it to MP3 with ffmpeg.

Without a subcommand it serves the HTTP API:

  POST /download/  {"url": "https://www.youtube.com/watch?v=..."}
  POST /info/      {"url": "https://youtu.be/..."}
  GET  /health

Example:
  youtube-audio serve --config config/config.yaml
  youtube-audio download "https://youtu.be/dQw4w9WgXcQ"`,
	Version:       config.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Init(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
	RunE: runServe,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")
}

// newExtractor builds the audio extractor from the loaded configuration.
func newExtractor(downloader services.Downloader) *services.DefaultAudioExtractor {
	return services.NewAudioExtractor(downloader,
		services.WithDownloadOptions(services.DownloadOptions{
			Format:         cfg.Extractor.Format,
			AudioFormat:    cfg.Extractor.AudioFormat,
			AudioQuality:   cfg.Extractor.AudioQuality,
			FFmpegLocation: cfg.Extractor.FFmpegLocation,
			OutputDir:      cfg.Extractor.OutputDir,
		}),
		services.WithTimeout(config.ParseDuration("extractor.timeout", cfg.Extractor.Timeout, 0)),
	)
}

func shutdownTimeout() time.Duration {
	return config.ParseDuration("server.shutdown_timeout", cfg.Server.ShutdownTimeout, 15*time.Second)
}
