package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Belphemur/YoutubeAudio/internal/cache"
	"github.com/Belphemur/YoutubeAudio/internal/config"
	"github.com/Belphemur/YoutubeAudio/internal/metrics"
	"github.com/Belphemur/YoutubeAudio/internal/server"
	"github.com/Belphemur/YoutubeAudio/internal/services"
	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API (default)",
	Long: `Serve the HTTP API until SIGINT or SIGTERM.

Listen address, rate limiting, metrics and Sentry reporting are read from the
configuration file or APP_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := config.GetLogger()

	logger.Info().
		Str("version", config.Version).
		Str("server_address", cfg.Server.Address).
		Int("server_port", cfg.Server.Port).
		Str("output_dir", cfg.Extractor.OutputDir).
		Str("cache_provider", cfg.Cache.Provider).
		Msg("Application started with configuration")

	sentryEnabled := false
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     "youtube-audio@" + config.Version,
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to initialize Sentry, continuing without error reporting")
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	metaCache, err := cache.New(cfg.Cache.Provider, cache.ProviderConfig{
		Size:   cfg.Cache.Size,
		TTL:    config.ParseDuration("cache.ttl", cfg.Cache.TTL, time.Hour),
		Logger: cache.NewZerologLogger(logger),
		Redis: cache.RedisOptions{
			Address:  cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		},
		Group: "metadata",
	})
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.Cache.Provider).Msg("Metadata cache unavailable, probing uncached")
	}

	downloader := services.NewYtdlpDownloader(cfg.Extractor.YtdlpPath)
	router := server.NewRouter(server.Dependencies{
		Extractor: newExtractor(downloader),
		Prober:    services.NewMetadataProber(downloader, metaCache, services.DefaultProberOptions()),
		Limiter:   server.NewLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst),
		Sentry:    sentryEnabled,
	})

	opts := []server.Option{
		server.WithMaxConnections(cfg.Server.MaxConnections),
		server.WithShutdownTimeout(shutdownTimeout()),
	}
	if cfg.Ytdlp.AutoInstall && cfg.Extractor.YtdlpPath == "" {
		opts = append(opts, server.WithStartupHook(func(ctx context.Context) error {
			_, err := services.InstallYtdlp(ctx)
			return err
		}))
	}
	if metaCache != nil {
		opts = append(opts, server.WithShutdownHook(func(context.Context) error {
			return metaCache.Close()
		}))
	}

	address := net.JoinHostPort(cfg.Server.Address, strconv.Itoa(cfg.Server.Port))
	srv := server.New(address, router, opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Failed to serve metrics")
				stop()
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	if err := srv.Run(ctx); err != nil {
		return err
	}

	logger.Info().Msg("Server stopped gracefully")
	return nil
}
