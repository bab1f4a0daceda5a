package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Version is reported by the health endpoint and the CLI.
const Version = "1.0.0"

type Config struct {
	Server struct {
		Port            int    `mapstructure:"port"`
		Address         string `mapstructure:"address"`
		MaxConnections  int    `mapstructure:"max_connections"`  // 0 disables the connection cap
		ShutdownTimeout string `mapstructure:"shutdown_timeout"` // Go duration string like "15s"
		RateLimit       struct {
			RPS   float64 `mapstructure:"rps"` // 0 disables rate limiting
			Burst int     `mapstructure:"burst"`
		} `mapstructure:"rate_limit"`
	} `mapstructure:"server"`
	LogLevel string `mapstructure:"log_level"`
	Metrics  struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
	Extractor struct {
		OutputDir      string `mapstructure:"output_dir"`
		FFmpegLocation string `mapstructure:"ffmpeg_location"`
		YtdlpPath      string `mapstructure:"ytdlp_path"`
		Format         string `mapstructure:"format"`
		AudioFormat    string `mapstructure:"audio_format"`
		AudioQuality   string `mapstructure:"audio_quality"`
		Timeout        string `mapstructure:"timeout"` // empty means the download may block indefinitely
	} `mapstructure:"extractor"`
	Ytdlp struct {
		AutoInstall bool `mapstructure:"auto_install"`
	} `mapstructure:"ytdlp"`
	Cache struct {
		Provider string `mapstructure:"provider"` // "memory" or "redis"
		Size     int    `mapstructure:"size"`     // Maximum number of entries in the LRU cache
		TTL      string `mapstructure:"ttl"`      // Go duration string like "1h", "24h", etc.
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()
}

// Init loads the configuration, applies the configured log level and stores
// both globally. configFile may be empty to search the default locations.
func Init(configFile string) (*Config, error) {
	config, err := LoadConfig(configFile)
	if err != nil {
		return nil, err
	}

	// Parse and set log level from config
	level := zerolog.InfoLevel // default
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Info().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
	logger.Info().Msg("Configuration loaded successfully")
	return config, nil
}

func LoadConfig(configFile string) (*Config, error) {
	// A missing .env file is normal outside of local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Add specific environment variable for log level
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.max_connections", 0)
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.rate_limit.rps", 0)
	v.SetDefault("server.rate_limit.burst", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
	v.SetDefault("extractor.output_dir", "audio")
	v.SetDefault("extractor.ffmpeg_location", "")
	v.SetDefault("extractor.ytdlp_path", "")
	v.SetDefault("extractor.format", "bestaudio/best")
	v.SetDefault("extractor.audio_format", "mp3")
	v.SetDefault("extractor.audio_quality", "192K")
	v.SetDefault("extractor.timeout", "")
	v.SetDefault("ytdlp.auto_install", false)
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 1000)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
}

// GetConfig returns the configuration stored by Init, or nil before Init ran.
func GetConfig() *Config {
	return globalConfig
}

func GetLogger() zerolog.Logger {
	return logger
}

// ParseDuration parses a Go duration string from the configuration, logging
// and returning fallback when it is empty or invalid.
func ParseDuration(key, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Str("value", value).Dur("fallback", fallback).Msg("Invalid duration, using fallback")
		return fallback
	}
	return d
}
