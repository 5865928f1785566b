package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

var (
	ErrMissingAPIKey = errors.New("YouTube API key is required")
	ErrInvalidConfig = errors.New("invalid configuration")
)

const (
	DefaultAPIBaseURL = "https://www.googleapis.com"

	// maxBatchSize is the videos.list per-request identifier limit.
	maxBatchSize = 50

	minRequestTimeout = 100 * time.Millisecond
)

// Config holds the application configuration
type Config struct {
	YouTubeAPIKey  string
	APIBaseURL     string
	DBPath         string
	Port           string
	LogLevel       string
	AllowedOrigins []string

	PauseBetweenPages  time.Duration
	RequestTimeout     time.Duration
	BatchSize          int
	ShortThresholdSec  int
	StreamThresholdSec int
}

// Default returns a configuration with every optional value filled in.
// The API key is left empty.
func Default() *Config {
	return &Config{
		APIBaseURL:         DefaultAPIBaseURL,
		Port:               "8080",
		LogLevel:           "info",
		AllowedOrigins:     []string{"http://localhost:3000", "http://localhost:3001"},
		PauseBetweenPages:  200 * time.Millisecond,
		RequestTimeout:     10 * time.Second,
		BatchSize:          maxBatchSize,
		ShortThresholdSec:  60,
		StreamThresholdSec: 1200,
	}
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	def := Default()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("YOUTUBE_API_BASE_URL", def.APIBaseURL)
	v.SetDefault("PORT", def.Port)
	v.SetDefault("LOG_LEVEL", def.LogLevel)
	v.SetDefault("ALLOWED_ORIGINS", strings.Join(def.AllowedOrigins, ","))
	v.SetDefault("PAUSE_SECONDS", def.PauseBetweenPages.Seconds())
	v.SetDefault("REQUEST_TIMEOUT", def.RequestTimeout.String())
	v.SetDefault("BATCH_SIZE", def.BatchSize)
	v.SetDefault("SHORT_THRESHOLD_SEC", def.ShortThresholdSec)
	v.SetDefault("STREAM_THRESHOLD_SEC", def.StreamThresholdSec)

	pause, err := cast.ToFloat64E(strings.TrimSpace(v.GetString("PAUSE_SECONDS")))
	if err != nil {
		return nil, fmt.Errorf("%w: PAUSE_SECONDS: %v", ErrInvalidConfig, err)
	}
	timeout, err := parseTimeout(v.GetString("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("%w: REQUEST_TIMEOUT: %v", ErrInvalidConfig, err)
	}

	cfg := &Config{
		YouTubeAPIKey:      strings.TrimSpace(v.GetString("YOUTUBE_API_KEY")),
		APIBaseURL:         strings.TrimRight(v.GetString("YOUTUBE_API_BASE_URL"), "/"),
		DBPath:             v.GetString("DB_PATH"),
		Port:               v.GetString("PORT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		AllowedOrigins:     splitList(v.GetString("ALLOWED_ORIGINS")),
		PauseBetweenPages:  time.Duration(pause * float64(time.Second)),
		RequestTimeout:     timeout,
		BatchSize:          v.GetInt("BATCH_SIZE"),
		ShortThresholdSec:  v.GetInt("SHORT_THRESHOLD_SEC"),
		StreamThresholdSec: v.GetInt("STREAM_THRESHOLD_SEC"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.YouTubeAPIKey == "" {
		return fmt.Errorf("%w: YOUTUBE_API_KEY environment variable is not set", ErrMissingAPIKey)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("%w: YOUTUBE_API_BASE_URL must not be empty", ErrInvalidConfig)
	}
	if c.PauseBetweenPages < 0 {
		return fmt.Errorf("%w: PAUSE_SECONDS must not be negative", ErrInvalidConfig)
	}
	if c.RequestTimeout < minRequestTimeout {
		return fmt.Errorf("%w: REQUEST_TIMEOUT must be at least %s, got %s", ErrInvalidConfig, minRequestTimeout, c.RequestTimeout)
	}
	if c.BatchSize < 1 || c.BatchSize > maxBatchSize {
		return fmt.Errorf("%w: BATCH_SIZE must be between 1 and %d, got %d", ErrInvalidConfig, maxBatchSize, c.BatchSize)
	}
	if c.ShortThresholdSec < 0 || c.StreamThresholdSec < 0 {
		return fmt.Errorf("%w: classification thresholds must not be negative", ErrInvalidConfig)
	}
	if c.StreamThresholdSec != 0 && c.StreamThresholdSec <= c.ShortThresholdSec {
		return fmt.Errorf("%w: STREAM_THRESHOLD_SEC (%d) must exceed SHORT_THRESHOLD_SEC (%d)",
			ErrInvalidConfig, c.StreamThresholdSec, c.ShortThresholdSec)
	}
	return nil
}

// SetupLogging sets the global zerolog level. Unknown levels fall back to info.
func SetupLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// parseTimeout accepts a Go duration ("10s", "1m30s") or a bare number of
// seconds ("10", "2.5").
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := cast.ToFloat64E(s); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
