package config

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "")

	cfg, err := Load()

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "test-key")
	t.Setenv("DB_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.YouTubeAPIKey)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, 200*time.Millisecond, cfg.PauseBetweenPages)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 60, cfg.ShortThresholdSec)
	assert.Equal(t, 1200, cfg.StreamThresholdSec)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DBPath)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", " key-with-space ")
	t.Setenv("YOUTUBE_API_BASE_URL", "http://127.0.0.1:9999/")
	t.Setenv("PAUSE_SECONDS", "0")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("BATCH_SIZE", "10")
	t.Setenv("STREAM_THRESHOLD_SEC", "0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "key-with-space", cfg.YouTubeAPIKey)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.APIBaseURL)
	assert.Zero(t, cfg.PauseBetweenPages)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Zero(t, cfg.StreamThresholdSec)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_RequestTimeout(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"10", 10 * time.Second},
		{"2.5", 2500 * time.Millisecond},
		{"1m30s", 90 * time.Second},
		{" 500ms ", 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("YOUTUBE_API_KEY", "test-key")
			t.Setenv("REQUEST_TIMEOUT", tt.raw)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.RequestTimeout)
		})
	}
}

func TestLoad_RejectsMalformedDurations(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"pause not a number", "PAUSE_SECONDS", "abc"},
		{"timeout not a duration", "REQUEST_TIMEOUT", "soon"},
		{"timeout below floor", "REQUEST_TIMEOUT", "10ns"},
		{"timeout zero", "REQUEST_TIMEOUT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("YOUTUBE_API_KEY", "test-key")
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(c *Config) {}, nil},
		{"missing key", func(c *Config) { c.YouTubeAPIKey = "" }, ErrMissingAPIKey},
		{"negative pause", func(c *Config) { c.PauseBetweenPages = -time.Second }, ErrInvalidConfig},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, ErrInvalidConfig},
		{"nanosecond timeout", func(c *Config) { c.RequestTimeout = 10 * time.Nanosecond }, ErrInvalidConfig},
		{"timeout at floor", func(c *Config) { c.RequestTimeout = 100 * time.Millisecond }, nil},
		{"batch too large", func(c *Config) { c.BatchSize = 51 }, ErrInvalidConfig},
		{"batch too small", func(c *Config) { c.BatchSize = 0 }, ErrInvalidConfig},
		{"stream below short", func(c *Config) { c.StreamThresholdSec = 30 }, ErrInvalidConfig},
		{"two tier policy", func(c *Config) { c.StreamThresholdSec = 0 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.YouTubeAPIKey = "k"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetupLogging("debug")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetupLogging("nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
