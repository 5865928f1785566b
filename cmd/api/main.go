package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/yt-collect/internal/api"
	"github.com/yt-collect/internal/config"
	"github.com/yt-collect/internal/models"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found")
	}

	if err := run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

// run wires the server and blocks until it stops. Deferred cleanup runs
// before main exits.
func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	config.SetupLogging(cfg.LogLevel)

	// Collection cache is optional
	var store api.CollectionStore
	if cfg.DBPath != "" {
		db, err := models.NewDatabase(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
		store = db
	} else {
		log.Info().Msg("DB_PATH not set, collection cache disabled")
	}

	// Initialize YouTube API
	youtubeAPI, err := api.NewYouTubeAPI(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize YouTube API: %w", err)
	}

	server := api.NewServer(cfg, youtubeAPI, store)
	if err := server.Start(cfg.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
