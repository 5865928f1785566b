// Package main provides the ytcollect CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yt-collect/internal/api"
	"github.com/yt-collect/internal/config"
	"github.com/yt-collect/internal/models"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for the ytcollect CLI.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ytcollect",
		Short:        "Collect videos, comments and statistics from the YouTube Data API",
		Long:         "ytcollect walks channel uploads and comment threads and looks up video statistics, printing JSON.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newVideosCmd())
	rootCmd.AddCommand(newCommentsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newDatasetCmd())

	return rootCmd
}

// newClient loads the configuration from the environment and builds the API.
func newClient(ctx context.Context, maxPages int) (*api.YouTubeAPI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	config.SetupLogging(cfg.LogLevel)

	yt, err := api.NewYouTubeAPI(ctx, cfg)
	if err != nil {
		return nil, err
	}
	yt.SetMaxPages(maxPages)
	return yt, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newVideosCmd creates the videos subcommand.
func newVideosCmd() *cobra.Command {
	var label string
	var maxPages int

	cmd := &cobra.Command{
		Use:   "videos <handle>",
		Short: "List every upload of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			yt, err := newClient(ctx, maxPages)
			if err != nil {
				return err
			}

			videos, res, err := yt.ChannelVideos(ctx, args[0], label)
			if err != nil {
				return err
			}
			if !res.Complete() {
				fmt.Fprintf(cmd.ErrOrStderr(), "listing stopped early (%s), resume token %q\n", res.Stop, res.NextPageToken)
			}
			if videos == nil {
				videos = []models.VideoSummary{}
			}
			return writeJSON(cmd.OutOrStdout(), videos)
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Label recorded on every video (defaults to the handle)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "Stop after this many pages (0 for no limit)")

	return cmd
}

// newCommentsCmd creates the comments subcommand.
func newCommentsCmd() *cobra.Command {
	var maxPages int

	cmd := &cobra.Command{
		Use:   "comments <video-id-or-url>...",
		Short: "Collect top-level comments of one or more videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]string, 0, len(args))
			for _, arg := range args {
				if id, ok := api.ExtractVideoID(arg); ok {
					ids = append(ids, id)
					continue
				}
				ids = append(ids, arg)
			}

			ctx := cmd.Context()
			yt, err := newClient(ctx, maxPages)
			if err != nil {
				return err
			}

			comments, runs := yt.CollectComments(ctx, ids)
			for _, run := range runs {
				if run.Result.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", run.VideoID, run.Result.Err)
				}
			}
			if comments == nil {
				comments = []models.CommentRecord{}
			}
			return writeJSON(cmd.OutOrStdout(), comments)
		},
	}

	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "Stop after this many pages per video (0 for no limit)")

	return cmd
}

// newStatsCmd creates the stats subcommand.
func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <video-id>...",
		Short: "Look up statistics and length category for videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			yt, err := newClient(ctx, 0)
			if err != nil {
				return err
			}

			stats, err := yt.FetchVideoStats(ctx, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		},
	}
}

// newDatasetCmd creates the dataset subcommand.
func newDatasetCmd() *cobra.Command {
	var label string
	var sortBy string

	cmd := &cobra.Command{
		Use:   "dataset <handle>",
		Short: "Join a channel's uploads with their statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			yt, err := newClient(ctx, 0)
			if err != nil {
				return err
			}

			dataset, err := yt.ChannelDataset(ctx, args[0], label)
			if err != nil {
				return err
			}
			models.SortRows(dataset.Videos, models.ParseSortOption(sortBy))
			return writeJSON(cmd.OutOrStdout(), dataset)
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Label recorded on every video (defaults to the handle)")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "playlist", "Sort by views, likes, recency, engagement or playlist")

	return cmd
}
