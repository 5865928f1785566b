package models

import (
	"sort"
)

// VideoType is the length category derived from a video's duration.
type VideoType string

const (
	VideoTypeShort   VideoType = "SHORT"
	VideoTypeLong    VideoType = "LONG"
	VideoTypeStream  VideoType = "STREAM"
	VideoTypeUnknown VideoType = "UNKNOWN"
)

// VideoSummary is one entry of a channel's uploads playlist.
type VideoSummary struct {
	ChannelLabel  string `json:"channel_label"`
	ChannelHandle string `json:"channel_handle"`
	VideoID       string `json:"video_id"`
	VideoTitle    string `json:"video_title"`
	PublishedAt   string `json:"published_at"`
}

// VideoStats is the normalized statistics record for one video.
// DurationSec is nil when the duration could not be parsed.
type VideoStats struct {
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	DurationSec  *int      `json:"duration_sec"`
	VideoType    VideoType `json:"video_type"`
}

// VideoRow joins an uploads entry with its statistics, if any were returned.
type VideoRow struct {
	VideoSummary
	*VideoStats
}

// PlaylistItem is a playlistItems.list resource (part=snippet).
type PlaylistItem struct {
	ID      string              `json:"id"`
	Snippet PlaylistItemSnippet `json:"snippet"`
}

type PlaylistItemSnippet struct {
	Title       string     `json:"title"`
	PublishedAt string     `json:"publishedAt"`
	ChannelID   string     `json:"channelId"`
	ResourceID  ResourceID `json:"resourceId"`
}

type ResourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

// VideoItem is a videos.list resource (part=statistics,contentDetails).
// Counts arrive as decimal strings and are omitted when hidden.
type VideoItem struct {
	ID             string              `json:"id"`
	Statistics     VideoStatistics     `json:"statistics"`
	ContentDetails VideoContentDetails `json:"contentDetails"`
}

type VideoStatistics struct {
	ViewCount    string `json:"viewCount,omitempty"`
	LikeCount    string `json:"likeCount,omitempty"`
	CommentCount string `json:"commentCount,omitempty"`
}

type VideoContentDetails struct {
	Duration string `json:"duration,omitempty"`
}

// VideoSortOption represents the available sorting options
type VideoSortOption string

const (
	SortByViews      VideoSortOption = "views"
	SortByLikes      VideoSortOption = "likes"
	SortByRecency    VideoSortOption = "recency"
	SortByEngagement VideoSortOption = "engagement"
	SortByPlaylist   VideoSortOption = "playlist"
)

// ParseSortOption maps a query value to a sort option; unknown values keep playlist order.
func ParseSortOption(s string) VideoSortOption {
	switch opt := VideoSortOption(s); opt {
	case SortByViews, SortByLikes, SortByRecency, SortByEngagement:
		return opt
	default:
		return SortByPlaylist
	}
}

// SortRows orders rows in place. Rows without statistics sort last for the
// count-based options.
func SortRows(rows []VideoRow, opt VideoSortOption) {
	switch opt {
	case SortByViews:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].views() > rows[j].views()
		})
	case SortByLikes:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].likes() > rows[j].likes()
		})
	case SortByEngagement:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].EngagementScore() > rows[j].EngagementScore()
		})
	case SortByRecency:
		// RFC 3339 timestamps in UTC compare lexically.
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].PublishedAt > rows[j].PublishedAt
		})
	}
}

func (r VideoRow) views() int64 {
	if r.VideoStats == nil {
		return -1
	}
	return r.ViewCount
}

func (r VideoRow) likes() int64 {
	if r.VideoStats == nil {
		return -1
	}
	return r.LikeCount
}
