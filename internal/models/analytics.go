package models

import "time"

// DatasetSummary aggregates the statistics of a channel dataset
type DatasetSummary struct {
	TotalVideos        int               `json:"total_videos"`
	VideosWithStats    int               `json:"videos_with_stats"`
	ByType             map[VideoType]int `json:"by_type"`
	TotalViews         int64             `json:"total_views"`
	TotalLikes         int64             `json:"total_likes"`
	TotalComments      int64             `json:"total_comments"`
	AverageViews       float64           `json:"average_views"`
	LikeToViewRatio    float64           `json:"like_to_view_ratio"`
	CommentToViewRatio float64           `json:"comment_to_view_ratio"`
	TimeRange          TimeRange         `json:"time_range"`
}

// TimeRange represents the time period for analytics
type TimeRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// EngagementScore calculates the engagement score for a video
// This is a weighted combination of views, likes, and comments
func (r VideoRow) EngagementScore() float64 {
	if r.VideoStats == nil || r.ViewCount == 0 {
		return 0
	}

	const (
		viewWeight    = 1.0
		likeWeight    = 2.0
		commentWeight = 3.0
	)

	return (viewWeight * float64(r.ViewCount)) +
		(likeWeight * float64(r.LikeCount)) +
		(commentWeight * float64(r.CommentCount))
}

// Summarize computes totals and ratios over rows. Rows without statistics
// count toward TotalVideos only.
func Summarize(rows []VideoRow) DatasetSummary {
	summary := DatasetSummary{
		TotalVideos: len(rows),
		ByType:      make(map[VideoType]int),
	}

	var first, last time.Time
	for _, row := range rows {
		if published, err := time.Parse(time.RFC3339, row.PublishedAt); err == nil {
			if first.IsZero() || published.Before(first) {
				first = published
			}
			if last.IsZero() || published.After(last) {
				last = published
			}
		}

		if row.VideoStats == nil {
			continue
		}
		summary.VideosWithStats++
		summary.ByType[row.VideoType]++
		summary.TotalViews += row.ViewCount
		summary.TotalLikes += row.LikeCount
		summary.TotalComments += row.CommentCount
	}

	if summary.VideosWithStats > 0 {
		summary.AverageViews = float64(summary.TotalViews) / float64(summary.VideosWithStats)
	}
	if summary.TotalViews > 0 {
		summary.LikeToViewRatio = float64(summary.TotalLikes) / float64(summary.TotalViews)
		summary.CommentToViewRatio = float64(summary.TotalComments) / float64(summary.TotalViews)
	}
	if !first.IsZero() {
		summary.TimeRange = TimeRange{
			StartDate: first.Format("2006-01-02"),
			EndDate:   last.Format("2006-01-02"),
		}
	}

	return summary
}
