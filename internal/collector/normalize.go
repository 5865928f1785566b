package collector

import (
	"strconv"

	"github.com/yt-collect/internal/models"
)

// Classifier buckets a duration into a video type. Durations below
// ShortThreshold are SHORT, below StreamThreshold LONG, anything else STREAM.
// A zero StreamThreshold disables the STREAM tier.
type Classifier struct {
	ShortThreshold  int
	StreamThreshold int
}

// DefaultClassifier returns the 60s / 1200s policy.
func DefaultClassifier() Classifier {
	return Classifier{ShortThreshold: 60, StreamThreshold: 1200}
}

// Classify returns UNKNOWN when the duration is not known.
func (c Classifier) Classify(seconds int, known bool) models.VideoType {
	switch {
	case !known:
		return models.VideoTypeUnknown
	case seconds < c.ShortThreshold:
		return models.VideoTypeShort
	case c.StreamThreshold <= 0 || seconds < c.StreamThreshold:
		return models.VideoTypeLong
	default:
		return models.VideoTypeStream
	}
}

// NormalizeVideoStats maps one videos.list batch to normalized records keyed
// by video id. Hidden counts become 0, an unparseable duration becomes an
// unknown duration, and ids the API did not return are simply absent.
func NormalizeVideoStats(items []models.VideoItem, c Classifier) map[string]models.VideoStats {
	stats := make(map[string]models.VideoStats, len(items))

	for _, item := range items {
		if item.ID == "" {
			continue
		}

		var duration *int
		seconds, known := ParseDuration(item.ContentDetails.Duration)
		if known {
			duration = &seconds
		}

		stats[item.ID] = models.VideoStats{
			ViewCount:    parseCount(item.Statistics.ViewCount),
			LikeCount:    parseCount(item.Statistics.LikeCount),
			CommentCount: parseCount(item.Statistics.CommentCount),
			DurationSec:  duration,
			VideoType:    c.Classify(seconds, known),
		}
	}

	return stats
}

func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
