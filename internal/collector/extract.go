package collector

import "github.com/yt-collect/internal/models"

// PlaylistItemSummary extracts a VideoSummary from an uploads playlist entry,
// tagging it with the channel it was collected for. Entries without a video
// id are dropped.
func PlaylistItemSummary(label, handle string) Extractor[models.PlaylistItem, models.VideoSummary] {
	return func(item models.PlaylistItem) (models.VideoSummary, bool) {
		videoID := item.Snippet.ResourceID.VideoID
		if videoID == "" {
			return models.VideoSummary{}, false
		}
		return models.VideoSummary{
			ChannelLabel:  label,
			ChannelHandle: handle,
			VideoID:       videoID,
			VideoTitle:    item.Snippet.Title,
			PublishedAt:   item.Snippet.PublishedAt,
		}, true
	}
}

// CommentThreadRecord extracts the top-level comment of a thread. Replies are
// ignored and threads without a top-level comment id are dropped.
func CommentThreadRecord(videoID string) Extractor[models.CommentThread, models.CommentRecord] {
	return func(thread models.CommentThread) (models.CommentRecord, bool) {
		top := thread.Snippet.TopLevelComment
		if top.ID == "" {
			return models.CommentRecord{}, false
		}
		return models.CommentRecord{
			VideoID:     videoID,
			CommentID:   top.ID,
			CommentText: top.Snippet.TextDisplay,
			LikeCount:   top.Snippet.LikeCount,
			PublishedAt: top.Snippet.PublishedAt,
		}, true
	}
}
