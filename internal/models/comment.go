package models

// CommentRecord is one top-level comment thread on a video.
type CommentRecord struct {
	VideoID     string `json:"video_id"`
	CommentID   string `json:"comment_id"`
	CommentText string `json:"comment_text"`
	LikeCount   int64  `json:"like_count"`
	PublishedAt string `json:"published_at"`
}

// CommentThread is a commentThreads.list resource (part=snippet).
type CommentThread struct {
	ID      string               `json:"id"`
	Snippet CommentThreadSnippet `json:"snippet"`
}

type CommentThreadSnippet struct {
	VideoID         string  `json:"videoId"`
	TopLevelComment Comment `json:"topLevelComment"`
	TotalReplyCount int64   `json:"totalReplyCount"`
}

type Comment struct {
	ID      string         `json:"id"`
	Snippet CommentSnippet `json:"snippet"`
}

type CommentSnippet struct {
	TextDisplay string `json:"textDisplay"`
	LikeCount   int64  `json:"likeCount"`
	PublishedAt string `json:"publishedAt"`
}
