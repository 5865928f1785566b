package models

import "time"

// ChannelDataset is everything collected for one channel: its uploads joined
// with their statistics.
type ChannelDataset struct {
	ChannelHandle     string         `json:"channel_handle"`
	ChannelLabel      string         `json:"channel_label"`
	ChannelID         string         `json:"channel_id"`
	UploadsPlaylistID string         `json:"uploads_playlist_id"`
	Videos            []VideoRow     `json:"videos"`
	Summary           DatasetSummary `json:"summary"`

	// Complete is false when the uploads listing stopped early and Videos
	// holds only the pages read before the fault.
	Complete  bool      `json:"complete"`
	Timestamp time.Time `json:"timestamp"`
}

// APIErrorBody is the "error" object the Data API embeds in failed responses.
type APIErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Errors  []struct {
		Reason  string `json:"reason"`
		Domain  string `json:"domain"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Reason returns the first error reason, or "" when none was given.
func (e *APIErrorBody) Reason() string {
	if e == nil || len(e.Errors) == 0 {
		return ""
	}
	return e.Errors[0].Reason
}
