package collector

import (
	"fmt"
)

// TransportError is a failed request: the call could not be made, the
// response could not be read, or the API answered with a non-success status.
type TransportError struct {
	StatusCode int
	Reason     string
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("youtube api request failed (status %d): %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("youtube api request failed: %v", e.Err)
	case e.Reason != "":
		return fmt.Sprintf("youtube api returned status %d (%s): %s", e.StatusCode, e.Reason, e.Message)
	default:
		return fmt.Sprintf("youtube api returned status %d", e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResourceFault is an API error scoped to the requested resource, such as
// comments being disabled on a video or the video having been removed.
type ResourceFault struct {
	Code    int
	Reason  string
	Message string
}

func (e *ResourceFault) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("youtube resource unavailable (code %d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("youtube resource unavailable (%s): %s", e.Reason, e.Message)
}

var resourceReasons = map[string]bool{
	"commentsDisabled":  true,
	"videoNotFound":     true,
	"playlistNotFound":  true,
	"channelNotFound":   true,
	"forbidden":         true,
	"playlistForbidden": true,
}

// IsResourceReason reports whether an API error reason describes the
// requested resource rather than the request or the caller's quota.
func IsResourceReason(reason string) bool {
	return resourceReasons[reason]
}
