package api

import (
	"net/url"
	"strings"
)

// ExtractVideoID extracts the video ID from a watch or short-link URL:
//
//	https://www.youtube.com/watch?v=VIDEO_ID&list=...
//	https://youtu.be/VIDEO_ID
//
// A missing scheme is tolerated.
func ExtractVideoID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	parsedURL, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	switch strings.ToLower(parsedURL.Host) {
	case "youtu.be", "www.youtu.be":
		id, _, _ := strings.Cut(strings.TrimPrefix(parsedURL.Path, "/"), "/")
		return id, id != ""
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		id := parsedURL.Query().Get("v")
		return id, id != ""
	}
	return "", false
}
