package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yt-collect/internal/config"
)

const testAPIKey = "test-key"

// fakeYouTube serves the subset of the Data API the collector talks to.
type fakeYouTube struct {
	mu    sync.Mutex
	calls map[string]int
	ids   [][]string
}

func (f *fakeYouTube) count(resource string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[resource]
}

func (f *fakeYouTube) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resource := strings.TrimPrefix(r.URL.Path, "/youtube/v3/")
	q := r.URL.Query()

	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[resource]++
	f.mu.Unlock()

	if q.Get("key") != testAPIKey {
		writeAPIError(w, http.StatusBadRequest, "keyInvalid", "API key not valid")
		return
	}

	switch resource {
	case "search":
		if !strings.EqualFold(q.Get("q"), "news") {
			writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{
			map[string]any{
				"id":      map[string]any{"kind": "youtube#channel", "channelId": "UCnews"},
				"snippet": map[string]any{"channelId": "UCnews", "title": "News"},
			},
		}})

	case "channels":
		if q.Get("id") != "UCnews" {
			writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{
			map[string]any{
				"id":             "UCnews",
				"contentDetails": map[string]any{"relatedPlaylists": map[string]any{"uploads": "UUnews"}},
			},
		}})

	case "playlistItems":
		if q.Get("playlistId") == "UUbroken" {
			writeAPIError(w, http.StatusInternalServerError, "backendError", "backend error")
			return
		}
		switch q.Get("pageToken") {
		case "":
			writeJSON(w, http.StatusOK, map[string]any{
				"items": []any{
					playlistItem("v1", "First", "2024-01-01T00:00:00Z"),
					playlistItem("v2", "Second", "2024-01-02T00:00:00Z"),
					playlistItem("", "Deleted video", "2024-01-03T00:00:00Z"),
				},
				"nextPageToken": "p2",
			})
		case "p2":
			if q.Get("playlistId") == "UUflaky" {
				writeAPIError(w, http.StatusServiceUnavailable, "backendError", "try later")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": []any{
				playlistItem("v3", "Third", "2024-01-04T00:00:00Z"),
			}})
		}

	case "commentThreads":
		switch q.Get("videoId") {
		case "v1":
			if q.Get("pageToken") == "" {
				writeJSON(w, http.StatusOK, map[string]any{
					"items":         []any{commentThread("c1", "newest", 5), commentThread("c2", "older", 0)},
					"nextPageToken": "c-p2",
				})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": []any{commentThread("c3", "oldest", 1)}})
		case "v2":
			writeAPIError(w, http.StatusForbidden, "commentsDisabled", "comments are disabled")
		case "v3":
			// an error marker inside a successful response
			writeJSON(w, http.StatusOK, map[string]any{"error": map[string]any{
				"code": 404, "message": "video gone",
				"errors": []any{map[string]any{"reason": "videoNotFound"}},
			}})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
		}

	case "videos":
		ids := strings.Split(q.Get("id"), ",")
		f.mu.Lock()
		f.ids = append(f.ids, ids)
		f.mu.Unlock()

		if q.Get("part") != "statistics,contentDetails" {
			writeAPIError(w, http.StatusBadRequest, "invalidPart", "bad part")
			return
		}

		var items []any
		for _, id := range ids {
			switch {
			case id == "missing":
			case id == "v1":
				items = append(items, videoItem(id, "100", "10", "2", "PT45S"))
			case id == "v2":
				items = append(items, map[string]any{
					"id":             id,
					"statistics":     map[string]any{"viewCount": "5000", "commentCount": "7"},
					"contentDetails": map[string]any{"duration": "PT25M"},
				})
			case id == "boom":
				writeAPIError(w, http.StatusInternalServerError, "backendError", "boom")
				return
			default:
				items = append(items, videoItem(id, "1", "0", "0", "PT5M"))
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	default:
		http.NotFound(w, r)
	}
}

func playlistItem(videoID, title, published string) map[string]any {
	resourceID := map[string]any{"kind": "youtube#video"}
	if videoID != "" {
		resourceID["videoId"] = videoID
	}
	return map[string]any{
		"id": "pl-" + title,
		"snippet": map[string]any{
			"title":       title,
			"publishedAt": published,
			"resourceId":  resourceID,
		},
	}
}

func commentThread(id, text string, likes int) map[string]any {
	return map[string]any{
		"id": id,
		"snippet": map[string]any{
			"topLevelComment": map[string]any{
				"id": id,
				"snippet": map[string]any{
					"textDisplay": text,
					"likeCount":   likes,
					"publishedAt": "2024-02-01T00:00:00Z",
				},
			},
		},
	}
}

func videoItem(id, views, likes, comments, duration string) map[string]any {
	return map[string]any{
		"id": id,
		"statistics": map[string]any{
			"viewCount":    views,
			"likeCount":    likes,
			"commentCount": comments,
		},
		"contentDetails": map[string]any{"duration": duration},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, reason, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]any{
		"code":    status,
		"message": message,
		"errors":  []any{map[string]any{"reason": reason, "message": message}},
	}})
}

// newTestAPI starts a fake Data API and returns a YouTubeAPI bound to it.
func newTestAPI(t *testing.T) (*YouTubeAPI, *fakeYouTube, *config.Config) {
	t.Helper()

	fake := &fakeYouTube{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.YouTubeAPIKey = testAPIKey
	cfg.APIBaseURL = srv.URL
	cfg.PauseBetweenPages = 0

	yt, err := NewYouTubeAPI(context.Background(), cfg)
	require.NoError(t, err)
	return yt, fake, cfg
}
