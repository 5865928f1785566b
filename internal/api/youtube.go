package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yt-collect/internal/collector"
	"github.com/yt-collect/internal/config"
	"github.com/yt-collect/internal/models"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	youtubeAPIPath = "/youtube/v3"

	playlistPageSize = 50
	commentPageSize  = 100
)

var (
	ErrChannelNotFound  = errors.New("channel not found")
	ErrPlaylistNotFound = errors.New("uploads playlist not found")
	ErrInvalidRequest   = errors.New("invalid request")
)

// YouTubeClient handles direct HTTP requests to the YouTube Data API
type YouTubeClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// ClientOption customizes a YouTubeClient.
type ClientOption func(*YouTubeClient)

// WithBaseURL points the client at another API host, e.g. a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *YouTubeClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *YouTubeClient) {
		c.client = hc
	}
}

// NewYouTubeClient creates a new YouTube client
func NewYouTubeClient(apiKey string, opts ...ClientOption) (*YouTubeClient, error) {
	if apiKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	c := &YouTubeClient{
		apiKey:  apiKey,
		baseURL: config.DefaultAPIBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// errorEnvelope picks the "error" object out of any Data API response.
type errorEnvelope struct {
	Error *models.APIErrorBody `json:"error"`
}

// getJSON issues a GET against resource and decodes the response into out.
func (c *YouTubeClient) getJSON(ctx context.Context, resource string, params url.Values, out any) error {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("key", c.apiKey)

	reqURL := fmt.Sprintf("%s%s/%s?%s", c.baseURL, youtubeAPIPath, resource, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &collector.TransportError{Err: c.redact(err)}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &collector.TransportError{Err: c.redact(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &collector.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, envelope.Error)
	}
	if envelope.Error != nil {
		return &collector.ResourceFault{
			Code:    envelope.Error.Code,
			Reason:  envelope.Error.Reason(),
			Message: envelope.Error.Message,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &collector.TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode %s response: %w", resource, err)}
	}
	return nil
}

// statusError classifies a non-success response. Faults scoped to the
// requested resource are absorbed by listings, everything else is transport.
func statusError(status int, body *models.APIErrorBody) error {
	reason := body.Reason()
	message := http.StatusText(status)
	if body != nil && body.Message != "" {
		message = body.Message
	}

	if collector.IsResourceReason(reason) {
		return &collector.ResourceFault{Code: status, Reason: reason, Message: message}
	}
	return &collector.TransportError{StatusCode: status, Reason: reason, Message: message}
}

// redact strips the API key from URLs embedded in transport errors.
func (c *YouTubeClient) redact(err error) error {
	return redactKey(err, c.apiKey)
}

func redactKey(err error, key string) error {
	var urlErr *url.Error
	if key != "" && errors.As(err, &urlErr) {
		urlErr.URL = strings.ReplaceAll(urlErr.URL, url.QueryEscape(key), "REDACTED")
		urlErr.URL = strings.ReplaceAll(urlErr.URL, key, "REDACTED")
	}
	return err
}

// listResponse is the shape shared by every paginated list endpoint.
type listResponse[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// pageFetcher adapts a list endpoint to the collector's PageFetcher.
func pageFetcher[T any](c *YouTubeClient, resource string, params url.Values) collector.PageFetcher[T] {
	return func(ctx context.Context, pageToken string) (collector.Page[T], error) {
		query := url.Values{}
		for k, v := range params {
			query[k] = v
		}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var resp listResponse[T]
		if err := c.getJSON(ctx, resource, query, &resp); err != nil {
			return collector.Page[T]{}, err
		}
		return collector.Page[T]{Items: resp.Items, NextPageToken: resp.NextPageToken}, nil
	}
}

// YouTubeAPI collects channel uploads, comments and statistics.
type YouTubeAPI struct {
	service    *youtube.Service
	client     *YouTubeClient
	paginator  *collector.Paginator
	classifier collector.Classifier
	batchSize  int
	timeout    time.Duration
}

// NewYouTubeAPI builds the typed Data API service used for lookups and the
// raw client used for listings, both bound to cfg.
func NewYouTubeAPI(ctx context.Context, cfg *config.Config, opts ...ClientOption) (*YouTubeAPI, error) {
	if cfg == nil || cfg.YouTubeAPIKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = config.DefaultAPIBaseURL
	}

	service, err := youtube.NewService(ctx,
		option.WithAPIKey(cfg.YouTubeAPIKey),
		option.WithEndpoint(strings.TrimRight(baseURL, "/")+"/"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	clientOpts := append([]ClientOption{
		WithBaseURL(baseURL),
		WithHTTPClient(&http.Client{Timeout: timeout}),
	}, opts...)
	client, err := NewYouTubeClient(cfg.YouTubeAPIKey, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &YouTubeAPI{
		service:   service,
		client:    client,
		paginator: collector.NewPaginator(cfg.PauseBetweenPages),
		classifier: collector.Classifier{
			ShortThreshold:  cfg.ShortThresholdSec,
			StreamThreshold: cfg.StreamThresholdSec,
		},
		batchSize: cfg.BatchSize,
		timeout:   timeout,
	}, nil
}

// SetMaxPages caps the pages read per listing. Zero removes the cap.
func (y *YouTubeAPI) SetMaxPages(n int) {
	y.paginator.MaxPages = n
}

// ResolveChannelID looks up the channel ID for a handle such as "@name".
func (y *YouTubeAPI) ResolveChannelID(ctx context.Context, handle string) (string, error) {
	query := strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if query == "" {
		return "", fmt.Errorf("%w: empty channel handle", ErrInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	resp, err := y.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", y.apiError(err)
	}

	for _, item := range resp.Items {
		if item.Id != nil && item.Id.ChannelId != "" {
			return item.Id.ChannelId, nil
		}
		if item.Snippet != nil && item.Snippet.ChannelId != "" {
			return item.Snippet.ChannelId, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrChannelNotFound, handle)
}

// UploadsPlaylistID returns the system playlist listing every upload of the channel.
func (y *YouTubeAPI) UploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	resp, err := y.service.Channels.List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return "", y.apiError(err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}

	details := resp.Items[0].ContentDetails
	if details == nil || details.RelatedPlaylists == nil || details.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("%w: channel %s", ErrPlaylistNotFound, channelID)
	}
	return details.RelatedPlaylists.Uploads, nil
}

// apiError maps a typed client error onto the collector's error types.
func (y *YouTubeAPI) apiError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &collector.TransportError{Err: redactKey(err, y.client.apiKey)}
	}

	var reason string
	if len(gerr.Errors) > 0 {
		reason = gerr.Errors[0].Reason
	}
	if collector.IsResourceReason(reason) {
		return &collector.ResourceFault{Code: gerr.Code, Reason: reason, Message: gerr.Message}
	}
	return &collector.TransportError{StatusCode: gerr.Code, Reason: reason, Message: gerr.Message}
}

// ListUploads walks an uploads playlist. A failing page ends the walk and
// the summaries read so far are returned.
func (y *YouTubeAPI) ListUploads(ctx context.Context, playlistID, label, handle string) ([]models.VideoSummary, collector.Result) {
	params := url.Values{
		"part":       {"snippet"},
		"playlistId": {playlistID},
		"maxResults": {fmt.Sprint(playlistPageSize)},
	}

	videos, res := collector.Collect(ctx, y.paginator,
		pageFetcher[models.PlaylistItem](y.client, "playlistItems", params),
		collector.PlaylistItemSummary(label, handle),
	)
	log.Info().
		Str("playlist_id", playlistID).
		Str("run_id", res.RunID).
		Int("videos", len(videos)).
		Str("stop", string(res.Stop)).
		Msg("Listed uploads")
	return videos, res
}

// ChannelVideos resolves the handle and lists every upload of the channel.
// label defaults to the handle.
func (y *YouTubeAPI) ChannelVideos(ctx context.Context, handle, label string) ([]models.VideoSummary, collector.Result, error) {
	_, playlistID, err := y.resolveUploads(ctx, handle)
	if err != nil {
		return nil, collector.Result{}, err
	}
	if label == "" {
		label = handle
	}

	videos, res := y.ListUploads(ctx, playlistID, label, handle)
	return videos, res, nil
}

func (y *YouTubeAPI) resolveUploads(ctx context.Context, handle string) (channelID, playlistID string, err error) {
	channelID, err = y.ResolveChannelID(ctx, handle)
	if err != nil {
		return "", "", err
	}
	playlistID, err = y.UploadsPlaylistID(ctx, channelID)
	if err != nil {
		return "", "", err
	}
	return channelID, playlistID, nil
}

// ListComments collects the top-level comments of a video, newest first.
// Disabled comments or a removed video end the walk without an error.
func (y *YouTubeAPI) ListComments(ctx context.Context, videoID string) ([]models.CommentRecord, collector.Result) {
	params := url.Values{
		"part":       {"snippet"},
		"videoId":    {videoID},
		"maxResults": {fmt.Sprint(commentPageSize)},
		"order":      {"time"},
		"textFormat": {"plainText"},
	}

	comments, res := collector.Collect(ctx, y.paginator,
		pageFetcher[models.CommentThread](y.client, "commentThreads", params),
		collector.CommentThreadRecord(videoID),
	)

	event := log.Info()
	if res.Stop == collector.StopResourceFault {
		event = log.Warn().Err(res.Err)
	}
	event.Str("video_id", videoID).
		Str("run_id", res.RunID).
		Int("comments", len(comments)).
		Str("stop", string(res.Stop)).
		Msg("Listed comments")
	return comments, res
}

// CommentRun is the outcome of one video's comment walk.
type CommentRun struct {
	VideoID  string           `json:"video_id"`
	Comments int              `json:"comments"`
	Result   collector.Result `json:"result"`
}

// CollectComments walks the comments of each video in turn. A fault on one
// video never stops the others.
func (y *YouTubeAPI) CollectComments(ctx context.Context, videoIDs []string) ([]models.CommentRecord, []CommentRun) {
	var all []models.CommentRecord
	runs := make([]CommentRun, 0, len(videoIDs))

	for _, id := range videoIDs {
		if ctx.Err() != nil {
			break
		}
		comments, res := y.ListComments(ctx, id)
		all = append(all, comments...)
		runs = append(runs, CommentRun{VideoID: id, Comments: len(comments), Result: res})
	}
	return all, runs
}

// FetchVideoStatsBatch looks up one batch of at most 50 ids. Any failure is
// returned to the caller; ids the API does not return are left out.
func (y *YouTubeAPI) FetchVideoStatsBatch(ctx context.Context, ids []string) (map[string]models.VideoStats, error) {
	if len(ids) == 0 {
		return map[string]models.VideoStats{}, nil
	}
	if len(ids) > collector.DefaultBatchSize {
		return nil, fmt.Errorf("%w: %d ids in one batch, at most %d allowed", ErrInvalidRequest, len(ids), collector.DefaultBatchSize)
	}

	params := url.Values{
		"part": {"statistics,contentDetails"},
		"id":   {strings.Join(ids, ",")},
	}

	var resp listResponse[models.VideoItem]
	if err := y.client.getJSON(ctx, "videos", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch video statistics: %w", err)
	}
	return collector.NormalizeVideoStats(resp.Items, y.classifier), nil
}

// FetchVideoStats looks up any number of ids in sequential batches and merges
// the results. The first failing batch aborts the call.
func (y *YouTubeAPI) FetchVideoStats(ctx context.Context, ids []string) (map[string]models.VideoStats, error) {
	stats := make(map[string]models.VideoStats, len(ids))

	batch := 0
	for chunk := range collector.Chunk(ids, y.batchSize) {
		batch++
		part, err := y.FetchVideoStatsBatch(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", batch, err)
		}
		for id, s := range part {
			stats[id] = s
		}
		log.Debug().Int("batch", batch).Int("returned", len(part)).Int("total", len(stats)).Msg("Fetched video statistics")
	}
	return stats, nil
}

// ChannelDataset collects a channel's uploads and joins them with their
// statistics, in playlist order.
func (y *YouTubeAPI) ChannelDataset(ctx context.Context, handle, label string) (*models.ChannelDataset, error) {
	channelID, playlistID, err := y.resolveUploads(ctx, handle)
	if err != nil {
		return nil, err
	}
	if label == "" {
		label = handle
	}

	videos, res := y.ListUploads(ctx, playlistID, label, handle)

	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.VideoID)
	}
	stats, err := y.FetchVideoStats(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]models.VideoRow, 0, len(videos))
	for _, v := range videos {
		row := models.VideoRow{VideoSummary: v}
		if s, ok := stats[v.VideoID]; ok {
			row.VideoStats = &s
		}
		rows = append(rows, row)
	}

	return &models.ChannelDataset{
		ChannelHandle:     handle,
		ChannelLabel:      label,
		ChannelID:         channelID,
		UploadsPlaylistID: playlistID,
		Videos:            rows,
		Summary:           models.Summarize(rows),
		Complete:          res.Complete(),
		Timestamp:         time.Now().UTC(),
	}, nil
}
