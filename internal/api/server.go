package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yt-collect/internal/collector"
	"github.com/yt-collect/internal/config"
	"github.com/yt-collect/internal/models"
)

// CollectionStore caches finished collections for the rest of the UTC day.
type CollectionStore interface {
	GetLatestCollection(subjectID string, kind models.CollectionKind) (*models.CachedCollection, error)
	StoreCollection(c *models.CachedCollection) error
}

// Server represents the API server
type Server struct {
	router *gin.Engine
	yt     *YouTubeAPI
	store  CollectionStore
	now    func() time.Time
}

// NewServer creates a new API server. store may be nil, which disables caching.
func NewServer(cfg *config.Config, yt *YouTubeAPI, store CollectionStore) *Server {
	router := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = config.Default().AllowedOrigins
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "Pragma"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server := &Server{
		router: router,
		yt:     yt,
		store:  store,
		now:    time.Now,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// setupRoutes configures all the routes for the server
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// Channel endpoints
	s.router.GET("/channels/:handle/videos", s.getChannelVideos)
	s.router.GET("/channels/:handle/dataset", s.getChannelDataset)

	// Comment endpoints
	s.router.GET("/videos/:id/comments", s.getVideoComments)
	s.router.GET("/comments", s.getComments)

	// Statistics
	s.router.GET("/stats", s.getVideoStats)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// videosResponse is the body of GET /channels/:handle/videos.
type videosResponse struct {
	Videos []models.VideoSummary `json:"videos"`
	Result collector.Result      `json:"result"`
}

// commentsResponse is the body of the comment endpoints.
type commentsResponse struct {
	Comments []models.CommentRecord `json:"comments"`
	Runs     []CommentRun           `json:"runs"`
}

// getChannelVideos handles requests to list a channel's uploads
func (s *Server) getChannelVideos(c *gin.Context) {
	handle := c.Param("handle")

	videos, res, err := s.yt.ChannelVideos(c.Request.Context(), handle, c.Query("label"))
	if err != nil {
		writeError(c, err)
		return
	}
	if videos == nil {
		videos = []models.VideoSummary{}
	}

	c.JSON(http.StatusOK, videosResponse{Videos: videos, Result: res})
}

// getChannelDataset handles requests for a channel's uploads joined with
// their statistics. Datasets are served from the cache when one was
// collected today, unless refresh=true.
func (s *Server) getChannelDataset(c *gin.Context) {
	handle := c.Param("handle")
	label := c.Query("label")
	sortBy := models.ParseSortOption(c.Query("sortBy"))
	refresh, _ := strconv.ParseBool(c.Query("refresh"))

	// The handle and label are echoed in every row, so the key keeps their
	// exact spelling.
	subject := handle + "|" + label

	var dataset models.ChannelDataset
	if !refresh && s.loadCached(subject, models.CollectionKindDataset, &dataset) {
		models.SortRows(dataset.Videos, sortBy)
		c.JSON(http.StatusOK, dataset)
		return
	}

	fresh, err := s.yt.ChannelDataset(c.Request.Context(), handle, label)
	if err != nil {
		writeError(c, err)
		return
	}
	if fresh.Complete {
		s.storeCached(subject, models.CollectionKindDataset, fresh)
	}

	models.SortRows(fresh.Videos, sortBy)
	c.JSON(http.StatusOK, fresh)
}

// getVideoComments handles requests for one video's top-level comments
func (s *Server) getVideoComments(c *gin.Context) {
	videoID := c.Param("id")

	var cached commentsResponse
	if s.loadCached(videoID, models.CollectionKindComments, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	comments, runs := s.yt.CollectComments(c.Request.Context(), []string{videoID})
	resp := newCommentsResponse(comments, runs)
	if len(runs) == 1 && runs[0].Result.Complete() {
		s.storeCached(videoID, models.CollectionKindComments, resp)
	}

	c.JSON(http.StatusOK, resp)
}

// getComments handles requests for the comments of several videos, given as
// ids and/or watch URLs (comma separated).
func (s *Server) getComments(c *gin.Context) {
	ids := splitQuery(c.Query("ids"))
	for _, raw := range splitQuery(c.Query("urls")) {
		id, ok := ExtractVideoID(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "could not extract a video id from " + raw,
			})
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ids or urls query parameter is required",
		})
		return
	}

	comments, runs := s.yt.CollectComments(c.Request.Context(), ids)
	c.JSON(http.StatusOK, newCommentsResponse(comments, runs))
}

// getVideoStats handles batch statistics lookups
func (s *Server) getVideoStats(c *gin.Context) {
	ids := splitQuery(c.Query("ids"))
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "ids query parameter is required",
		})
		return
	}

	stats, err := s.yt.FetchVideoStats(c.Request.Context(), ids)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func newCommentsResponse(comments []models.CommentRecord, runs []CommentRun) commentsResponse {
	if comments == nil {
		comments = []models.CommentRecord{}
	}
	return commentsResponse{Comments: comments, Runs: runs}
}

// loadCached decodes today's cached collection into out. Any miss or failure
// reads as not cached.
func (s *Server) loadCached(subject string, kind models.CollectionKind, out any) bool {
	if s.store == nil {
		return false
	}

	cached, err := s.store.GetLatestCollection(subject, kind)
	if err != nil {
		log.Warn().Err(err).Str("subject_id", subject).Str("kind", string(kind)).Msg("Error fetching cached collection")
		return false
	}
	if cached == nil {
		log.Debug().Str("subject_id", subject).Str("kind", string(kind)).Msg("No cached collection found")
		return false
	}
	if !cached.FreshOn(s.now()) {
		log.Debug().Time("updated", cached.UpdateDate).Msg("Cached collection is from a different day, fetching fresh data")
		return false
	}
	if err := json.Unmarshal(cached.JSONResponse, out); err != nil {
		log.Warn().Err(err).Msg("Failed to unmarshal cached collection")
		return false
	}

	log.Info().Str("subject_id", subject).Str("kind", string(kind)).Msg("Returning cached collection")
	return true
}

func (s *Server) storeCached(subject string, kind models.CollectionKind, v any) {
	if s.store == nil {
		return
	}

	payload, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Error marshaling collection")
		return
	}

	err = s.store.StoreCollection(&models.CachedCollection{
		SubjectID:    subject,
		Kind:         kind,
		UpdateDate:   s.now().UTC(),
		JSONResponse: payload,
	})
	if err != nil {
		log.Error().Err(err).Str("subject_id", subject).Msg("Failed to store collection")
	}
}

// writeError maps collection errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	var (
		fault     *collector.ResourceFault
		transport *collector.TransportError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, ErrChannelNotFound), errors.Is(err, ErrPlaylistNotFound), errors.As(err, &fault):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.As(err, &transport):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}

func splitQuery(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Start starts the server on the specified port
func (s *Server) Start(port string) error {
	log.Info().Str("port", port).Msg("Server starting")
	return s.router.Run(":" + port)
}
