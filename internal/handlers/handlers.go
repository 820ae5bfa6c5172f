// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers are grouped on a struct holding shared
// dependencies, injected at startup. The dependencies are interfaces
// defined here, where they are used — tests swap in fakes without
// touching gin.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HMT1688/youtube-analyzer/internal/database"
	"github.com/HMT1688/youtube-analyzer/internal/models"
	"github.com/HMT1688/youtube-analyzer/internal/services/captions"
	"github.com/HMT1688/youtube-analyzer/internal/services/media"
)

// ChannelStore is the read interface over the video record store.
type ChannelStore interface {
	ResolveChannelID(ctx context.Context, rawURL string) (string, error)
	Channel(ctx context.Context, channelID string) (*models.ChannelSummary, error)
	Videos(ctx context.Context, channelID string, max int) ([]models.VideoRecord, error)
	Video(ctx context.Context, videoID string) (*models.VideoRecord, error)
}

// CaptionResolver resolves captions for one video from one source.
type CaptionResolver interface {
	Resolve(ctx context.Context, videoID string, source captions.Source) (*captions.Result, error)
}

// DownloadPreparer prepares a transcoded file for one video.
type DownloadPreparer interface {
	PrepareDownload(ctx context.Context, videoID string) (*media.Job, error)
}

// SnapshotCache is the optional channel snapshot store. *database.DB
// satisfies it; a nil cache means every analyze request refetches.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, channelID string) (*database.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap *database.Snapshot) error
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	Store     ChannelStore
	Cache     SnapshotCache // nil when running without a snapshot cache
	Captions  CaptionResolver
	Downloads DownloadPreparer

	Version   string
	MaxVideos int
	CacheTTL  time.Duration
}

// NewHandler creates a new handler with all dependencies.
// cache may be nil; the analyze handler then skips the snapshot cache.
func NewHandler(store ChannelStore, cache SnapshotCache, cr CaptionResolver, dp DownloadPreparer, version string, maxVideos int, cacheTTL time.Duration) *Handler {
	return &Handler{
		Store:     store,
		Cache:     cache,
		Captions:  cr,
		Downloads: dp,
		Version:   version,
		MaxVideos: maxVideos,
		CacheTTL:  cacheTTL,
	}
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	dbStatus := "disabled"
	if h.Cache != nil {
		dbStatus = "healthy"
		if err := h.Cache.HealthCheck(c.Request.Context()); err != nil {
			dbStatus = "unhealthy: " + err.Error()
		}
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   "ok",
		Version:  h.Version,
		Database: dbStatus,
		YtDlp:    "configured",
		FFmpeg:   "configured",
	})
}

// fail writes the uniform JSON error shape.
func fail(c *gin.Context, status int, kind, message string) {
	c.JSON(status, models.ErrorResponse{
		Error:   kind,
		Message: message,
		Code:    status,
	})
}
