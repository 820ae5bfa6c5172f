// analyze.go handles channel analysis requests.
package handlers

import (
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HMT1688/youtube-analyzer/internal/database"
	"github.com/HMT1688/youtube-analyzer/internal/models"
	"github.com/HMT1688/youtube-analyzer/internal/services/analytics"
	"github.com/HMT1688/youtube-analyzer/internal/youtube"
)

// videosPerPage is the page size of the videos grid.
const videosPerPage = 16

// validSortKeys are the accepted sort_by values. All sorts are descending.
var validSortKeys = map[string]bool{
	"published": true,
	"views":     true,
	"likes":     true,
	"comments":  true,
}

// AnalyzeChannel fetches a channel's videos and computes derived metrics.
// GET /api/v1/channels/analyze?url=...&sort_by=published&page=1
func (h *Handler) AnalyzeChannel(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		fail(c, http.StatusBadRequest, "missing_url", "Query parameter 'url' is required")
		return
	}

	sortBy := c.DefaultQuery("sort_by", "published")
	if !validSortKeys[sortBy] {
		fail(c, http.StatusBadRequest, "invalid_sort", "sort_by must be one of: published, views, likes, comments")
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	ctx := c.Request.Context()

	channelID, err := h.Store.ResolveChannelID(ctx, rawURL)
	if err != nil {
		h.failStore(c, err)
		return
	}

	summary, videos, err := h.loadChannelData(c, channelID)
	if err != nil {
		h.failStore(c, err)
		return
	}

	// Analytics are recomputed on every request. A channel with zero
	// videos is a valid empty state, not an error.
	analysis, err := analytics.Aggregate(summary.CreatedAt, videos)
	if err != nil && !errors.Is(err, analytics.ErrEmptyDataset) {
		fail(c, http.StatusInternalServerError, "analytics_failed", "Failed to compute channel analytics")
		return
	}

	sorted := sortVideos(videos, sortBy)
	pageVideos, totalPages, page := paginate(sorted, page)

	c.JSON(http.StatusOK, models.AnalyzeResponse{
		Stats:      *summary,
		Analysis:   analysis,
		Videos:     pageVideos,
		SortBy:     sortBy,
		Page:       page,
		TotalPages: totalPages,
	})
}

// loadChannelData returns the channel summary and video records, serving
// from the snapshot cache when it is fresh enough. Cache failures degrade
// to a live fetch; they never fail the request.
func (h *Handler) loadChannelData(c *gin.Context, channelID string) (*models.ChannelSummary, []models.VideoRecord, error) {
	ctx := c.Request.Context()

	if h.Cache != nil {
		snap, err := h.Cache.GetSnapshot(ctx, channelID)
		switch {
		case err == nil && time.Since(snap.FetchedAt) < h.CacheTTL:
			return &snap.Summary, snap.Videos, nil
		case err != nil && !errors.Is(err, database.ErrSnapshotNotFound):
			log.Printf("⚠️ Snapshot read failed for %s: %v", channelID, err)
		}
	}

	summary, err := h.Store.Channel(ctx, channelID)
	if err != nil {
		return nil, nil, err
	}
	videos, err := h.Store.Videos(ctx, channelID, h.MaxVideos)
	if err != nil {
		return nil, nil, err
	}

	if h.Cache != nil {
		snap := &database.Snapshot{
			ChannelID: channelID,
			Summary:   *summary,
			Videos:    videos,
			FetchedAt: time.Now(),
		}
		if err := h.Cache.SaveSnapshot(ctx, snap); err != nil {
			log.Printf("⚠️ Snapshot save failed for %s: %v", channelID, err)
		}
	}

	return summary, videos, nil
}

// failStore maps store errors to HTTP responses.
func (h *Handler) failStore(c *gin.Context, err error) {
	switch {
	case errors.Is(err, youtube.ErrInvalidChannelURL):
		fail(c, http.StatusBadRequest, "invalid_channel_url", "Could not recognize a channel in that URL")
	case errors.Is(err, youtube.ErrChannelNotFound):
		fail(c, http.StatusNotFound, "channel_not_found", "No channel exists at that URL")
	case errors.Is(err, youtube.ErrQuotaExceeded):
		fail(c, http.StatusTooManyRequests, "quota_exceeded", "YouTube API quota exhausted. Try again later.")
	default:
		log.Printf("❌ Channel fetch failed: %v", err)
		fail(c, http.StatusBadGateway, "store_unavailable", "Failed to fetch channel data")
	}
}

// sortVideos returns a sorted copy; the caller's slice (possibly a shared
// cache snapshot) is never mutated. Ties keep the store's recency order.
func sortVideos(videos []models.VideoRecord, sortBy string) []models.VideoRecord {
	sorted := make([]models.VideoRecord, len(videos))
	copy(sorted, videos)

	sort.SliceStable(sorted, func(i, j int) bool {
		switch sortBy {
		case "views":
			return sorted[i].Views > sorted[j].Views
		case "likes":
			return sorted[i].Likes > sorted[j].Likes
		case "comments":
			return sorted[i].Comments > sorted[j].Comments
		default:
			return sorted[i].Published.After(sorted[j].Published)
		}
	})
	return sorted
}

// paginate slices one page out of the sorted list. Out-of-range pages
// clamp to the last page; an empty list is a single empty page.
func paginate(videos []models.VideoRecord, page int) ([]models.VideoRecord, int, int) {
	totalPages := (len(videos) + videosPerPage - 1) / videosPerPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * videosPerPage
	end := start + videosPerPage
	if start > len(videos) {
		start = len(videos)
	}
	if end > len(videos) {
		end = len(videos)
	}
	return videos[start:end], totalPages, page
}
