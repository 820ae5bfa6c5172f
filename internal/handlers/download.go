// download.go handles video download requests.
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/HMT1688/youtube-analyzer/internal/services/media"
	"github.com/HMT1688/youtube-analyzer/internal/youtube"
)

// DownloadVideo streams a video back as a standalone MP4 attachment.
// GET /api/v1/videos/:id/download
//
// The transcoded file lives in a per-request temp directory that is
// removed as soon as the response finishes, success or failure.
func (h *Handler) DownloadVideo(c *gin.Context) {
	videoID := c.Param("id")

	record, err := h.Store.Video(c.Request.Context(), videoID)
	if err != nil {
		if errors.Is(err, youtube.ErrVideoNotFound) {
			fail(c, http.StatusNotFound, "video_not_found", "Video not found")
			return
		}
		h.failStore(c, err)
		return
	}

	job, err := h.Downloads.PrepareDownload(c.Request.Context(), videoID)
	if err != nil {
		h.failDownload(c, videoID, err)
		return
	}
	defer job.Close()

	c.FileAttachment(job.Path, sanitizeFilename(record.Title, videoID)+".mp4")
}

// failDownload maps pipeline errors to HTTP responses.
func (h *Handler) failDownload(c *gin.Context, videoID string, err error) {
	switch {
	case errors.Is(err, media.ErrSourceUnavailable):
		fail(c, http.StatusBadGateway, "source_unavailable", "Could not fetch the video stream")
	case errors.Is(err, media.ErrTimeout):
		fail(c, http.StatusGatewayTimeout, "download_timeout", "Download preparation timed out")
	case errors.Is(err, media.ErrTranscode):
		fail(c, http.StatusBadGateway, "transcode_failed", "Failed to produce a playable MP4")
	default:
		log.Printf("❌ Download failed for %s: %v", videoID, err)
		fail(c, http.StatusInternalServerError, "download_failed", "Failed to prepare the download")
	}
}

// sanitizeFilename makes a video title safe for a Content-Disposition
// filename. Falls back to the video ID if nothing survives.
func sanitizeFilename(title, fallback string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, title)

	safe = strings.Trim(safe, " ._")
	if safe == "" {
		return fallback
	}
	if len(safe) > 120 {
		safe = safe[:120]
	}
	return safe
}
