// captions.go handles caption fetch requests for both sources.
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HMT1688/youtube-analyzer/internal/models"
	"github.com/HMT1688/youtube-analyzer/internal/services/captions"
	"github.com/HMT1688/youtube-analyzer/internal/services/media"
	"github.com/HMT1688/youtube-analyzer/internal/services/transcriber"
	"github.com/HMT1688/youtube-analyzer/internal/youtube"
)

// GetCaptions returns a video's captions as SRT text.
// GET /api/v1/videos/:id/captions?source=native|generated
//
// On success the payload carries title and srt_content; on failure it
// carries an error message instead. Never both.
func (h *Handler) GetCaptions(c *gin.Context) {
	videoID := c.Param("id")
	source := captions.Source(c.DefaultQuery("source", "native"))
	if !source.Valid() {
		fail(c, http.StatusBadRequest, "invalid_source", "source must be 'native' or 'generated'")
		return
	}

	result, err := h.Captions.Resolve(c.Request.Context(), videoID, source)
	if err != nil {
		h.failCaptions(c, videoID, err)
		return
	}

	c.JSON(http.StatusOK, models.CaptionResponse{
		VideoID:    videoID,
		Title:      result.Title,
		SRTContent: result.SRT,
	})
}

// failCaptions maps resolver errors to the caption error payload.
func (h *Handler) failCaptions(c *gin.Context, videoID string, err error) {
	var status int
	var msg string

	switch {
	case errors.Is(err, youtube.ErrVideoNotFound):
		status, msg = http.StatusNotFound, "Video not found"
	case errors.Is(err, captions.ErrNoCaptions):
		status, msg = http.StatusNotFound, "No captions are available for this video"
	case errors.Is(err, media.ErrSourceUnavailable):
		status, msg = http.StatusBadGateway, "Could not fetch the audio stream for this video"
	case errors.Is(err, transcriber.ErrNotConfigured):
		status, msg = http.StatusServiceUnavailable, "Caption generation is not configured on this server"
	case errors.Is(err, transcriber.ErrTranscription):
		status, msg = http.StatusBadGateway, "Transcription failed. Try again later."
	case errors.Is(err, captions.ErrInvalidSegments):
		status, msg = http.StatusInternalServerError, "Caption generation produced an unusable transcript"
	case errors.Is(err, youtube.ErrQuotaExceeded):
		status, msg = http.StatusTooManyRequests, "YouTube API quota exhausted. Try again later."
	case errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusGatewayTimeout, "Caption generation timed out"
	default:
		log.Printf("❌ Caption fetch failed for %s: %v", videoID, err)
		status, msg = http.StatusInternalServerError, "Failed to fetch captions"
	}

	c.JSON(status, models.CaptionResponse{VideoID: videoID, Error: msg})
}
