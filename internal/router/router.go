// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/HMT1688/youtube-analyzer/internal/handlers"
	"github.com/HMT1688/youtube-analyzer/internal/middleware"
)

// Setup creates and configures the Gin router with all routes.
func Setup(h *handlers.Handler, rateLimitPerHour int, allowedOrigins []string) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(allowedOrigins))

	rateLimiter := middleware.NewRateLimiter(rateLimitPerHour)

	r.GET("/api/v1/health", h.HealthCheck)

	// Everything else costs quota or subprocesses, so it sits behind the
	// rate limiter.
	limited := r.Group("/api/v1")
	limited.Use(rateLimiter.RateLimit())
	{
		limited.GET("/channels/analyze", h.AnalyzeChannel)
		limited.GET("/videos/:id/captions", h.GetCaptions)
		limited.GET("/videos/:id/download", h.DownloadVideo)
	}

	return r
}
