// Package config handles application configuration.
//
// Go Pattern: Configuration via environment variables with sensible
// defaults. A struct holds the values and a Load function reads them —
// explicit, no framework magic.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    string
	GinMode string // "debug", "release", or "test"

	// YouTube Data API
	YouTubeAPIKey string
	MaxVideos     int // Upper bound on videos fetched per channel

	// Optional Postgres snapshot cache. Empty = run uncached.
	DatabaseURL  string
	CacheTTL     time.Duration

	// External tools
	YtDlpPath  string // Path to yt-dlp binary
	FFmpegPath string // Path to ffmpeg binary

	// OpenAI settings (Whisper caption generation)
	OpenAIAPIKey string

	// Download pipeline
	MaxConcurrentTranscodes int64
	DownloadTimeout         time.Duration

	// Rate limiting
	RateLimitPerHour int // Requests per hour per client IP

	// CORS
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// YouTube Data API — required, the whole service reads from it
		YouTubeAPIKey: getEnv("YOUTUBE_API_KEY", ""),
		MaxVideos:     getEnvInt("MAX_VIDEOS", 200),

		// Snapshot cache — optional, for repeated analyses of the same channel
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CacheTTL:    time.Duration(getEnvInt("CACHE_TTL_MINUTES", 30)) * time.Minute,

		// External tools — try common locations
		YtDlpPath:  getEnv("YT_DLP_PATH", findBinary("yt-dlp")),
		FFmpegPath: getEnv("FFMPEG_PATH", findBinary("ffmpeg")),

		// OpenAI (Whisper API for generated captions)
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		// Download pipeline defaults
		MaxConcurrentTranscodes: int64(getEnvInt("MAX_CONCURRENT_TRANSCODES", 2)),
		DownloadTimeout:         time.Duration(getEnvInt("DOWNLOAD_TIMEOUT_MINUTES", 10)) * time.Minute,

		// Rate limiting
		RateLimitPerHour: getEnvInt("RATE_LIMIT_PER_HOUR", 120),

		// CORS — in production, set this to your frontend URL
		AllowedOrigins: []string{
			getEnv("CORS_ORIGIN", "http://localhost:5173"),
		},
	}

	// Validate required configuration
	if cfg.YouTubeAPIKey == "" {
		return nil, fmt.Errorf("YOUTUBE_API_KEY environment variable is required")
	}
	if cfg.YtDlpPath == "" {
		return nil, fmt.Errorf("yt-dlp not found; set YT_DLP_PATH environment variable")
	}
	if cfg.FFmpegPath == "" {
		return nil, fmt.Errorf("ffmpeg not found; set FFMPEG_PATH environment variable")
	}
	if cfg.MaxVideos <= 0 {
		return nil, fmt.Errorf("MAX_VIDEOS must be positive (got %d)", cfg.MaxVideos)
	}

	return cfg, nil
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt reads an integer environment variable with a fallback.
func getEnvInt(key string, fallback int) int {
	str := getEnv(key, "")
	if str == "" {
		return fallback
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return fallback
	}
	return val
}

// findBinary checks PATH and common install locations for an executable.
func findBinary(name string) string {
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	paths := []string{
		"/usr/local/bin/" + name,
		"/usr/bin/" + name,
		"/opt/homebrew/bin/" + name,
		"/home/linuxbrew/.linuxbrew/bin/" + name,
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
