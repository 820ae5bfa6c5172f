// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// There is no ORM here — the youtube package fills these in from the Data
// API and the database package persists snapshots of them. JSON tags
// control the wire shape consumed by the frontend.
package models

import "time"

// VideoRecord holds the metadata for a single uploaded video.
// Immutable once fetched — the aggregator and handlers only ever read it.
type VideoRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Thumbnail string    `json:"thumb"`
	Views     int64     `json:"views"`
	Likes     int64     `json:"likes"`
	Comments  int64     `json:"comments"`
	Duration  int64     `json:"duration_sec"` // seconds
	Published time.Time `json:"published"`
}

// ChannelSummary is the pass-through channel header data.
// Counts are rendered as-is; the core never alters them.
type ChannelSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ProfileImage string    `json:"profile_image"`
	Subscribers  int64     `json:"subscribers"`
	TotalViews   int64     `json:"total_views"`
	VideoCount   int64     `json:"video_count"`
	CreatedAt    time.Time `json:"created_date"`
}

// TopVideo is one entry of the top-5 ranking — just enough for the
// summary panel (the full record lives in the videos grid).
type TopVideo struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Views int64  `json:"views"`
}

// AnalyticsResult holds the derived channel metrics.
// Recomputed fresh per request; never persisted.
type AnalyticsResult struct {
	UploadsPerWeek       float64    `json:"uploads_per_week"`
	AvgDuration          string     `json:"avg_duration"` // H:MM:SS
	LikesPer1000Views    float64    `json:"likes_per_1000_views"`
	CommentsPer1000Views float64    `json:"comments_per_1000_views"`
	TopVideos            []TopVideo `json:"top_5_videos"`
}

// TranscriptSegment is one timed text span produced by the caption
// generator. Segments are ordered, non-overlapping, and End > Start.
type TranscriptSegment struct {
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
	Text  string  `json:"text"`
}

// --- Request/Response DTOs ---
// Go Pattern: Separate structs for API output vs domain types. This keeps
// the API contract independent of internal representations.

// AnalyzeResponse is the summary data feed for one channel.
type AnalyzeResponse struct {
	Stats      ChannelSummary   `json:"stats"`
	Analysis   *AnalyticsResult `json:"analysis"` // nil = channel has no videos
	Videos     []VideoRecord    `json:"videos"`
	SortBy     string           `json:"sort_by"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
}

// CaptionResponse is the caption fetch payload. Exactly one of SRTContent
// or Error is populated — the frontend relies on that.
type CaptionResponse struct {
	VideoID    string `json:"video_id"`
	Title      string `json:"title,omitempty"`
	SRTContent string `json:"srt_content,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	YtDlp    string `json:"yt_dlp"`
	FFmpeg   string `json:"ffmpeg"`
}
