// Package analytics derives channel-level statistics from raw video records.
//
// Everything in here is pure computation: no I/O, no clocks hidden in the
// middle of a formula, no mutation of the caller's slice. Calling Aggregate
// twice with the same input yields the same output.
package analytics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/HMT1688/youtube-analyzer/internal/models"
)

// ErrEmptyDataset is returned when aggregation is attempted on a channel
// with no videos. Callers render an empty state instead of dividing by zero.
var ErrEmptyDataset = errors.New("analytics: no videos to aggregate")

// topVideoCount is the size of the ranking in the summary panel.
const topVideoCount = 5

// Aggregate computes the summary metrics for a channel's upload history.
func Aggregate(channelCreatedAt time.Time, videos []models.VideoRecord) (*models.AnalyticsResult, error) {
	return aggregateAt(channelCreatedAt, videos, time.Now())
}

// aggregateAt is Aggregate with an explicit clock so tests can pin "now".
func aggregateAt(channelCreatedAt time.Time, videos []models.VideoRecord, now time.Time) (*models.AnalyticsResult, error) {
	if len(videos) == 0 {
		return nil, ErrEmptyDataset
	}

	var totalDuration, totalViews, totalLikes, totalComments int64
	for _, v := range videos {
		totalDuration += v.Duration
		totalViews += v.Views
		totalLikes += v.Likes
		totalComments += v.Comments
	}

	// Upload rate over the channel's lifetime. Clamping the divisor to one
	// week keeps brand-new channels from reporting unbounded rates.
	weeks := now.Sub(channelCreatedAt).Hours() / (24 * 7)
	if weeks < 1 {
		weeks = 1
	}
	uploadsPerWeek := float64(len(videos)) / weeks

	// Engagement per 1000 views. Zero total views is defined as zero
	// engagement, not NaN.
	var likesPer1000, commentsPer1000 float64
	if totalViews > 0 {
		likesPer1000 = 1000 * float64(totalLikes) / float64(totalViews)
		commentsPer1000 = 1000 * float64(totalComments) / float64(totalViews)
	}

	avgSeconds := totalDuration / int64(len(videos))

	return &models.AnalyticsResult{
		UploadsPerWeek:       uploadsPerWeek,
		AvgDuration:          FormatDuration(avgSeconds),
		LikesPer1000Views:    likesPer1000,
		CommentsPer1000Views: commentsPer1000,
		TopVideos:            topVideos(videos),
	}, nil
}

// topVideos ranks by descending view count. Ties go to the earlier publish
// timestamp (older content holding equal views reflects sustained
// popularity), then to the lexicographically smaller ID so the ordering is
// reproducible no matter what order the store returned the records in.
func topVideos(videos []models.VideoRecord) []models.TopVideo {
	ranked := make([]models.VideoRecord, len(videos))
	copy(ranked, videos)

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		if !a.Published.Equal(b.Published) {
			return a.Published.Before(b.Published)
		}
		return a.ID < b.ID
	})

	n := topVideoCount
	if len(ranked) < n {
		n = len(ranked)
	}

	top := make([]models.TopVideo, 0, n)
	for _, v := range ranked[:n] {
		top = append(top, models.TopVideo{
			ID:    v.ID,
			URL:   v.URL,
			Title: v.Title,
			Views: v.Views,
		})
	}
	return top
}

// FormatDuration renders seconds as H:MM:SS. The hour field is not
// zero-padded; minutes and seconds always are. Seconds are preserved
// exactly — never rounded to the nearest minute.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
