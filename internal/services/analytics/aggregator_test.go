// aggregator_test.go — unit tests for the channel analytics aggregator.
//
// Go Pattern: Table-driven tests with t.Run sub-tests, the standard Go
// testing style. The clock is pinned via aggregateAt so rate math is exact.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/HMT1688/youtube-analyzer/internal/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// vid builds a minimal video record for aggregation tests.
func vid(id string, views, likes, comments, duration int64, published time.Time) models.VideoRecord {
	return models.VideoRecord{
		ID:        id,
		Title:     "video " + id,
		URL:       "https://youtu.be/" + id,
		Views:     views,
		Likes:     likes,
		Comments:  comments,
		Duration:  duration,
		Published: published,
	}
}

func TestAggregateEmptyDataset(t *testing.T) {
	_, err := aggregateAt(testNow.AddDate(-1, 0, 0), nil, testNow)
	if !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("aggregateAt(empty) error = %v, want ErrEmptyDataset", err)
	}
}

func TestAggregateUploadsPerWeek(t *testing.T) {
	tests := []struct {
		name      string
		createdAt time.Time
		count     int
		want      float64
	}{
		{
			// 10 uploads on a channel created exactly two weeks ago.
			name:      "two weeks ten uploads",
			createdAt: testNow.Add(-14 * 24 * time.Hour),
			count:     10,
			want:      5.0,
		},
		{
			// Channels younger than a week are clamped to one week.
			name:      "brand new channel",
			createdAt: testNow.Add(-24 * time.Hour),
			count:     3,
			want:      3.0,
		},
		{
			name:      "four weeks two uploads",
			createdAt: testNow.Add(-28 * 24 * time.Hour),
			count:     2,
			want:      0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			videos := make([]models.VideoRecord, 0, tt.count)
			for i := 0; i < tt.count; i++ {
				videos = append(videos, vid(fmt.Sprintf("v%02d", i), 100, 1, 1, 60, tt.createdAt))
			}

			got, err := aggregateAt(tt.createdAt, videos, testNow)
			if err != nil {
				t.Fatalf("aggregateAt() error = %v", err)
			}
			if math.Abs(got.UploadsPerWeek-tt.want) > 1e-9 {
				t.Errorf("UploadsPerWeek = %v, want %v", got.UploadsPerWeek, tt.want)
			}
		})
	}
}

func TestAggregateEngagementRatios(t *testing.T) {
	published := testNow.AddDate(0, -6, 0)

	// views [100, 50, 50, 200], likes [1,1,1,1] => 1000*4/400 = 10.0
	videos := []models.VideoRecord{
		vid("a", 100, 1, 2, 60, published),
		vid("b", 50, 1, 2, 60, published),
		vid("c", 50, 1, 2, 60, published),
		vid("d", 200, 1, 2, 60, published),
	}

	got, err := aggregateAt(testNow.AddDate(-1, 0, 0), videos, testNow)
	if err != nil {
		t.Fatalf("aggregateAt() error = %v", err)
	}
	if math.Abs(got.LikesPer1000Views-10.0) > 1e-9 {
		t.Errorf("LikesPer1000Views = %v, want 10.0", got.LikesPer1000Views)
	}
	if math.Abs(got.CommentsPer1000Views-20.0) > 1e-9 {
		t.Errorf("CommentsPer1000Views = %v, want 20.0", got.CommentsPer1000Views)
	}
}

func TestAggregateZeroViews(t *testing.T) {
	published := testNow.AddDate(0, -1, 0)
	videos := []models.VideoRecord{
		vid("a", 0, 5, 3, 60, published),
		vid("b", 0, 2, 1, 60, published),
	}

	got, err := aggregateAt(testNow.AddDate(-1, 0, 0), videos, testNow)
	if err != nil {
		t.Fatalf("aggregateAt() error = %v", err)
	}

	// Zero total views must yield 0, never NaN or Inf.
	for name, v := range map[string]float64{
		"LikesPer1000Views":    got.LikesPer1000Views,
		"CommentsPer1000Views": got.CommentsPer1000Views,
	} {
		if v != 0 {
			t.Errorf("%s = %v, want 0", name, v)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s is not finite: %v", name, v)
		}
	}
}

func TestTopVideosRanking(t *testing.T) {
	older := testNow.AddDate(0, -8, 0)
	newer := testNow.AddDate(0, -2, 0)

	videos := []models.VideoRecord{
		vid("f", 50, 0, 0, 60, newer),
		vid("a", 500, 0, 0, 60, newer),
		vid("tie-new", 200, 0, 0, 60, newer),
		vid("tie-old", 200, 0, 0, 60, older),
		vid("b", 400, 0, 0, 60, older),
		vid("c", 300, 0, 0, 60, older),
	}

	got, err := aggregateAt(testNow.AddDate(-2, 0, 0), videos, testNow)
	if err != nil {
		t.Fatalf("aggregateAt() error = %v", err)
	}

	wantIDs := []string{"a", "b", "c", "tie-old", "tie-new"}
	if len(got.TopVideos) != len(wantIDs) {
		t.Fatalf("len(TopVideos) = %d, want %d", len(got.TopVideos), len(wantIDs))
	}
	for i, want := range wantIDs {
		if got.TopVideos[i].ID != want {
			t.Errorf("TopVideos[%d].ID = %q, want %q", i, got.TopVideos[i].ID, want)
		}
	}

	// Views must be non-increasing down the ranking.
	for i := 1; i < len(got.TopVideos); i++ {
		if got.TopVideos[i].Views > got.TopVideos[i-1].Views {
			t.Errorf("TopVideos not sorted: [%d]=%d > [%d]=%d",
				i, got.TopVideos[i].Views, i-1, got.TopVideos[i-1].Views)
		}
	}
}

func TestTopVideosEqualViewsTieBreakByID(t *testing.T) {
	published := testNow.AddDate(0, -3, 0)
	videos := []models.VideoRecord{
		vid("zzz", 100, 0, 0, 60, published),
		vid("aaa", 100, 0, 0, 60, published),
		vid("mmm", 100, 0, 0, 60, published),
	}

	got, err := aggregateAt(testNow.AddDate(-1, 0, 0), videos, testNow)
	if err != nil {
		t.Fatalf("aggregateAt() error = %v", err)
	}

	wantIDs := []string{"aaa", "mmm", "zzz"}
	for i, want := range wantIDs {
		if got.TopVideos[i].ID != want {
			t.Errorf("TopVideos[%d].ID = %q, want %q", i, got.TopVideos[i].ID, want)
		}
	}
}

func TestTopVideosShortChannel(t *testing.T) {
	published := testNow.AddDate(0, -3, 0)
	videos := []models.VideoRecord{
		vid("a", 10, 0, 0, 60, published),
		vid("b", 20, 0, 0, 60, published),
	}

	got, err := aggregateAt(testNow.AddDate(-1, 0, 0), videos, testNow)
	if err != nil {
		t.Fatalf("aggregateAt() error = %v", err)
	}
	if len(got.TopVideos) != 2 {
		t.Errorf("len(TopVideos) = %d, want 2", len(got.TopVideos))
	}
}

func TestAggregateDeterministic(t *testing.T) {
	published := testNow.AddDate(0, -3, 0)
	videos := []models.VideoRecord{
		vid("x", 100, 3, 1, 90, published),
		vid("y", 100, 4, 2, 30, published.AddDate(0, 0, 1)),
		vid("z", 250, 9, 5, 300, published.AddDate(0, 0, 2)),
	}

	first, err := aggregateAt(testNow.AddDate(-1, 0, 0), videos, testNow)
	if err != nil {
		t.Fatalf("aggregateAt() error = %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := aggregateAt(testNow.AddDate(-1, 0, 0), videos, testNow)
		if err != nil {
			t.Fatalf("aggregateAt() error = %v", err)
		}
		for j := range first.TopVideos {
			if again.TopVideos[j].ID != first.TopVideos[j].ID {
				t.Fatalf("run %d: TopVideos[%d] = %q, want %q",
					i, j, again.TopVideos[j].ID, first.TopVideos[j].ID)
			}
		}
	}

	// The input slice must not be reordered by aggregation.
	if videos[0].ID != "x" || videos[1].ID != "y" || videos[2].ID != "z" {
		t.Error("aggregateAt mutated the caller's slice")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    string
	}{
		{"zero", 0, "0:00:00"},
		{"seconds only", 45, "0:00:45"},
		{"minutes and seconds", 325, "0:05:25"},
		{"exact hour", 3600, "1:00:00"},
		{"hours minutes seconds", 3723, "1:02:03"},
		{"double digit hours", 36061, "10:01:01"},
		{"negative clamped", -5, "0:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}
