// Package youtube is the video record store: a read-only client over the
// YouTube Data API v3.
//
// The core consumes this through small interfaces (the caption resolver
// wants Video, the analyze handler wants Channel + Videos). This package
// owns none of the analytics — it fetches, parses, and hands back
// immutable records.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/HMT1688/youtube-analyzer/internal/models"
)

// Sentinel errors, checked with errors.Is at the handlers.
var (
	// ErrChannelNotFound means the URL resolved to no channel.
	ErrChannelNotFound = errors.New("youtube: channel not found")
	// ErrVideoNotFound means the video id does not exist in the store.
	ErrVideoNotFound = errors.New("youtube: video not found")
	// ErrQuotaExceeded means the Data API rejected us for quota/rate.
	ErrQuotaExceeded = errors.New("youtube: API quota exceeded")
)

// pageSize is the Data API maximum for playlistItems and videos batches.
const pageSize = 50

// Client reads channel and video metadata from the YouTube Data API.
type Client struct {
	svc *yt.Service
}

// NewClient creates a Data API client authenticated by API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ResolveChannelID turns any supported channel URL form into a channel ID.
// Handles /channel/<id> directly and resolves /user/<name> and /@<handle>
// through the API.
func (c *Client) ResolveChannelID(ctx context.Context, rawURL string) (string, error) {
	ref, err := ParseChannelURL(rawURL)
	if err != nil {
		return "", err
	}

	if ref.Kind == RefChannelID {
		return ref.Value, nil
	}

	call := c.svc.Channels.List([]string{"id"}).Context(ctx)
	switch ref.Kind {
	case RefUsername:
		call = call.ForUsername(ref.Value)
	case RefHandle:
		call = call.ForHandle(ref.Value)
	}

	resp, err := call.Do()
	if err != nil {
		return "", mapAPIError(err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: %s", ErrChannelNotFound, rawURL)
	}
	return resp.Items[0].Id, nil
}

// Channel fetches the pass-through channel summary.
func (c *Client) Channel(ctx context.Context, channelID string) (*models.ChannelSummary, error) {
	resp, err := c.svc.Channels.List([]string{"snippet", "statistics"}).
		Id(channelID).Context(ctx).Do()
	if err != nil {
		return nil, mapAPIError(err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}

	ch := resp.Items[0]
	created := parseTimestamp(ch.Snippet.PublishedAt, "channel creation", ch.Id)

	summary := &models.ChannelSummary{
		ID:          ch.Id,
		Title:       ch.Snippet.Title,
		Description: ch.Snippet.Description,
		CreatedAt:   created,
	}
	if ch.Snippet.Thumbnails != nil && ch.Snippet.Thumbnails.High != nil {
		summary.ProfileImage = ch.Snippet.Thumbnails.High.Url
	}
	if ch.Statistics != nil {
		summary.Subscribers = int64(ch.Statistics.SubscriberCount)
		summary.TotalViews = int64(ch.Statistics.ViewCount)
		summary.VideoCount = int64(ch.Statistics.VideoCount)
	}
	return summary, nil
}

// Videos fetches up to max records from the channel's uploads playlist.
func (c *Client) Videos(ctx context.Context, channelID string, max int) ([]models.VideoRecord, error) {
	chResp, err := c.svc.Channels.List([]string{"contentDetails"}).
		Id(channelID).Context(ctx).Do()
	if err != nil {
		return nil, mapAPIError(err)
	}
	if len(chResp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}
	uploads := chResp.Items[0].ContentDetails.RelatedPlaylists.Uploads

	// Walk the uploads playlist for video ids, then hydrate them in
	// batches of 50 (the per-call maximum for videos.list).
	ids := make([]string, 0, max)
	pageToken := ""
	for len(ids) < max {
		resp, err := c.svc.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(uploads).MaxResults(pageSize).PageToken(pageToken).
			Context(ctx).Do()
		if err != nil {
			return nil, mapAPIError(err)
		}
		for _, item := range resp.Items {
			ids = append(ids, item.Snippet.ResourceId.VideoId)
			if len(ids) == max {
				break
			}
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	records := make([]models.VideoRecord, 0, len(ids))
	for start := 0; start < len(ids); start += pageSize {
		end := start + pageSize
		if end > len(ids) {
			end = len(ids)
		}
		resp, err := c.svc.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
			Id(ids[start:end]...).Context(ctx).Do()
		if err != nil {
			return nil, mapAPIError(err)
		}
		for _, v := range resp.Items {
			records = append(records, videoRecord(v))
		}
	}
	return records, nil
}

// Video fetches a single record, or ErrVideoNotFound.
func (c *Client) Video(ctx context.Context, videoID string) (*models.VideoRecord, error) {
	resp, err := c.svc.Videos.List([]string{"snippet", "statistics", "contentDetails"}).
		Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, mapAPIError(err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}
	record := videoRecord(resp.Items[0])
	return &record, nil
}

// parseTimestamp parses an RFC3339 timestamp from the API. A malformed
// value gets logged rather than silently becoming the zero time, since a
// zero channel creation date quietly skews the uploads-per-week metric.
func parseTimestamp(value, field, id string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.Printf("⚠️  Unparseable %s timestamp for %s: %q", field, id, value)
	}
	return ts
}

// videoRecord maps one API item to the internal record shape.
func videoRecord(v *yt.Video) models.VideoRecord {
	published := parseTimestamp(v.Snippet.PublishedAt, "publish", v.Id)

	record := models.VideoRecord{
		ID:        v.Id,
		Title:     v.Snippet.Title,
		URL:       "https://youtu.be/" + v.Id,
		Published: published,
	}
	if v.Snippet.Thumbnails != nil && v.Snippet.Thumbnails.Medium != nil {
		record.Thumbnail = v.Snippet.Thumbnails.Medium.Url
	}
	if v.Statistics != nil {
		record.Views = int64(v.Statistics.ViewCount)
		record.Likes = int64(v.Statistics.LikeCount)
		record.Comments = int64(v.Statistics.CommentCount)
	}
	if v.ContentDetails != nil {
		record.Duration = ParseISODuration(v.ContentDetails.Duration)
	}
	return record
}

// mapAPIError folds googleapi errors into our sentinel taxonomy. Quota
// rejections (403 with a quota reason, or plain 429) get their own kind so
// the handler can tell users to try again later instead of "not found".
func mapAPIError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 429 {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		if gerr.Code == 403 {
			for _, e := range gerr.Errors {
				if e.Reason == "quotaExceeded" || e.Reason == "rateLimitExceeded" || e.Reason == "userRateLimitExceeded" {
					return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
				}
			}
		}
	}
	return fmt.Errorf("youtube API: %w", err)
}
