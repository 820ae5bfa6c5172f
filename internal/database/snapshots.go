// snapshots.go — the channel snapshot cache.
//
// One row per channel: the pass-through summary and the full video record
// list, serialized as JSONB, plus the fetch time. The analyze handler
// reads a snapshot when it is younger than the TTL and refreshes it
// otherwise. Analytics are always recomputed from the records — only raw
// store data is cached, never derived metrics.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/HMT1688/youtube-analyzer/internal/models"
)

// ErrSnapshotNotFound means no cached snapshot exists for the channel.
var ErrSnapshotNotFound = errors.New("database: channel snapshot not found")

// Snapshot is one cached channel fetch.
type Snapshot struct {
	ChannelID string
	Summary   models.ChannelSummary
	Videos    []models.VideoRecord
	FetchedAt time.Time
}

// snapshotRow is the raw database shape before JSON decoding.
type snapshotRow struct {
	ChannelID string          `db:"channel_id"`
	Summary   json.RawMessage `db:"summary"`
	Videos    json.RawMessage `db:"videos"`
	FetchedAt time.Time       `db:"fetched_at"`
}

// GetSnapshot loads the cached snapshot for a channel, however stale.
// Callers decide freshness against their own TTL.
func (db *DB) GetSnapshot(ctx context.Context, channelID string) (*Snapshot, error) {
	var row snapshotRow
	err := db.GetContext(ctx, &row,
		`SELECT channel_id, summary, videos, fetched_at FROM channel_snapshots WHERE channel_id = $1`,
		channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap := &Snapshot{ChannelID: row.ChannelID, FetchedAt: row.FetchedAt}
	if err := json.Unmarshal(row.Summary, &snap.Summary); err != nil {
		return nil, fmt.Errorf("decode snapshot summary: %w", err)
	}
	if err := json.Unmarshal(row.Videos, &snap.Videos); err != nil {
		return nil, fmt.Errorf("decode snapshot videos: %w", err)
	}
	return snap, nil
}

// SaveSnapshot upserts the snapshot for a channel.
func (db *DB) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	summary, err := json.Marshal(snap.Summary)
	if err != nil {
		return fmt.Errorf("encode snapshot summary: %w", err)
	}
	videos, err := json.Marshal(snap.Videos)
	if err != nil {
		return fmt.Errorf("encode snapshot videos: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO channel_snapshots (channel_id, summary, videos, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (channel_id)
		DO UPDATE SET summary = $2, videos = $3, fetched_at = $4`,
		snap.ChannelID, summary, videos, snap.FetchedAt)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// DeleteStaleSnapshots removes snapshots older than maxAge. Called
// periodically so abandoned channels do not accumulate forever.
func (db *DB) DeleteStaleSnapshots(ctx context.Context, maxAge time.Duration) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM channel_snapshots WHERE fetched_at < $1`,
		time.Now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("delete stale snapshots: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
