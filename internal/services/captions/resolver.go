// Package captions unifies the two caption sources — publisher-supplied
// tracks and machine transcription — into one SRT-shaped result.
//
// Go Pattern: The resolver depends on small interfaces defined here, where
// they are used. Tests substitute fakes; production wires the yt-dlp track
// fetcher and the Whisper-backed generator.
package captions

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/HMT1688/youtube-analyzer/internal/models"
)

// Source selects which caption producer to use.
type Source string

const (
	// SourceNative is the publisher-supplied subtitle track.
	SourceNative Source = "native"
	// SourceGenerated is machine transcription of the audio stream.
	SourceGenerated Source = "generated"
)

// Valid reports whether s names a known caption source.
func (s Source) Valid() bool {
	return s == SourceNative || s == SourceGenerated
}

// VideoLookup is the slice of the video store the resolver needs: existence
// checks and titles. The store owns freshness; we only read.
type VideoLookup interface {
	Video(ctx context.Context, videoID string) (*models.VideoRecord, error)
}

// Generator produces ordered transcript segments from a video's audio.
type Generator interface {
	Generate(ctx context.Context, videoID string, durationSec int64) ([]models.TranscriptSegment, error)
}

// Result is a successfully resolved caption: the video title and the full
// SRT text. Both are immutable, so concurrent requests can share one.
type Result struct {
	Title string
	SRT   string
}

// Resolver turns (video id, source) into SRT captions.
type Resolver struct {
	store     VideoLookup
	tracks    TrackFetcher
	generator Generator

	// Concurrent requests for the same video+source collapse into one
	// upstream fetch or transcription. The shared Result is read-only, so
	// handing it to every waiter is safe.
	group singleflight.Group
}

// NewResolver creates a caption resolver over the given collaborators.
func NewResolver(store VideoLookup, tracks TrackFetcher, generator Generator) *Resolver {
	return &Resolver{store: store, tracks: tracks, generator: generator}
}

// Resolve fetches captions for a video from the requested source.
//
// Both sources come back in the same SRT cue format. Failures keep their
// kind: a missing video, a missing track, and a broken transcription are
// all distinguishable with errors.Is at the handler.
func (r *Resolver) Resolve(ctx context.Context, videoID string, source Source) (*Result, error) {
	if !source.Valid() {
		return nil, fmt.Errorf("unknown caption source %q", source)
	}

	// Existence check up front: "video not found" and "video has no
	// captions" are different answers.
	record, err := r.store.Video(ctx, videoID)
	if err != nil {
		return nil, err
	}

	// The coalesced work must not die with whichever caller happened to
	// start it: if the initiator disconnects, waiters with live contexts
	// would all fail with its cancellation. Detach the work from the
	// initiating request; both sources carry their own timeouts, so the
	// detached work stays bounded.
	workCtx := context.WithoutCancel(ctx)

	key := string(source) + ":" + videoID
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		switch source {
		case SourceNative:
			return r.resolveNative(workCtx, record)
		default:
			return r.resolveGenerated(workCtx, record)
		}
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

// resolveNative fetches the publisher track and re-cues it as SRT.
func (r *Resolver) resolveNative(ctx context.Context, record *models.VideoRecord) (*Result, error) {
	vtt, err := r.tracks.FetchTrack(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	segments := ParseVTT(vtt)
	if len(segments) == 0 {
		// A track that parses to nothing is no track at all; an empty
		// srt_content must never masquerade as success.
		return nil, fmt.Errorf("%w: track contained no cues", ErrNoCaptions)
	}

	srt, err := SegmentsToSRT(segments)
	if err != nil {
		return nil, err
	}
	return &Result{Title: record.Title, SRT: srt}, nil
}

// resolveGenerated transcribes the audio stream and converts the segment
// list to SRT. Generator failures propagate with their own kind; segment
// contract violations surface as ErrInvalidSegments rather than being
// silently reordered.
func (r *Resolver) resolveGenerated(ctx context.Context, record *models.VideoRecord) (*Result, error) {
	segments, err := r.generator.Generate(ctx, record.ID, record.Duration)
	if err != nil {
		return nil, err
	}

	srt, err := SegmentsToSRT(segments)
	if err != nil {
		return nil, err
	}
	return &Result{Title: "[AI] " + record.Title, SRT: srt}, nil
}
