// generator.go — the caption generation service: resolve the audio stream,
// hand it to Whisper, return timed segments.
package transcriber

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/HMT1688/youtube-analyzer/internal/models"
)

// AudioFetcher is the stream-resolution step shared with the download
// pipeline: it materializes a video's audio into dir and returns the path.
type AudioFetcher interface {
	FetchAudio(ctx context.Context, videoID, dir string) (string, error)
}

// Timeout policy: transcription time scales with media length, so the
// bound does too — with an absolute ceiling so a wedged upstream call can
// never hold a request forever.
const (
	baseTimeout    = 2 * time.Minute
	perMediaSecond = 500 * time.Millisecond
	maxTimeout     = 20 * time.Minute
)

// Service generates transcript segments for a video.
type Service struct {
	audio   AudioFetcher
	whisper *Client
}

// NewService creates a caption generation service.
func NewService(audio AudioFetcher, whisper *Client) *Service {
	return &Service{audio: audio, whisper: whisper}
}

// IsConfigured reports whether generated captions are available.
func (s *Service) IsConfigured() bool {
	return s.whisper.IsConfigured()
}

// Generate transcribes the audio of a video into ordered segments.
//
// durationSec is the video's known duration; it sizes the timeout budget.
// Stream resolution failures keep their own error kind (the media
// package's), transcription failures surface as ErrTranscription.
func (s *Service) Generate(ctx context.Context, videoID string, durationSec int64) ([]models.TranscriptSegment, error) {
	if !s.whisper.IsConfigured() {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, transcriptionTimeout(durationSec))
	defer cancel()

	dir, err := os.MkdirTemp("", "yta-audio-")
	if err != nil {
		return nil, fmt.Errorf("create audio temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	audioPath, err := s.audio.FetchAudio(ctx, videoID, dir)
	if err != nil {
		return nil, err
	}

	segments, err := s.whisper.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	return segments, nil
}

// transcriptionTimeout sizes the per-request budget from media duration.
func transcriptionTimeout(durationSec int64) time.Duration {
	t := baseTimeout + time.Duration(durationSec)*perMediaSecond
	if t > maxTimeout {
		t = maxTimeout
	}
	return t
}
