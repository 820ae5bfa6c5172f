// native.go — publisher-supplied subtitle track retrieval via yt-dlp.
package captions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoCaptions means the video exists but carries no subtitle track.
// Distinct from a missing video, which the resolver reports separately.
var ErrNoCaptions = errors.New("captions: no subtitle track available")

// trackFetchTimeout bounds one yt-dlp subtitle invocation.
const trackFetchTimeout = 60 * time.Second

// TrackFetcher retrieves a publisher-supplied subtitle track as WebVTT.
type TrackFetcher interface {
	FetchTrack(ctx context.Context, videoID string) (string, error)
}

// YtDlpTrackFetcher fetches subtitle tracks with the yt-dlp CLI tool.
type YtDlpTrackFetcher struct {
	ytDlpPath string
}

// NewTrackFetcher creates a yt-dlp based track fetcher.
func NewTrackFetcher(ytDlpPath string) *YtDlpTrackFetcher {
	return &YtDlpTrackFetcher{ytDlpPath: ytDlpPath}
}

// FetchTrack downloads the best available subtitle track for a video.
// Manual subtitles are tried before auto-generated ones, and Korean is
// preferred over English within each pass (the analyzer's primary
// audience), matching the ko -> en -> auto-en order of the original UI.
func (f *YtDlpTrackFetcher) FetchTrack(ctx context.Context, videoID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, trackFetchTimeout)
	defer cancel()

	// A per-request scratch dir keeps concurrent fetches from racing on
	// each other's files and makes cleanup a single RemoveAll.
	dir, err := os.MkdirTemp("", "yta-subs-")
	if err != nil {
		return "", fmt.Errorf("create subtitle temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	url := "https://www.youtube.com/watch?v=" + videoID

	for _, subType := range []string{"--write-subs", "--write-auto-subs"} {
		cmd := exec.CommandContext(ctx, f.ytDlpPath,
			"--skip-download",
			subType,
			"--sub-langs", "ko,en,en.*",
			"--sub-format", "vtt",
			"--output", filepath.Join(dir, "%(id)s"),
			"--no-warnings",
			url,
		)

		if out, err := cmd.CombinedOutput(); err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("subtitle fetch timed out: %w", ctx.Err())
			}
			log.Printf("⚠️  Subtitle fetch (%s) failed for %s: %s", subType, videoID, strings.TrimSpace(string(out)))
			continue
		}

		if path := pickTrackFile(dir, videoID); path != "" {
			content, err := os.ReadFile(path)
			if err != nil {
				return "", fmt.Errorf("read subtitle file: %w", err)
			}
			return string(content), nil
		}
	}

	return "", ErrNoCaptions
}

// pickTrackFile selects the downloaded .vtt file by language preference.
func pickTrackFile(dir, videoID string) string {
	matches, _ := filepath.Glob(filepath.Join(dir, videoID+".*.vtt"))
	if len(matches) == 0 {
		return ""
	}

	for _, prefix := range []string{".ko", ".en"} {
		for _, m := range matches {
			name := strings.TrimSuffix(filepath.Base(m), ".vtt")
			lang := strings.TrimPrefix(name, videoID)
			if lang == prefix || strings.HasPrefix(lang, prefix+"-") {
				return m
			}
		}
	}
	return matches[0]
}
