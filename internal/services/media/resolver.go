// Package media resolves source streams for videos and runs the
// download/transcode pipeline around the external yt-dlp and ffmpeg tools.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrSourceUnavailable means no media stream could be resolved for the
// video: deleted, private, region-locked, or upstream refused us.
var ErrSourceUnavailable = errors.New("media: source stream unavailable")

// StreamResolver materializes a video's media stream onto local disk using
// yt-dlp. It is the shared stream-resolution step: the download pipeline
// pulls full video, the caption generator pulls audio only.
type StreamResolver struct {
	ytDlpPath string
}

// NewStreamResolver creates a yt-dlp backed stream resolver.
func NewStreamResolver(ytDlpPath string) *StreamResolver {
	return &StreamResolver{ytDlpPath: ytDlpPath}
}

// FetchVideo downloads the best progressive stream (capped at 1080p) into
// dir and returns the file path.
func (r *StreamResolver) FetchVideo(ctx context.Context, videoID, dir string) (string, error) {
	return r.fetch(ctx, videoID, dir,
		"-f", "bestvideo[height<=1080]+bestaudio/best[height<=1080]/best")
}

// FetchAudio downloads the best audio-only stream into dir and returns the
// file path.
func (r *StreamResolver) FetchAudio(ctx context.Context, videoID, dir string) (string, error) {
	return r.fetch(ctx, videoID, dir, "-f", "bestaudio[ext=m4a]/bestaudio/best")
}

// fetch runs yt-dlp once, retrying a single time on a transient failure
// signature. Permanent failures (missing or private videos) never retry.
func (r *StreamResolver) fetch(ctx context.Context, videoID, dir string, formatArgs ...string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		path, err := r.runYtDlp(ctx, videoID, dir, formatArgs...)
		if err == nil {
			return path, nil
		}
		lastErr = err
		if !isTransient(err) || ctx.Err() != nil {
			break
		}
		log.Printf("⚠️  Transient stream fetch failure for %s, retrying once: %v", videoID, err)
	}
	return "", lastErr
}

func (r *StreamResolver) runYtDlp(ctx context.Context, videoID, dir string, formatArgs ...string) (string, error) {
	args := []string{
		"--no-warnings",
		"--no-playlist",
		"--output", filepath.Join(dir, "%(id)s.%(ext)s"),
		// yt-dlp prints the final path after any merge/move step, so we
		// never have to guess the extension it picked.
		"--print", "after_move:filepath",
		"--no-simulate",
	}
	args = append(args, formatArgs...)
	args = append(args, "https://www.youtube.com/watch?v="+videoID)

	cmd := exec.CommandContext(ctx, r.ytDlpPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("stream fetch cancelled: %w", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if isPermanentFetchFailure(msg) {
			return "", fmt.Errorf("%w: %s", ErrSourceUnavailable, firstLine(msg))
		}
		return "", fmt.Errorf("yt-dlp failed: %w: %s", err, firstLine(msg))
	}

	// The filepath is the last non-empty stdout line.
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("%w: yt-dlp produced no output file", ErrSourceUnavailable)
}

// isPermanentFetchFailure recognizes stderr signatures that will not
// succeed on retry, the video simply cannot be fetched.
func isPermanentFetchFailure(stderr string) bool {
	s := strings.ToLower(stderr)
	for _, sig := range []string{
		"video unavailable",
		"private video",
		"this video is not available",
		"members-only",
		"has been removed",
		"incomplete youtube id",
	} {
		if strings.Contains(s, sig) {
			return true
		}
	}
	return false
}

// isTransient recognizes failure signatures worth exactly one retry.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, ErrSourceUnavailable) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	s := strings.ToLower(err.Error())
	for _, sig := range []string{
		"timed out",
		"timeout",
		"connection reset",
		"temporary failure",
		"http error 429",
		"http error 5",
		"broken pipe",
	} {
		if strings.Contains(s, sig) {
			return true
		}
	}
	return false
}

// firstLine trims a multi-line tool error down to its first line for
// wrapping into an error message.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
