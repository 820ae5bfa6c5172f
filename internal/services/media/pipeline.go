// pipeline.go — the download/transcode pipeline.
//
// One download request becomes one Job: resolve the source stream, run
// ffmpeg to package it as MP4, hand the caller a file it can stream out.
// The resource-safety invariant is that every exit path — success after
// the response is sent, fetch failure, transcode failure, timeout, client
// disconnect — removes the job's temp directory and leaves no subprocess
// behind. Subprocesses die with the request context; the temp dir dies
// with Close (or with the error path that created it).
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// ErrTranscode means the transcode subprocess failed after the retry
// budget was exhausted.
var ErrTranscode = errors.New("media: transcode failed")

// ErrTimeout means the pipeline's time budget ran out before the file was
// ready.
var ErrTimeout = errors.New("media: download timed out")

// SourceFetcher is the stream-resolution dependency of the pipeline.
// *StreamResolver satisfies it; tests substitute fakes.
type SourceFetcher interface {
	FetchVideo(ctx context.Context, videoID, dir string) (string, error)
}

// Transcoder packages a source stream into the delivery format. Narrow on
// purpose: stream in, file out, bounded by the context — so the pipeline's
// retry and cleanup logic is testable without a real ffmpeg.
type Transcoder interface {
	Transcode(ctx context.Context, src, dst string) error
}

// Job is one prepared download: a transcoded file plus its teardown.
type Job struct {
	ID      string
	VideoID string
	Path    string // transcoded MP4, inside the job's temp dir

	dir  string
	once sync.Once
}

// Close removes the job's temp directory. Safe to call more than once;
// callers defer it on every path.
func (j *Job) Close() error {
	var err error
	j.once.Do(func() {
		err = os.RemoveAll(j.dir)
	})
	return err
}

// Pipeline prepares downloadable files with bounded concurrency.
type Pipeline struct {
	fetcher    SourceFetcher
	transcoder Transcoder
	timeout    time.Duration

	// Transcoding is the only CPU-heavy thing this service does; the
	// semaphore caps how many subprocess pairs run at once so a burst of
	// download clicks cannot fork-bomb the host.
	sem *semaphore.Weighted
}

// NewPipeline creates a download pipeline.
// maxConcurrent bounds simultaneous fetch+transcode jobs; timeout is the
// whole-job budget.
func NewPipeline(fetcher SourceFetcher, transcoder Transcoder, maxConcurrent int64, timeout time.Duration) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		transcoder: transcoder,
		timeout:    timeout,
		sem:        semaphore.NewWeighted(maxConcurrent),
	}
}

// PrepareDownload resolves, transcodes, and returns a Job whose Path is
// ready to stream. On any error the temp state is already gone.
func (p *Pipeline) PrepareDownload(ctx context.Context, videoID string) (*Job, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, mapTimeout(ctx, err)
	}
	defer p.sem.Release(1)

	// Temp namespace keyed by video id + job id: concurrent downloads of
	// the same video never collide.
	jobID := uuid.NewString()
	dir, err := os.MkdirTemp("", fmt.Sprintf("yta-dl-%s-%s-", videoID, jobID[:8]))
	if err != nil {
		return nil, fmt.Errorf("create download temp dir: %w", err)
	}

	job := &Job{ID: jobID, VideoID: videoID, dir: dir}

	path, err := p.run(ctx, videoID, dir)
	if err != nil {
		job.Close()
		return nil, mapTimeout(ctx, err)
	}

	job.Path = path
	return job, nil
}

// run does the fetch + transcode inside dir and returns the output path.
func (p *Pipeline) run(ctx context.Context, videoID, dir string) (string, error) {
	src, err := p.fetcher.FetchVideo(ctx, videoID, dir)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(dir, videoID+".mp4")

	// One retry, and only for transient failures. A deterministic
	// failure (bad source, unsupported codec) fails identically twice,
	// so retrying it just doubles the subprocess cost.
	err = p.transcoder.Transcode(ctx, src, dst)
	if err != nil && isTransient(err) && ctx.Err() == nil {
		log.Printf("⚠️  Transient transcode failure for %s, retrying once: %v", videoID, err)
		os.Remove(dst) // never leave a half-written file behind
		err = p.transcoder.Transcode(ctx, src, dst)
	}
	if err != nil {
		os.Remove(dst)
		if ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrTranscode, err)
	}

	return dst, nil
}

// mapTimeout folds a deadline expiry into ErrTimeout so callers see one
// kind for "the budget ran out".
func mapTimeout(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// --- ffmpeg transcoder ---

// FFmpegTranscoder packages a source stream as a faststart MP4 using the
// ffmpeg binary.
type FFmpegTranscoder struct {
	ffmpegPath string
}

// NewFFmpegTranscoder creates a transcoder using the given ffmpeg binary.
func NewFFmpegTranscoder(ffmpegPath string) *FFmpegTranscoder {
	return &FFmpegTranscoder{ffmpegPath: ffmpegPath}
}

// Transcode remuxes src into an MP4 at dst. Streams are copied, not
// re-encoded, unless the container forces it; -movflags +faststart puts
// the moov atom up front so playback can begin while downloading.
func (t *FFmpegTranscoder) Transcode(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", src,
		"-c", "copy",
		"-movflags", "+faststart",
		"-f", "mp4",
		dst,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("transcode cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg exited: %w: %s", err, firstLine(strings.TrimSpace(stderr.String())))
	}
	return nil
}
