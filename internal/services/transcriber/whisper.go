// Package transcriber generates timed transcript segments from a video's
// audio using OpenAI's Whisper API.
//
// Go Pattern: The Whisper call is plain net/http — a multipart upload and
// a JSON response. With response_format=verbose_json the API returns
// per-segment timings, which is exactly the (start, end, text) contract
// the caption resolver converts to SRT.
package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HMT1688/youtube-analyzer/internal/models"
)

// ErrTranscription means the transcription step itself failed: corrupt
// input, unsupported codec, API rejection, or timeout.
var ErrTranscription = errors.New("transcriber: transcription failed")

// ErrNotConfigured means no OpenAI API key is set; generated captions are
// unavailable but the rest of the service works.
var ErrNotConfigured = errors.New("transcriber: OPENAI_API_KEY not configured")

const defaultWhisperURL = "https://api.openai.com/v1/audio/transcriptions"

// Client calls the Whisper API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Whisper client with the given OpenAI API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultWhisperURL,
		// No fixed Timeout here: the caller's context carries the
		// per-request duration-proportional bound, and a shorter client
		// timeout would fire first and misreport long jobs as API failures.
		httpClient: &http.Client{},
	}
}

// IsConfigured returns true if the OpenAI API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// whisperResponse is the verbose_json response shape.
type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads an audio file and returns its timed segments.
func (c *Client) Transcribe(ctx context.Context, audioPath string) ([]models.TranscriptSegment, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open audio: %v", ErrTranscription, err)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}
	if err := writer.WriteField("model", "whisper-1"); err != nil {
		return nil, fmt.Errorf("write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("write response_format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// Keep the context error in the chain so callers can tell an
			// exhausted time budget apart from a failed transcription.
			return nil, fmt.Errorf("transcription timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API returned status %d: %s",
			ErrTranscription, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var wr whisperResponse
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrTranscription, err)
	}

	return segmentsFromResponse(&wr)
}

// segmentsFromResponse converts the API response to the segment contract:
// time-ordered, non-overlapping, end > start. Whisper occasionally emits
// zero-length or overlapping segments at boundaries; those are repaired
// here so the strict SRT converter downstream never has to.
func segmentsFromResponse(wr *whisperResponse) ([]models.TranscriptSegment, error) {
	out := make([]models.TranscriptSegment, 0, len(wr.Segments))
	for _, s := range wr.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		out = append(out, models.TranscriptSegment{Start: s.Start, End: s.End, Text: text})
	}

	if len(out) == 0 {
		if strings.TrimSpace(wr.Text) == "" {
			return nil, fmt.Errorf("%w: empty transcription", ErrTranscription)
		}
		// Segment-less response: fall back to one cue over the full run.
		end := wr.Duration
		if end <= 0 {
			end = 1
		}
		return []models.TranscriptSegment{{Start: 0, End: end, Text: strings.TrimSpace(wr.Text)}}, nil
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	for i := range out {
		if i > 0 && out[i].Start < out[i-1].End {
			out[i].Start = out[i-1].End
		}
		if out[i].End <= out[i].Start {
			out[i].End = out[i].Start + 0.001
		}
	}

	return out, nil
}
