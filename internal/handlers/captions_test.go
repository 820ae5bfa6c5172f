package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/HMT1688/youtube-analyzer/internal/models"
	"github.com/HMT1688/youtube-analyzer/internal/services/captions"
	"github.com/HMT1688/youtube-analyzer/internal/services/media"
	"github.com/HMT1688/youtube-analyzer/internal/services/transcriber"
	"github.com/HMT1688/youtube-analyzer/internal/youtube"
)

const sampleSRT = "1\n00:00:00,000 --> 00:00:02,000\nhello\n\n"

func TestGetCaptionsSuccess(t *testing.T) {
	cr := &fakeCaptions{result: &captions.Result{Title: "My Video", SRT: sampleSRT}}
	h := NewHandler(&fakeStore{}, nil, cr, nil, "test", 200, time.Minute)
	w := doRequest(t, newTestRouter(h), "/api/v1/videos/vid-1/captions?source=native")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.CaptionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.VideoID != "vid-1" {
		t.Errorf("Expected video_id vid-1, got %q", resp.VideoID)
	}
	if resp.Title != "My Video" {
		t.Errorf("Expected title passed through, got %q", resp.Title)
	}
	if resp.SRTContent != sampleSRT {
		t.Errorf("Expected SRT content passed through, got %q", resp.SRTContent)
	}
	if resp.Error != "" {
		t.Errorf("Success payload must not carry an error, got %q", resp.Error)
	}
}

func TestGetCaptionsDefaultsToNative(t *testing.T) {
	cr := &fakeCaptions{result: &captions.Result{Title: "x", SRT: sampleSRT}}
	h := NewHandler(&fakeStore{}, nil, cr, nil, "test", 200, time.Minute)
	w := doRequest(t, newTestRouter(h), "/api/v1/videos/vid-1/captions")

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with source defaulted, got %d", w.Code)
	}
}

func TestGetCaptionsRejectsUnknownSource(t *testing.T) {
	h := NewHandler(&fakeStore{}, nil, &fakeCaptions{}, nil, "test", 200, time.Minute)
	w := doRequest(t, newTestRouter(h), "/api/v1/videos/vid-1/captions?source=telepathy")

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown source, got %d", w.Code)
	}
}

func TestGetCaptionsErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"video not found", youtube.ErrVideoNotFound, http.StatusNotFound},
		{"no captions", captions.ErrNoCaptions, http.StatusNotFound},
		{"audio stream unavailable", media.ErrSourceUnavailable, http.StatusBadGateway},
		{"generation not configured", transcriber.ErrNotConfigured, http.StatusServiceUnavailable},
		{"transcription failed", transcriber.ErrTranscription, http.StatusBadGateway},
		{"invalid segments", captions.ErrInvalidSegments, http.StatusInternalServerError},
		{"quota exhausted", youtube.ErrQuotaExceeded, http.StatusTooManyRequests},
		{"generation timed out", fmt.Errorf("transcription timed out: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeStore{}, nil, &fakeCaptions{err: tt.err}, nil, "test", 200, time.Minute)
			w := doRequest(t, newTestRouter(h), "/api/v1/videos/vid-1/captions")

			if w.Code != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, w.Code)
			}

			var resp models.CaptionResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}
			if resp.Error == "" {
				t.Error("Failure payload must carry an error message")
			}
			if resp.SRTContent != "" {
				t.Errorf("Failure payload must not carry SRT content, got %q", resp.SRTContent)
			}
		})
	}
}
