// srt_test.go — SRT serialization and VTT parsing tests. The SRT shape is
// bit-exact (the frontend copies it straight to the clipboard), so these
// compare whole strings.
package captions

import (
	"errors"
	"testing"

	"github.com/HMT1688/youtube-analyzer/internal/models"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "00:00:00,000"},
		{"fractional", 1.5, "00:00:01,500"},
		{"one minute", 60, "00:01:00,000"},
		{"one hour", 3600, "01:00:00,000"},
		{"complex", 3723.456, "01:02:03,456"},
		{"just under a minute", 59.999, "00:00:59,999"},
		{"negative clamped", -3, "00:00:00,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatTimestamp(tt.seconds); got != tt.want {
				t.Errorf("formatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestSegmentsToSRT(t *testing.T) {
	segments := []models.TranscriptSegment{
		{Start: 0, End: 2.5, Text: "Hello, welcome to the video."},
		{Start: 2.5, End: 6, Text: "  Today we talk about Go.  "},
		{Start: 7.25, End: 9.75, Text: "Thanks for watching."},
	}

	want := "1\n" +
		"00:00:00,000 --> 00:00:02,500\n" +
		"Hello, welcome to the video.\n" +
		"\n" +
		"2\n" +
		"00:00:02,500 --> 00:00:06,000\n" +
		"Today we talk about Go.\n" +
		"\n" +
		"3\n" +
		"00:00:07,250 --> 00:00:09,750\n" +
		"Thanks for watching.\n" +
		"\n"

	got, err := SegmentsToSRT(segments)
	if err != nil {
		t.Fatalf("SegmentsToSRT() error = %v", err)
	}
	if got != want {
		t.Errorf("SegmentsToSRT() =\n%q\nwant\n%q", got, want)
	}
}

func TestSegmentsToSRTRejectsContractViolations(t *testing.T) {
	tests := []struct {
		name     string
		segments []models.TranscriptSegment
	}{
		{
			name:     "empty list",
			segments: nil,
		},
		{
			name: "negative start",
			segments: []models.TranscriptSegment{
				{Start: -1, End: 2, Text: "a"},
			},
		},
		{
			name: "end not after start",
			segments: []models.TranscriptSegment{
				{Start: 3, End: 3, Text: "a"},
			},
		},
		{
			name: "out of order",
			segments: []models.TranscriptSegment{
				{Start: 5, End: 8, Text: "second"},
				{Start: 0, End: 2, Text: "first"},
			},
		},
		{
			name: "overlapping",
			segments: []models.TranscriptSegment{
				{Start: 0, End: 4, Text: "a"},
				{Start: 3, End: 6, Text: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SegmentsToSRT(tt.segments)
			if !errors.Is(err, ErrInvalidSegments) {
				t.Errorf("SegmentsToSRT() error = %v, want ErrInvalidSegments", err)
			}
		})
	}
}

func TestParseVTT(t *testing.T) {
	vtt := "WEBVTT\n" +
		"Kind: captions\n" +
		"Language: en\n" +
		"\n" +
		"00:00:01.000 --> 00:00:04.000\n" +
		"Hello, welcome to the video.\n" +
		"\n" +
		"00:00:04.500 --> 00:00:08.000\n" +
		"Today we're going to <c>talk</c> about Go.\n" +
		"\n" +
		"NOTE internal marker\n" +
		"\n" +
		"00:00:08.500 --> 00:00:10.000\n" +
		"Thanks.\n"

	segments := ParseVTT(vtt)
	if len(segments) != 3 {
		t.Fatalf("ParseVTT() returned %d segments, want 3", len(segments))
	}

	if segments[0].Start != 1.0 || segments[0].End != 4.0 {
		t.Errorf("segment 0 bounds = [%v, %v]", segments[0].Start, segments[0].End)
	}
	if segments[1].Text != "Today we're going to talk about Go." {
		t.Errorf("segment 1 text = %q, tags not stripped", segments[1].Text)
	}

	// Parsed cues must survive the strict SRT converter.
	if _, err := SegmentsToSRT(segments); err != nil {
		t.Errorf("SegmentsToSRT(ParseVTT(...)) error = %v", err)
	}
}

func TestParseVTTNormalizesRollingWindows(t *testing.T) {
	// YouTube auto captions repeat the previous line in overlapping cues.
	vtt := "WEBVTT\n" +
		"\n" +
		"00:00:00.000 --> 00:00:03.000\n" +
		"first line\n" +
		"\n" +
		"00:00:02.000 --> 00:00:05.000\n" +
		"first line\n" +
		"\n" +
		"00:00:04.000 --> 00:00:07.000\n" +
		"second line\n"

	segments := ParseVTT(vtt)
	if len(segments) != 2 {
		t.Fatalf("ParseVTT() returned %d segments, want 2", len(segments))
	}
	if segments[0].Text != "first line" || segments[0].End != 5.0 {
		t.Errorf("segment 0 = %+v, want merged rolling window ending at 5s", segments[0])
	}
	if segments[1].Start < segments[0].End {
		t.Errorf("segment 1 starts at %v, overlapping previous end %v", segments[1].Start, segments[0].End)
	}

	if _, err := SegmentsToSRT(segments); err != nil {
		t.Errorf("SegmentsToSRT(ParseVTT(...)) error = %v", err)
	}
}

func TestParseVTTHourlessTimestamps(t *testing.T) {
	vtt := "WEBVTT\n\n01:05.250 --> 01:08.000\nshort form\n"

	segments := ParseVTT(vtt)
	if len(segments) != 1 {
		t.Fatalf("ParseVTT() returned %d segments, want 1", len(segments))
	}
	if segments[0].Start != 65.25 {
		t.Errorf("segment start = %v, want 65.25", segments[0].Start)
	}
}

func TestParseVTTEmptyInput(t *testing.T) {
	if got := ParseVTT("WEBVTT\n"); len(got) != 0 {
		t.Errorf("ParseVTT(header only) = %v, want no segments", got)
	}
}
