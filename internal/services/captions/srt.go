// srt.go — SRT cue serialization and WebVTT cue parsing.
//
// SRT is the one output format both caption sources normalize into:
//
//	1
//	00:00:01,000 --> 00:00:04,000
//	Hello, welcome to the video.
//
//	2
//	...
//
// The shape is bit-exact: cue number from 1, comma millisecond separator,
// text, blank line. The frontend copies this straight to the clipboard, so
// nothing here may escape or re-encode the text.
package captions

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/HMT1688/youtube-analyzer/internal/models"
)

// ErrInvalidSegments is returned when generator output violates its
// ordering contract. The converter fails loudly rather than silently
// reordering — out-of-order segments mean the generator is broken.
var ErrInvalidSegments = errors.New("captions: transcript segments violate ordering contract")

// SegmentsToSRT converts ordered transcript segments to SRT text.
//
// The segment contract is enforced here: start >= 0, end > start, starts
// non-decreasing, and no overlap with the previous segment. Any violation
// aborts the conversion.
func SegmentsToSRT(segments []models.TranscriptSegment) (string, error) {
	if len(segments) == 0 {
		return "", fmt.Errorf("%w: empty segment list", ErrInvalidSegments)
	}

	var sb strings.Builder
	for i, seg := range segments {
		if seg.Start < 0 || seg.End <= seg.Start {
			return "", fmt.Errorf("%w: segment %d has bad bounds [%.3f, %.3f]",
				ErrInvalidSegments, i+1, seg.Start, seg.End)
		}
		if i > 0 && seg.Start < segments[i-1].End {
			return "", fmt.Errorf("%w: segment %d starts at %.3f before previous ends at %.3f",
				ErrInvalidSegments, i+1, seg.Start, segments[i-1].End)
		}

		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString("\n")
		sb.WriteString(formatTimestamp(seg.Start))
		sb.WriteString(" --> ")
		sb.WriteString(formatTimestamp(seg.End))
		sb.WriteString("\n")
		sb.WriteString(strings.TrimSpace(seg.Text))
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}

// formatTimestamp converts seconds to the SRT timestamp form HH:MM:SS,mmm.
func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int(seconds)
	h := whole / 3600
	m := (whole % 3600) / 60
	s := whole % 60
	ms := int((seconds - float64(whole)) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// --- WebVTT parsing ---

// vtt timestamps appear as HH:MM:SS.mmm or MM:SS.mmm.
var vttTimingRegex = regexp.MustCompile(
	`^(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})\s+-->\s+(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})`)

// vtt inline tags like <c>, <00:00:01.000>, <b>.
var vttTagRegex = regexp.MustCompile(`<[^>]*>`)

// ParseVTT extracts timed cues from a WebVTT subtitle track.
//
// YouTube's tracks carry rolling-window duplicates and slightly
// overlapping cues, so this normalizes what it reads: inline tags are
// stripped, a cue repeating the previous cue's text is dropped, and an
// overlapping start is clamped to the previous end. The result satisfies
// the segment contract SegmentsToSRT enforces.
func ParseVTT(vtt string) []models.TranscriptSegment {
	var segments []models.TranscriptSegment

	lines := strings.Split(vtt, "\n")
	for i := 0; i < len(lines); i++ {
		m := vttTimingRegex.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}

		start := vttSeconds(m[1], m[2], m[3], m[4])
		end := vttSeconds(m[5], m[6], m[7], m[8])

		// Collect the cue text lines up to the next blank line.
		var text []string
		for i+1 < len(lines) {
			line := strings.TrimSpace(lines[i+1])
			if line == "" {
				break
			}
			i++
			line = strings.TrimSpace(vttTagRegex.ReplaceAllString(line, ""))
			if line != "" {
				text = append(text, line)
			}
		}

		cue := strings.Join(text, "\n")
		if cue == "" || end <= start {
			continue
		}

		if n := len(segments); n > 0 {
			prev := &segments[n-1]
			if cue == prev.Text {
				// Rolling-window repeat: extend the previous cue instead.
				if end > prev.End {
					prev.End = end
				}
				continue
			}
			if start < prev.End {
				start = prev.End
				if end <= start {
					continue
				}
			}
		}

		segments = append(segments, models.TranscriptSegment{Start: start, End: end, Text: cue})
	}

	return segments
}

// vttSeconds converts captured timestamp groups to seconds. The hour
// group is optional in WebVTT.
func vttSeconds(h, m, s, ms string) float64 {
	hours := 0
	if h != "" {
		hours, _ = strconv.Atoi(h)
	}
	mins, _ := strconv.Atoi(m)
	secs, _ := strconv.Atoi(s)
	millis, _ := strconv.Atoi(ms)
	return float64(hours)*3600 + float64(mins)*60 + float64(secs) + float64(millis)/1000
}
