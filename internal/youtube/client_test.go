// client_test.go — API response mapping tests.
package youtube

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestParseTimestamp(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	if ts := parseTimestamp("2023-05-01T12:00:00Z", "publish", "vid-1"); ts.IsZero() {
		t.Error("Valid timestamp parsed to zero time")
	}
	if buf.Len() != 0 {
		t.Errorf("Valid timestamp should not log, got %q", buf.String())
	}

	// A malformed value still maps to the zero time, but never silently:
	// the log line names the record so the skewed metric is traceable.
	ts := parseTimestamp("not-a-date", "channel creation", "UCabc")
	if !ts.IsZero() {
		t.Errorf("Malformed timestamp parsed to %v, expected zero time", ts)
	}
	if !strings.Contains(buf.String(), "UCabc") || !strings.Contains(buf.String(), "not-a-date") {
		t.Errorf("Expected the malformed value logged with its id, got %q", buf.String())
	}
}
