// channel_test.go — channel URL and ISO duration parsing tests.
package youtube

import (
	"errors"
	"testing"
)

func TestParseChannelURL(t *testing.T) {
	const ucid = "UCuAXFkgsw1L7xaCfnd5JJOw"

	tests := []struct {
		name      string
		input     string
		wantKind  RefKind
		wantValue string
		wantError bool
	}{
		{
			name:      "channel id URL",
			input:     "https://www.youtube.com/channel/" + ucid,
			wantKind:  RefChannelID,
			wantValue: ucid,
		},
		{
			name:      "channel id URL with trailing path",
			input:     "https://www.youtube.com/channel/" + ucid + "/videos",
			wantKind:  RefChannelID,
			wantValue: ucid,
		},
		{
			name:      "bare channel id",
			input:     ucid,
			wantKind:  RefChannelID,
			wantValue: ucid,
		},
		{
			name:      "legacy user URL",
			input:     "https://www.youtube.com/user/somecreator",
			wantKind:  RefUsername,
			wantValue: "somecreator",
		},
		{
			name:      "handle URL",
			input:     "https://www.youtube.com/@gophers",
			wantKind:  RefHandle,
			wantValue: "gophers",
		},
		{
			name:      "handle URL with query",
			input:     "https://youtube.com/@gophers?si=abc",
			wantKind:  RefHandle,
			wantValue: "gophers",
		},
		{
			name:      "whitespace trimmed",
			input:     "  https://www.youtube.com/@gophers  ",
			wantKind:  RefHandle,
			wantValue: "gophers",
		},
		{
			name:      "empty input",
			input:     "",
			wantError: true,
		},
		{
			name:      "unrelated URL",
			input:     "https://example.com/watch?v=abc",
			wantError: true,
		},
		{
			name:      "malformed channel id",
			input:     "https://www.youtube.com/channel/notanid",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseChannelURL(tt.input)
			if tt.wantError {
				if !errors.Is(err, ErrInvalidChannelURL) {
					t.Errorf("ParseChannelURL(%q) error = %v, want ErrInvalidChannelURL", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseChannelURL(%q) error = %v", tt.input, err)
			}
			if ref.Kind != tt.wantKind || ref.Value != tt.wantValue {
				t.Errorf("ParseChannelURL(%q) = %+v, want kind=%s value=%s",
					tt.input, ref, tt.wantKind, tt.wantValue)
			}
		})
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"full form", "PT1H2M3S", 3723},
		{"minutes seconds", "PT5M30S", 330},
		{"seconds only", "PT45S", 45},
		{"hours only", "PT2H", 7200},
		{"minutes only", "PT10M", 600},
		{"empty", "", 0},
		{"garbage", "1h2m", 0},
		{"zero", "PT0S", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseISODuration(tt.input); got != tt.want {
				t.Errorf("ParseISODuration(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
