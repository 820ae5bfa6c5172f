// channel.go — channel URL parsing and ISO-8601 duration parsing.
package youtube

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidChannelURL means the input matched no supported channel form.
var ErrInvalidChannelURL = errors.New("youtube: invalid channel URL")

// RefKind tells how a channel reference must be resolved.
type RefKind string

const (
	// RefChannelID is a raw UC… channel id — no lookup needed.
	RefChannelID RefKind = "channel_id"
	// RefUsername is a legacy /user/ name, resolved via forUsername.
	RefUsername RefKind = "username"
	// RefHandle is an @handle, resolved via forHandle.
	RefHandle RefKind = "handle"
)

// ChannelRef is a parsed channel reference awaiting resolution.
type ChannelRef struct {
	Kind  RefKind
	Value string
}

var channelIDRegex = regexp.MustCompile(`^UC[a-zA-Z0-9_-]{22}$`)

// ParseChannelURL extracts a channel reference from the URL forms YouTube
// uses:
//
//   - https://www.youtube.com/channel/UCxxxx
//   - https://www.youtube.com/user/somename
//   - https://www.youtube.com/@somehandle
//   - a bare UC… channel id
func ParseChannelURL(input string) (ChannelRef, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return ChannelRef{}, fmt.Errorf("%w: empty input", ErrInvalidChannelURL)
	}

	if channelIDRegex.MatchString(input) {
		return ChannelRef{Kind: RefChannelID, Value: input}, nil
	}

	if part, ok := pathSegmentAfter(input, "channel/"); ok {
		if !channelIDRegex.MatchString(part) {
			return ChannelRef{}, fmt.Errorf("%w: malformed channel id %q", ErrInvalidChannelURL, part)
		}
		return ChannelRef{Kind: RefChannelID, Value: part}, nil
	}
	if part, ok := pathSegmentAfter(input, "user/"); ok {
		return ChannelRef{Kind: RefUsername, Value: part}, nil
	}
	if part, ok := pathSegmentAfter(input, "/@"); ok {
		return ChannelRef{Kind: RefHandle, Value: part}, nil
	}

	return ChannelRef{}, fmt.Errorf("%w: %s", ErrInvalidChannelURL, input)
}

// pathSegmentAfter returns the path segment following marker, stripped of
// any trailing path or query.
func pathSegmentAfter(input, marker string) (string, bool) {
	idx := strings.Index(input, marker)
	if idx < 0 {
		return "", false
	}
	rest := input[idx+len(marker):]
	if cut := strings.IndexAny(rest, "/?#"); cut >= 0 {
		rest = rest[:cut]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// isoDurationRegex matches the PT#H#M#S form the Data API uses for video
// durations.
var isoDurationRegex = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts an ISO-8601 duration like "PT1H2M3S" to
// seconds. Unparseable input yields 0 — the Data API omits durations for
// upcoming streams, and a zero-length record beats a failed fetch.
func ParseISODuration(s string) int64 {
	m := isoDurationRegex.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	var h, mm, ss int64
	if m[1] != "" {
		h, _ = strconv.ParseInt(m[1], 10, 64)
	}
	if m[2] != "" {
		mm, _ = strconv.ParseInt(m[2], 10, 64)
	}
	if m[3] != "" {
		ss, _ = strconv.ParseInt(m[3], 10, 64)
	}
	return h*3600 + mm*60 + ss
}
