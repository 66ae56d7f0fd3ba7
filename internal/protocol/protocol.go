// Package protocol defines the deck wire contract: one ASCII command token
// per exchange and one textual response line.
package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenGetTrackInfo is the reserved query token for current playback state.
const TokenGetTrackInfo = "GET_TRACK_INFO"

// MaxLineBytes bounds a single request or response line on the wire.
const MaxLineBytes = 1024

const (
	prefixOK      = "OK: "
	prefixError   = "ERROR: "
	prefixUnknown = "UNKNOWN: "
	prefixTrack   = "TRACK:"
)

// emptyTrackLine is the exact sentinel emitted when nothing is playing or the
// playback query failed. The extra empty field is part of the historical
// format and is expected by deployed clients.
const emptyTrackLine = "TRACK:||||||false"

// OK formats a successful action response.
func OK(description string) string {
	return prefixOK + description
}

// Error formats a dispatch failure response.
func Error(message string) string {
	return prefixError + strings.ReplaceAll(message, "\n", " ")
}

// Unknown formats the response for an unregistered token, echoed verbatim.
func Unknown(token string) string {
	return prefixUnknown + token
}

// Track is the playback snapshot carried by a TRACK response.
type Track struct {
	Name       string
	Artist     string
	Album      string
	DurationMS int64
	PositionS  float64
	Playing    bool
}

// IsZero reports whether the snapshot is the "nothing playing" value.
func (t Track) IsZero() bool {
	return t == Track{}
}

// FormatTrack renders a snapshot as a TRACK response line.
func FormatTrack(t Track) string {
	if t.IsZero() {
		return emptyTrackLine
	}
	fields := []string{
		sanitizeField(t.Name),
		sanitizeField(t.Artist),
		sanitizeField(t.Album),
		strconv.FormatInt(t.DurationMS, 10),
		strconv.FormatFloat(t.PositionS, 'f', -1, 64),
		strconv.FormatBool(t.Playing),
	}
	return prefixTrack + strings.Join(fields, "|")
}

// ParseTrack decodes a TRACK response line into a snapshot.
func ParseTrack(line string) (Track, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, prefixTrack) {
		return Track{}, fmt.Errorf("not a TRACK response: %q", line)
	}
	return ParseTrackFields(line[len(prefixTrack):])
}

// ParseTrackFields decodes the pipe-delimited track payload. At least six
// fields are required; extras are ignored so the sentinel line and older
// producers both parse.
func ParseTrackFields(payload string) (Track, error) {
	parts := strings.Split(payload, "|")
	if len(parts) < 6 {
		return Track{}, fmt.Errorf("track payload has %d fields, want at least 6", len(parts))
	}

	track := Track{
		Name:   strings.TrimSpace(parts[0]),
		Artist: strings.TrimSpace(parts[1]),
		Album:  strings.TrimSpace(parts[2]),
	}

	if raw := strings.TrimSpace(parts[3]); raw != "" {
		duration, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Track{}, fmt.Errorf("parse track duration %q: %w", raw, err)
		}
		if duration < 0 {
			return Track{}, fmt.Errorf("track duration %q is negative", raw)
		}
		track.DurationMS = int64(duration)
	}
	if raw := strings.TrimSpace(parts[4]); raw != "" {
		position, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Track{}, fmt.Errorf("parse track position %q: %w", raw, err)
		}
		if position < 0 {
			return Track{}, fmt.Errorf("track position %q is negative", raw)
		}
		track.PositionS = position
	}
	track.Playing = strings.EqualFold(strings.TrimSpace(parts[5]), "true")

	return track, nil
}

// sanitizeField strips characters that would break the line or field framing.
func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
