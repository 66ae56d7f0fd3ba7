package player

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/remotedeck/remotedeck/internal/protocol"
)

// notPlayingSentinel is emitted by query scripts when no player is active.
const notPlayingSentinel = "NOT_PLAYING"

// Script queries playback state by running a configured command (typically an
// osascript or playerctl wrapper) whose stdout is either the six-field
// pipe-delimited track payload or the NOT_PLAYING sentinel.
type Script struct {
	argv []string
}

// NewScript builds a script-backed player from a query argv vector.
func NewScript(argv []string) *Script {
	return &Script{argv: argv}
}

// Current runs the query command under the caller's deadline and parses its
// output. Sentinel and empty output map to the zero Track without error.
func (s *Script) Current(ctx context.Context) (protocol.Track, error) {
	if len(s.argv) == 0 {
		return protocol.Track{}, fmt.Errorf("track query command is not configured")
	}

	cmd := exec.CommandContext(ctx, s.argv[0], s.argv[1:]...)
	out, err := cmd.Output()
	if err != nil {
		return protocol.Track{}, fmt.Errorf("run track query %s: %w", s.argv[0], err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" || text == notPlayingSentinel {
		return protocol.Track{}, nil
	}

	track, err := protocol.ParseTrackFields(text)
	if err != nil {
		return protocol.Track{}, fmt.Errorf("parse track query output: %w", err)
	}
	return track, nil
}
