// Package player queries and controls the host media player.
package player

import (
	"context"

	"github.com/remotedeck/remotedeck/internal/protocol"
)

// Player answers current-playback queries.
type Player interface {
	Current(ctx context.Context) (protocol.Track, error)
}
