package client

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/remotedeck/remotedeck/internal/protocol"
)

// DefaultPollInterval matches the deck's historical 1s progress refresh.
const DefaultPollInterval = time.Second

// Poller issues the track-info query on a fixed interval and hands each
// snapshot to OnUpdate. A failed or malformed cycle is skipped, not fatal;
// the consumer stops the loop by cancelling the context. In-flight requests
// are bounded by the request timeout, not interrupted.
type Poller struct {
	Addr     string
	Interval time.Duration
	Timeout  time.Duration
	OnUpdate func(protocol.Track)
	Logger   *slog.Logger
}

// Run polls until context cancellation. The first query fires immediately.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		p.poll(ctx, logger)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll(ctx context.Context, logger *slog.Logger) {
	track, err := QueryTrack(ctx, p.Addr, p.Timeout)
	if err != nil {
		logger.Debug("poll cycle skipped", "addr", p.Addr, "error", err.Error())
		return
	}
	if p.OnUpdate != nil {
		p.OnUpdate(track)
	}
}
