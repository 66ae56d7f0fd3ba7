package player

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fhs/gompd/v2/mpd"

	"github.com/remotedeck/remotedeck/internal/protocol"
)

// MPD drives a Music Player Daemon instance. Each operation dials a fresh
// connection, matching the appliance's stateless one-exchange model; MPD
// accepts and discards idle connections cheaply.
//
// The mpd client library is not context-aware, so each operation runs in its
// own goroutine and is abandoned once the context expires. The fresh-dial
// model keeps an abandoned connection from poisoning later operations.
type MPD struct {
	network  string
	address  string
	password string
}

// NewMPD builds an MPD backend. Addresses starting with "/" are treated as
// unix socket paths.
func NewMPD(address, password string) *MPD {
	network := "tcp"
	if strings.HasPrefix(address, "/") {
		network = "unix"
	}
	return &MPD{network: network, address: address, password: password}
}

func (m *MPD) dial() (*mpd.Client, error) {
	client, err := mpd.DialAuthenticated(m.network, m.address, m.password)
	if err != nil {
		return nil, fmt.Errorf("dial mpd %s: %w", m.address, err)
	}
	return client, nil
}

type currentResult struct {
	track protocol.Track
	err   error
}

// Current reports the playing or paused track, or the zero Track when stopped.
// The context bounds the whole exchange, dial included.
func (m *MPD) Current(ctx context.Context) (protocol.Track, error) {
	results := make(chan currentResult, 1)
	go func() {
		track, err := m.current()
		results <- currentResult{track: track, err: err}
	}()

	select {
	case <-ctx.Done():
		return protocol.Track{}, fmt.Errorf("mpd query: %w", ctx.Err())
	case res := <-results:
		return res.track, res.err
	}
}

func (m *MPD) current() (protocol.Track, error) {
	client, err := m.dial()
	if err != nil {
		return protocol.Track{}, err
	}
	defer client.Close()

	status, err := client.Status()
	if err != nil {
		return protocol.Track{}, fmt.Errorf("read mpd status: %w", err)
	}
	song, err := client.CurrentSong()
	if err != nil {
		return protocol.Track{}, fmt.Errorf("read mpd current song: %w", err)
	}

	return trackFromAttrs(status, song), nil
}

// run executes one dial-and-control exchange, honoring context cancellation.
func (m *MPD) run(ctx context.Context, fn func(*mpd.Client) error) error {
	errs := make(chan error, 1)
	go func() {
		client, err := m.dial()
		if err != nil {
			errs <- err
			return
		}
		defer client.Close()
		errs <- fn(client)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("mpd control: %w", ctx.Err())
	case err := <-errs:
		return err
	}
}

// PlayPause toggles playback, starting the queue when stopped.
func (m *MPD) PlayPause(ctx context.Context) error {
	return m.run(ctx, func(client *mpd.Client) error {
		status, err := client.Status()
		if err != nil {
			return fmt.Errorf("read mpd status: %w", err)
		}
		if status["state"] == "play" {
			return client.Pause(true)
		}
		return client.Play(-1)
	})
}

// Next skips to the next queue entry.
func (m *MPD) Next(ctx context.Context) error {
	return m.run(ctx, func(client *mpd.Client) error {
		return client.Next()
	})
}

// Previous returns to the previous queue entry.
func (m *MPD) Previous(ctx context.Context) error {
	return m.run(ctx, func(client *mpd.Client) error {
		return client.Previous()
	})
}

// trackFromAttrs maps MPD status and currentsong attributes onto the wire
// snapshot. Stopped players map to the zero Track.
func trackFromAttrs(status, song mpd.Attrs) protocol.Track {
	state := status["state"]
	if state != "play" && state != "pause" {
		return protocol.Track{}
	}

	track := protocol.Track{
		Name:    song["Title"],
		Artist:  song["Artist"],
		Album:   song["Album"],
		Playing: state == "play",
	}
	if track.Name == "" {
		// Streams without tags still surface their file name.
		track.Name = song["file"]
	}

	if duration, err := strconv.ParseFloat(status["duration"], 64); err == nil && duration > 0 {
		track.DurationMS = int64(duration * 1000)
	} else if seconds, err := strconv.Atoi(song["Time"]); err == nil && seconds > 0 {
		track.DurationMS = int64(seconds) * 1000
	}
	if elapsed, err := strconv.ParseFloat(status["elapsed"], 64); err == nil && elapsed >= 0 {
		track.PositionS = elapsed
	}

	return track
}
