// Package config resolves, parses, validates, and defaults remotedeck
// configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by remotedeck.
// Tables are loaded once at startup and treated as immutable afterwards.
type Config struct {
	Listen string `toml:"listen"`
	Host   string `toml:"host"`

	Timeouts TimeoutConfig `toml:"timeouts"`
	Poll     PollConfig    `toml:"poll"`

	Apps  map[string][]string `toml:"apps"`
	Media MediaConfig         `toml:"media"`
	MPD   MPDConfig           `toml:"mpd"`
	Mixer MixerConfig         `toml:"mixer"`
	Feed  FeedConfig          `toml:"feed"`
}

// TimeoutConfig bounds the per-request, playback-query, and probe operations.
type TimeoutConfig struct {
	Request Duration `toml:"request"`
	Query   Duration `toml:"query"`
	Probe   Duration `toml:"probe"`
}

// PollConfig controls the deck-side track polling cadence.
type PollConfig struct {
	Interval Duration `toml:"interval"`
}

// MediaConfig selects the media-control backend and carries the exec command
// table. Command table entries override native backend mappings per token.
type MediaConfig struct {
	Backend  string              `toml:"backend"`
	Query    []string            `toml:"query"`
	Commands map[string][]string `toml:"commands"`
}

// MPDConfig locates the Music Player Daemon for the mpd backend.
type MPDConfig struct {
	Address  string `toml:"address"`
	Password string `toml:"password"`
}

// MixerConfig selects the volume backend and step size.
type MixerConfig struct {
	Backend string `toml:"backend"`
	Step    int    `toml:"step"`
}

// FeedConfig controls the optional WebSocket now-playing feed. An empty
// listen address disables the feed.
type FeedConfig struct {
	Listen string `toml:"listen"`
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Message string
}

// Duration wraps time.Duration for TOML string values like "3s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
