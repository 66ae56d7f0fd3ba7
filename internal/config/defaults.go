package config

import "time"

// Default returns the canonical runtime configuration used when no file is
// present. App and media command tables default empty: they are host-specific
// and owned by the operator.
func Default() Config {
	return Config{
		Listen: "0.0.0.0:9999",
		Host:   "127.0.0.1:9999",
		Timeouts: TimeoutConfig{
			Request: Duration{3 * time.Second},
			Query:   Duration{5 * time.Second},
			Probe:   Duration{2 * time.Second},
		},
		Poll: PollConfig{Interval: Duration{time.Second}},
		Apps: map[string][]string{},
		Media: MediaConfig{
			Backend:  "mpd",
			Commands: map[string][]string{},
		},
		MPD: MPDConfig{Address: "127.0.0.1:6600"},
		Mixer: MixerConfig{
			Backend: "pulse",
			Step:    10,
		},
		Feed: FeedConfig{},
	}
}
