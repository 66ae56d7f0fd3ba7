package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/remotedeck/remotedeck/internal/protocol"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if err := validateAddr("listen", cfg.Listen); err != nil {
		return nil, err
	}
	if err := validateAddr("host", cfg.Host); err != nil {
		return nil, err
	}

	if cfg.Timeouts.Request.Duration <= 0 {
		return nil, fmt.Errorf("timeouts.request must be > 0")
	}
	if cfg.Timeouts.Query.Duration <= 0 {
		return nil, fmt.Errorf("timeouts.query must be > 0")
	}
	if cfg.Timeouts.Probe.Duration <= 0 {
		return nil, fmt.Errorf("timeouts.probe must be > 0")
	}
	if cfg.Poll.Interval.Duration <= 0 {
		return nil, fmt.Errorf("poll.interval must be > 0")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Media.Backend))
	if backend != "mpd" && backend != "exec" {
		return nil, fmt.Errorf("media.backend must be one of: mpd, exec")
	}
	if backend == "mpd" && strings.TrimSpace(cfg.MPD.Address) == "" {
		return nil, fmt.Errorf("mpd.address must not be empty when media.backend=mpd")
	}
	if backend == "exec" && len(cfg.Media.Query) == 0 {
		warnings = append(warnings, Warning{
			Message: "media.query is not set; track-info queries will report nothing playing",
		})
	}

	mixerBackend := strings.ToLower(strings.TrimSpace(cfg.Mixer.Backend))
	if mixerBackend != "pulse" && mixerBackend != "exec" {
		return nil, fmt.Errorf("mixer.backend must be one of: pulse, exec")
	}
	if cfg.Mixer.Step <= 0 || cfg.Mixer.Step > 100 {
		return nil, fmt.Errorf("mixer.step must be in 1..100")
	}

	if err := validateTable("apps", cfg.Apps, &warnings); err != nil {
		return nil, err
	}
	if err := validateTable("media.commands", cfg.Media.Commands, &warnings); err != nil {
		return nil, err
	}

	if len(cfg.Apps) == 0 {
		warnings = append(warnings, Warning{Message: "apps table is empty; no launch tokens registered"})
	}

	return warnings, nil
}

// validateTable checks token and argv shape for one command table.
func validateTable(name string, table map[string][]string, warnings *[]Warning) error {
	for token, argv := range table {
		if strings.TrimSpace(token) == "" {
			return fmt.Errorf("%s: command token cannot be empty", name)
		}
		if strings.ContainsAny(token, " \t\r\n") {
			return fmt.Errorf("%s: token %q must not contain whitespace", name, token)
		}
		if token == protocol.TokenGetTrackInfo {
			return fmt.Errorf("%s: token %q is reserved for the playback query", name, token)
		}
		if len(argv) == 0 {
			return fmt.Errorf("%s: token %q has an empty command", name, token)
		}
		if token != strings.ToUpper(token) {
			*warnings = append(*warnings, Warning{
				Message: fmt.Sprintf("%s: token %q is not uppercase; deck buttons send uppercase tokens", name, token),
			})
		}
	}
	return nil
}

func validateAddr(name, addr string) error {
	if strings.TrimSpace(addr) == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s %q is not a host:port address: %w", name, addr, err)
	}
	return nil
}
