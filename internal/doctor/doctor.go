// Package doctor runs runtime readiness diagnostics for config, command
// tables, playback backends, and host reachability.
package doctor

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/remotedeck/remotedeck/internal/client"
	"github.com/remotedeck/remotedeck/internal/config"
	"github.com/remotedeck/remotedeck/internal/mixer"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, loaded config.Loaded) Report {
	cfg := loaded.Config
	checks := []Check{}

	configMessage := fmt.Sprintf("loaded %q", loaded.Path)
	if !loaded.Exists {
		configMessage = fmt.Sprintf("%q not found; defaults in effect", loaded.Path)
	}
	checks = append(checks, Check{Name: "config", Pass: true, Message: configMessage})

	checks = append(checks, checkAddr("listen address", cfg.Listen))
	checks = append(checks, checkCommandTable("apps", cfg.Apps))
	checks = append(checks, checkCommandTable("media commands", cfg.Media.Commands))
	checks = append(checks, checkMediaBackend(cfg))
	checks = append(checks, checkMixerBackend(cfg))
	checks = append(checks, checkHost(ctx, cfg))

	return Report{Checks: checks}
}

func checkAddr(name, addr string) Check {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	return Check{Name: name, Pass: true, Message: addr}
}

// checkCommandTable verifies every table entry's binary resolves on PATH.
func checkCommandTable(name string, table map[string][]string) Check {
	if len(table) == 0 {
		return Check{Name: name, Pass: true, Message: "no commands registered"}
	}

	missing := []string{}
	for token, argv := range table {
		if len(argv) == 0 {
			missing = append(missing, token)
			continue
		}
		if _, err := exec.LookPath(argv[0]); err != nil {
			missing = append(missing, fmt.Sprintf("%s (%s)", token, argv[0]))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Check{
			Name:    name,
			Pass:    false,
			Message: "unresolved commands: " + strings.Join(missing, ", "),
		}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("%d commands resolved", len(table))}
}

func checkMediaBackend(cfg config.Config) Check {
	switch strings.ToLower(strings.TrimSpace(cfg.Media.Backend)) {
	case "mpd":
		network := "tcp"
		if strings.HasPrefix(cfg.MPD.Address, "/") {
			network = "unix"
		}
		conn, err := net.DialTimeout(network, cfg.MPD.Address, time.Second)
		if err != nil {
			return Check{Name: "media backend", Pass: false, Message: fmt.Sprintf("mpd unreachable: %v", err)}
		}
		_ = conn.Close()
		return Check{Name: "media backend", Pass: true, Message: "mpd reachable at " + cfg.MPD.Address}
	case "exec":
		if len(cfg.Media.Query) == 0 {
			return Check{Name: "media backend", Pass: true, Message: "exec backend without track query"}
		}
		if _, err := exec.LookPath(cfg.Media.Query[0]); err != nil {
			return Check{Name: "media backend", Pass: false, Message: fmt.Sprintf("track query command: %v", err)}
		}
		return Check{Name: "media backend", Pass: true, Message: "exec backend ready"}
	default:
		return Check{Name: "media backend", Pass: false, Message: "unknown backend " + cfg.Media.Backend}
	}
}

func checkMixerBackend(cfg config.Config) Check {
	switch strings.ToLower(strings.TrimSpace(cfg.Mixer.Backend)) {
	case "pulse":
		if err := mixer.Probe(); err != nil {
			return Check{Name: "mixer backend", Pass: false, Message: err.Error()}
		}
		return Check{Name: "mixer backend", Pass: true, Message: "pulse server reachable"}
	case "exec":
		return Check{Name: "mixer backend", Pass: true, Message: "exec backend (volume tokens from media commands)"}
	default:
		return Check{Name: "mixer backend", Pass: false, Message: "unknown backend " + cfg.Mixer.Backend}
	}
}

// checkHost probes the configured host target; useful on the deck side only,
// so an unreachable host is reported but does not fail the run when the
// target is the local listen default.
func checkHost(ctx context.Context, cfg config.Config) Check {
	if client.Probe(ctx, cfg.Host, cfg.Timeouts.Probe.Duration) {
		return Check{Name: "host", Pass: true, Message: cfg.Host + " reachable"}
	}
	return Check{Name: "host", Pass: true, Message: cfg.Host + " not reachable (expected when running host-side)"}
}
