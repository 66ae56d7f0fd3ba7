// Package app routes parsed CLI commands onto the deck client and host server.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/remotedeck/remotedeck/internal/cli"
	"github.com/remotedeck/remotedeck/internal/client"
	"github.com/remotedeck/remotedeck/internal/config"
	"github.com/remotedeck/remotedeck/internal/doctor"
	"github.com/remotedeck/remotedeck/internal/logging"
	"github.com/remotedeck/remotedeck/internal/protocol"
	"github.com/remotedeck/remotedeck/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("remotedeck"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("remotedeck"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", string(parsed.Command),
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandServe:
		return r.commandServe(ctx, cfgLoaded.Config, logger)
	case cli.CommandSend:
		return r.commandSend(ctx, cfgLoaded.Config, parsed)
	case cli.CommandTrack:
		return r.commandTrack(ctx, cfgLoaded.Config, parsed)
	case cli.CommandWatch:
		return r.commandWatch(ctx, cfgLoaded.Config, parsed, logger)
	case cli.CommandPing:
		return r.commandPing(ctx, cfgLoaded.Config, parsed)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// target resolves the host address, preferring the --host flag.
func target(cfg config.Config, parsed cli.Parsed) string {
	if parsed.Host != "" {
		return parsed.Host
	}
	return cfg.Host
}

func (r Runner) commandSend(ctx context.Context, cfg config.Config, parsed cli.Parsed) int {
	response, err := client.Send(ctx, target(cfg, parsed), parsed.Token, cfg.Timeouts.Request.Duration)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(r.Stdout, response)
	return 0
}

func (r Runner) commandTrack(ctx context.Context, cfg config.Config, parsed cli.Parsed) int {
	track, err := client.QueryTrack(ctx, target(cfg, parsed), cfg.Timeouts.Request.Duration)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(r.Stdout, formatTrack(track))
	return 0
}

func (r Runner) commandWatch(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	poller := &client.Poller{
		Addr:     target(cfg, parsed),
		Interval: cfg.Poll.Interval.Duration,
		Timeout:  cfg.Timeouts.Request.Duration,
		OnUpdate: func(track protocol.Track) {
			fmt.Fprintln(r.Stdout, formatTrack(track))
		},
		Logger: logger,
	}
	poller.Run(ctx)
	return 0
}

func (r Runner) commandPing(ctx context.Context, cfg config.Config, parsed cli.Parsed) int {
	addr := target(cfg, parsed)
	if client.Probe(ctx, addr, cfg.Timeouts.Probe.Duration) {
		fmt.Fprintf(r.Stdout, "%s reachable\n", addr)
		return 0
	}
	fmt.Fprintf(r.Stderr, "%s unreachable\n", addr)
	return 1
}

// formatTrack renders a snapshot for terminal output.
func formatTrack(track protocol.Track) string {
	if track.IsZero() {
		return "nothing playing"
	}

	state := "paused"
	if track.Playing {
		state = "playing"
	}
	return fmt.Sprintf("%s - %s [%s] %s/%s %s",
		track.Name,
		track.Artist,
		track.Album,
		formatSeconds(track.PositionS),
		formatSeconds(float64(track.DurationMS)/1000),
		state,
	)
}

// formatSeconds renders M:SS, flooring to whole seconds.
func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "0:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
