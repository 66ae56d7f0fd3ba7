package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strings"

	"github.com/remotedeck/remotedeck/internal/command"
	"github.com/remotedeck/remotedeck/internal/config"
	"github.com/remotedeck/remotedeck/internal/feed"
	"github.com/remotedeck/remotedeck/internal/mixer"
	"github.com/remotedeck/remotedeck/internal/player"
	"github.com/remotedeck/remotedeck/internal/protocol"
	"github.com/remotedeck/remotedeck/internal/server"
)

func (r Runner) commandServe(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	executor, playback := buildExecutor(cfg, logger)

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: listen on %s: %v\n", cfg.Listen, err)
		logger.Error("listen failed", "addr", cfg.Listen, "error", err.Error())
		return 1
	}

	r.printBanner(cfg, executor)
	logger.Info("host listening", "addr", listener.Addr().String())

	if cfg.Feed.Listen != "" {
		feedServer := feed.New(playback, cfg.Poll.Interval.Duration, cfg.Timeouts.Query.Duration, logger)
		go func() {
			if err := feedServer.ListenAndServe(ctx, cfg.Feed.Listen); err != nil {
				logger.Error("feed server stopped", "addr", cfg.Feed.Listen, "error", err.Error())
			}
		}()
	}

	if err := server.Serve(ctx, listener, executor, logger); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("serve failed", "error", err.Error())
		return 1
	}
	return 0
}

// buildExecutor assembles the command tables from configuration. Entries in
// [media.commands] override the native backend bindings for the same token.
func buildExecutor(cfg config.Config, logger *slog.Logger) (*command.Executor, player.Player) {
	spawner := command.NewSpawner(logger)
	media := make(map[string]command.Action)

	var playback player.Player
	switch strings.ToLower(cfg.Media.Backend) {
	case "mpd":
		mpdPlayer := player.NewMPD(cfg.MPD.Address, cfg.MPD.Password)
		playback = mpdPlayer
		media[command.TokenPlayPause] = command.ActionFunc(mpdPlayer.PlayPause)
		media[command.TokenNext] = command.ActionFunc(mpdPlayer.Next)
		media[command.TokenPrev] = command.ActionFunc(mpdPlayer.Previous)
	case "exec":
		if len(cfg.Media.Query) > 0 {
			playback = player.NewScript(cfg.Media.Query)
		}
	}

	if strings.ToLower(cfg.Mixer.Backend) == "pulse" {
		pulseMixer := mixer.NewPulse(cfg.Mixer.Step)
		media[command.TokenVolUp] = command.ActionFunc(pulseMixer.VolumeUp)
		media[command.TokenVolDown] = command.ActionFunc(pulseMixer.VolumeDown)
		media[command.TokenMute] = command.ActionFunc(pulseMixer.ToggleMute)
	}

	for token, argv := range cfg.Media.Commands {
		media[token] = command.ExecAction(spawner, argv)
	}

	executor := command.NewExecutor(cfg.Apps, media, playback, spawner, cfg.Timeouts.Query.Duration, logger)
	return executor, playback
}

func (r Runner) printBanner(cfg config.Config, executor *command.Executor) {
	fmt.Fprintf(r.Stdout, "remotedeck host listening on %s\n", cfg.Listen)
	fmt.Fprintf(r.Stdout, "  apps:  %s\n", joinTokens(executor.AppTokens()))
	fmt.Fprintf(r.Stdout, "  media: %s\n", joinTokens(executor.MediaTokens()))
	fmt.Fprintf(r.Stdout, "  query: %s\n", protocol.TokenGetTrackInfo)
	if cfg.Feed.Listen != "" {
		fmt.Fprintf(r.Stdout, "  feed:  ws://%s/ws\n", cfg.Feed.Listen)
	}
}

func joinTokens(tokens []string) string {
	if len(tokens) == 0 {
		return "(none)"
	}
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}
