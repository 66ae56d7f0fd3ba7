// Package command maps deck tokens to host side effects and response lines.
package command

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/remotedeck/remotedeck/internal/protocol"
)

// Media-control tokens with native backend mappings. Deployments may remap or
// extend them through the media command table in config.
const (
	TokenPlayPause = "MEDIA_PLAY_PAUSE"
	TokenNext      = "MEDIA_NEXT"
	TokenPrev      = "MEDIA_PREV"
	TokenVolUp     = "MEDIA_VOL_UP"
	TokenVolDown   = "MEDIA_VOL_DOWN"
	TokenMute      = "MEDIA_MUTE"
)

// Action starts one media side effect. Only initiation failures are reported;
// completion is never awaited by the executor.
type Action interface {
	Start(ctx context.Context) error
}

// ActionFunc adapts a function to the Action interface.
type ActionFunc func(ctx context.Context) error

func (f ActionFunc) Start(ctx context.Context) error {
	return f(ctx)
}

// ExecAction returns an Action that spawns argv fire-and-forget.
func ExecAction(spawner Spawner, argv []string) Action {
	return ActionFunc(func(context.Context) error {
		return spawner.Start(argv)
	})
}

// Player answers current-playback queries for the track-info token.
type Player interface {
	Current(ctx context.Context) (protocol.Track, error)
}

// DefaultQueryTimeout bounds the playback query when config does not set one.
const DefaultQueryTimeout = 5 * time.Second

// Executor dispatches command tokens against immutable tables built once at
// startup. It is safe for concurrent use: lookups are read-only and side
// effects are independent spawns.
type Executor struct {
	apps         map[string][]string
	media        map[string]Action
	player       Player
	spawner      Spawner
	queryTimeout time.Duration
	logger       *slog.Logger
}

// NewExecutor builds an executor over the given command tables. player may be
// nil, in which case every track-info query yields the empty track response.
func NewExecutor(
	apps map[string][]string,
	media map[string]Action,
	player Player,
	spawner Spawner,
	queryTimeout time.Duration,
	logger *slog.Logger,
) *Executor {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{
		apps:         apps,
		media:        media,
		player:       player,
		spawner:      spawner,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
}

// AppTokens lists the configured app-launch tokens in arbitrary order.
func (e *Executor) AppTokens() []string {
	tokens := make([]string, 0, len(e.apps))
	for token := range e.apps {
		tokens = append(tokens, token)
	}
	return tokens
}

// MediaTokens lists the bound media-control tokens in arbitrary order.
func (e *Executor) MediaTokens() []string {
	tokens := make([]string, 0, len(e.media))
	for token := range e.media {
		tokens = append(tokens, token)
	}
	return tokens
}

// Execute maps one token to a response line, triggering at most one side
// effect. Precedence: track query, app launch, media control, unknown.
func (e *Executor) Execute(ctx context.Context, token string) string {
	if token == protocol.TokenGetTrackInfo {
		return e.trackInfo(ctx)
	}

	if argv, ok := e.apps[token]; ok {
		if err := e.spawner.Start(argv); err != nil {
			e.logger.Error("app launch failed", "token", token, "error", err.Error())
			return protocol.Error(err.Error())
		}
		e.logger.Info("app launched", "token", token, "command", argv[0])
		return protocol.OK("Launched " + token)
	}

	if action, ok := e.media[token]; ok {
		if err := action.Start(ctx); err != nil {
			e.logger.Error("media action failed", "token", token, "error", err.Error())
			return protocol.Error(err.Error())
		}
		e.logger.Info("media action dispatched", "token", token)
		return protocol.OK(token)
	}

	e.logger.Warn("unknown token", "token", token)
	return protocol.Unknown(token)
}

// trackInfo queries the player with a bounded timeout. Every failure mode
// normalizes to the empty track line; the caller cannot distinguish "nothing
// playing" from "query failed" and nothing propagates past this boundary.
func (e *Executor) trackInfo(ctx context.Context) string {
	if e.player == nil {
		return protocol.FormatTrack(protocol.Track{})
	}

	queryCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	track, err := e.player.Current(queryCtx)
	if err != nil {
		e.logger.Warn("playback query failed", "error", err.Error())
		return protocol.FormatTrack(protocol.Track{})
	}
	return protocol.FormatTrack(track)
}
