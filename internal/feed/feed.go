// Package feed streams now-playing lines to WebSocket subscribers so deck
// UIs can render progress without polling the TCP command port.
package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/remotedeck/remotedeck/internal/player"
	"github.com/remotedeck/remotedeck/internal/protocol"
)

// Server pushes one TRACK line per interval to each connected subscriber.
// Query failures are normalized to the empty track line, same as the TCP
// query path.
type Server struct {
	player   player.Player
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// New builds a feed server over the given playback source.
func New(p player.Player, interval, queryTimeout time.Duration, logger *slog.Logger) *Server {
	if interval <= 0 {
		interval = time.Second
	}
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{player: p, interval: interval, timeout: queryTimeout, logger: logger}
}

// Handler returns the WebSocket upgrade endpoint.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

// ListenAndServe runs an HTTP listener exposing the feed at /ws until the
// context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.Handler())

	httpServer := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Deck devices connect from the LAN with arbitrary origins.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Warn("feed accept failed", "error", err.Error())
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	s.logger.Info("feed subscriber connected", "remote", r.RemoteAddr)
	defer s.logger.Info("feed subscriber disconnected", "remote", r.RemoteAddr)

	ctx := r.Context()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := conn.Write(ctx, websocket.MessageText, []byte(s.trackLine(ctx))); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) trackLine(ctx context.Context) string {
	if s.player == nil {
		return protocol.FormatTrack(protocol.Track{})
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	track, err := s.player.Current(queryCtx)
	if err != nil {
		s.logger.Debug("feed playback query failed", "error", err.Error())
		return protocol.FormatTrack(protocol.Track{})
	}
	return protocol.FormatTrack(track)
}
