// Package server accepts deck connections and runs per-connection command
// exchange loops.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/remotedeck/remotedeck/internal/protocol"
)

// Executor resolves one command token to a response line.
type Executor interface {
	Execute(ctx context.Context, token string) string
}

// errLineTooLong reports a request exceeding protocol.MaxLineBytes.
var errLineTooLong = errors.New("command exceeds maximum line length")

// Serve accepts deck clients until context cancellation or listener close.
// Each connection gets its own goroutine and exchange loop; a connection's
// errors never affect the listener or other connections.
func Serve(ctx context.Context, listener net.Listener, executor Executor, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var (
		wg      sync.WaitGroup
		connsMu sync.Mutex
		conns   = make(map[net.Conn]struct{})
	)

	// Cancellation closes the listener and every live connection so blocked
	// reads unwind and Serve can drain.
	go func() {
		<-ctx.Done()
		_ = listener.Close()
		connsMu.Lock()
		for c := range conns {
			_ = c.Close()
		}
		connsMu.Unlock()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept deck connection: %w", err)
		}

		connsMu.Lock()
		conns[conn] = struct{}{}
		connsMu.Unlock()
		if ctx.Err() != nil {
			// Cancelled between Accept and registration; the close sweep may
			// have already run.
			_ = conn.Close()
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer func() {
				connsMu.Lock()
				delete(conns, c)
				connsMu.Unlock()
				_ = c.Close()
			}()
			handleConn(ctx, c, executor, logger)
		}(conn)
	}
}

// handleConn runs the request/response exchange loop for one deck session.
// Strict pairing: one response is written before the next command is read.
func handleConn(ctx context.Context, conn net.Conn, executor Executor, logger *slog.Logger) {
	remote := conn.RemoteAddr().String()
	logger.Info("deck connected", "remote", remote)

	reader := bufio.NewReader(conn)
	for {
		token, err := readCommand(reader)
		if err != nil {
			if errors.Is(err, errLineTooLong) {
				_, _ = io.WriteString(conn, protocol.Error(err.Error())+"\n")
				logger.Warn("oversized command rejected", "remote", remote)
			} else if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.Warn("read command failed", "remote", remote, "error", err.Error())
			}
			break
		}
		if token == "" {
			// Empty payload ends the session.
			break
		}

		logger.Info("command received", "remote", remote, "token", token)
		response := executor.Execute(ctx, token)
		if _, err := io.WriteString(conn, response+"\n"); err != nil {
			logger.Warn("write response failed", "remote", remote, "error", err.Error())
			break
		}
	}

	logger.Info("deck disconnected", "remote", remote)
}

// readCommand reads one command line, bounded by protocol.MaxLineBytes.
// A clean EOF after partial data still yields a complete token so clients
// that send a bare token and half-close keep working.
func readCommand(reader *bufio.Reader) (string, error) {
	buf := make([]byte, 0, 64)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && len(strings.TrimSpace(string(buf))) > 0 {
				return strings.TrimSpace(string(buf)), nil
			}
			return "", err
		}
		if b == '\n' {
			return strings.TrimSpace(string(buf)), nil
		}
		buf = append(buf, b)
		if len(buf) > protocol.MaxLineBytes {
			return "", errLineTooLong
		}
	}
}
