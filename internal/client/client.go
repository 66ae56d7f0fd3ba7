// Package client implements the deck-side command primitive: one short-lived
// connection per request, one token out, one response line back.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/remotedeck/remotedeck/internal/protocol"
)

// Send opens a fresh connection to addr, writes one token, reads one response
// line, and closes. The timeout bounds connect, write, and read together.
// Failures are reported once to the caller and never retried.
func Send(ctx context.Context, addr, token string, timeout time.Duration) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("command token cannot be empty")
	}
	if len(token) > protocol.MaxLineBytes {
		return "", fmt.Errorf("command token exceeds %d bytes", protocol.MaxLineBytes)
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return "", fmt.Errorf("set deadline: %w", err)
	}

	if _, err := io.WriteString(conn, token+"\n"); err != nil {
		return "", fmt.Errorf("send command: %w", err)
	}

	line, err := readResponse(bufio.NewReader(conn))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return line, nil
}

// Probe tests reachability with a bare TCP handshake; no data is exchanged.
func Probe(ctx context.Context, addr string, timeout time.Duration) bool {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// QueryTrack performs the track-info exchange and parses the payload.
func QueryTrack(ctx context.Context, addr string, timeout time.Duration) (protocol.Track, error) {
	line, err := Send(ctx, addr, protocol.TokenGetTrackInfo, timeout)
	if err != nil {
		return protocol.Track{}, err
	}
	return protocol.ParseTrack(line)
}

// readResponse reads one newline-terminated line, accepting a clean EOF after
// partial data so legacy servers that close without a terminator still work.
// The read is bounded byte by byte so a misbehaving server cannot force an
// oversized buffer before the length check.
func readResponse(reader *bufio.Reader) (string, error) {
	buf := make([]byte, 0, 64)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		if b == '\n' {
			break
		}
		buf = append(buf, b)
		if len(buf) > protocol.MaxLineBytes {
			return "", fmt.Errorf("response exceeds %d bytes", protocol.MaxLineBytes)
		}
	}

	line := strings.TrimSpace(string(buf))
	if line == "" {
		return "", errors.New("connection closed without a response")
	}
	return line, nil
}
