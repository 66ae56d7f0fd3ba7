package client

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// startStubServer accepts connections and answers every command line with
// respond(token). Returns the listen address.
func startStubServer(t *testing.T, respond func(token string) string) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				reader := bufio.NewReader(c)
				for {
					line, err := reader.ReadString('\n')
					if err != nil {
						return
					}
					token := strings.TrimSpace(line)
					if token == "" {
						return
					}
					if _, err := io.WriteString(c, respond(token)+"\n"); err != nil {
						return
					}
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

func TestSendRoundTrip(t *testing.T) {
	addr := startStubServer(t, func(token string) string {
		require.Equal(t, "MEDIA_VOL_UP", token)
		return "OK: MEDIA_VOL_UP"
	})

	resp, err := Send(context.Background(), addr, "MEDIA_VOL_UP", time.Second)
	require.NoError(t, err)
	require.Equal(t, "OK: MEDIA_VOL_UP", resp)
}

func TestSendRejectsEmptyToken(t *testing.T) {
	_, err := Send(context.Background(), "127.0.0.1:1", "   ", time.Second)
	require.Error(t, err)
}

func TestSendConnectRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, err = Send(context.Background(), addr, "FOO", 500*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "connect")
}

func TestSendServerClosesWithoutResponse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		_ = conn.Close()
	}()

	_, err = Send(context.Background(), listener.Addr().String(), "FOO", time.Second)
	require.Error(t, err)
	require.Contains(t, err.Error(), "read response")
}

func TestSendLegacyServerWithoutNewline(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)
		_, _ = reader.ReadString('\n')
		_, _ = io.WriteString(conn, "UNKNOWN: FOO")
	}()

	resp, err := Send(context.Background(), listener.Addr().String(), "FOO", time.Second)
	require.NoError(t, err)
	require.Equal(t, "UNKNOWN: FOO", resp)
}

func TestSendOversizedResponseRejected(t *testing.T) {
	addr := startStubServer(t, func(string) string {
		return "OK: " + strings.Repeat("A", 64*1024)
	})

	_, err := Send(context.Background(), addr, "FOO", time.Second)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds")
}

func TestProbe(t *testing.T) {
	addr := startStubServer(t, func(string) string { return "OK: noop" })
	require.True(t, Probe(context.Background(), addr, time.Second))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closedAddr := listener.Addr().String()
	require.NoError(t, listener.Close())

	require.False(t, Probe(context.Background(), closedAddr, 500*time.Millisecond))
}

func TestQueryTrackParsesResponse(t *testing.T) {
	addr := startStubServer(t, func(token string) string {
		require.Equal(t, "GET_TRACK_INFO", token)
		return "TRACK:Song|Artist|Album|183000|42.5|true"
	})

	track, err := QueryTrack(context.Background(), addr, time.Second)
	require.NoError(t, err)
	require.Equal(t, "Song", track.Name)
	require.Equal(t, int64(183000), track.DurationMS)
	require.Equal(t, 42.5, track.PositionS)
	require.True(t, track.Playing)
}

func TestQueryTrackEmptySentinel(t *testing.T) {
	addr := startStubServer(t, func(string) string {
		return "TRACK:||||||false"
	})

	track, err := QueryTrack(context.Background(), addr, time.Second)
	require.NoError(t, err)
	require.True(t, track.IsZero())
}
