package server

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/remotedeck/remotedeck/internal/protocol"
)

type echoExecutor struct{}

func (echoExecutor) Execute(_ context.Context, token string) string {
	if token == "OPEN_TERMINAL" {
		return protocol.OK("Launched OPEN_TERMINAL")
	}
	return protocol.Unknown(token)
}

func startServer(t *testing.T, executor Executor) (string, context.CancelFunc, chan error) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, executor, nil)
	}()

	return listener.Addr().String(), cancel, serveDone
}

func TestServeSingleExchange(t *testing.T) {
	addr, cancel, serveDone := startServer(t, echoExecutor{})
	defer cancel()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, "OPEN_TERMINAL\n")
	require.NoError(t, err)

	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "OK: Launched OPEN_TERMINAL\n", line)

	cancel()
	require.NoError(t, <-serveDone)
}

func TestServeMultipleExchangesPerConnection(t *testing.T) {
	addr, cancel, _ := startServer(t, echoExecutor{})
	defer cancel()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	for i := 0; i < 3; i++ {
		_, err = io.WriteString(conn, "FOO\n")
		require.NoError(t, err)

		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		require.Equal(t, "UNKNOWN: FOO\n", line)
	}
}

func TestServeLegacyClientWithoutNewline(t *testing.T) {
	addr, cancel, _ := startServer(t, echoExecutor{})
	defer cancel()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, "OPEN_TERMINAL")
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "OK: Launched OPEN_TERMINAL\n", line)
}

func TestServeEmptyPayloadEndsSession(t *testing.T) {
	addr, cancel, _ := startServer(t, echoExecutor{})
	defer cancel()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, "\n")
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = bufio.NewReader(conn).ReadString('\n')
	require.ErrorIs(t, err, io.EOF)
}

func TestServeConcurrentConnectionsNoCrossTalk(t *testing.T) {
	addr, cancel, _ := startServer(t, echoExecutor{})
	defer cancel()

	var wg sync.WaitGroup
	for _, token := range []string{"OPEN_TERMINAL", "FOO", "BAR", "OPEN_TERMINAL"} {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()

			conn, err := net.Dial("tcp", addr)
			require.NoError(t, err)
			defer conn.Close()

			_, err = io.WriteString(conn, token+"\n")
			require.NoError(t, err)

			line, err := bufio.NewReader(conn).ReadString('\n')
			require.NoError(t, err)
			if token == "OPEN_TERMINAL" {
				require.Equal(t, "OK: Launched OPEN_TERMINAL\n", line)
			} else {
				require.Equal(t, "UNKNOWN: "+token+"\n", line)
			}
		}(token)
	}
	wg.Wait()
}

func TestServeDisconnectDoesNotAffectOtherConnections(t *testing.T) {
	addr, cancel, _ := startServer(t, echoExecutor{})
	defer cancel()

	abrupt, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	require.NoError(t, abrupt.Close())

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, "FOO\n")
	require.NoError(t, err)

	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "UNKNOWN: FOO\n", line)
}

func TestServeOversizedCommandRejected(t *testing.T) {
	addr, cancel, _ := startServer(t, echoExecutor{})
	defer cancel()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, strings.Repeat("A", protocol.MaxLineBytes+10)+"\n")
	require.NoError(t, err)

	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "ERROR: "), line)
}

func TestServeStopsOnContextCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() {
		serveDone <- Serve(ctx, listener, echoExecutor{}, nil)
	}()

	cancel()
	select {
	case err := <-serveDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}

func TestServeStopsWithIdleConnectionOpen(t *testing.T) {
	addr, cancel, serveDone := startServer(t, echoExecutor{})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	// Establish a live session before cancelling, then leave it idle.
	_, err = io.WriteString(conn, "FOO\n")
	require.NoError(t, err)
	_, err = reader.ReadString('\n')
	require.NoError(t, err)

	cancel()
	select {
	case err := <-serveDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not stop while an idle connection stayed open")
	}

	// The idle session was closed by the shutdown sweep.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = reader.ReadString('\n')
	require.Error(t, err)
}

func TestReadCommandTrimsWhitespace(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("  MEDIA_NEXT  \r\n"))
	token, err := readCommand(reader)
	require.NoError(t, err)
	require.Equal(t, "MEDIA_NEXT", token)
}

func TestReadCommandEOFWithoutData(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader(""))
	_, err := readCommand(reader)
	require.ErrorIs(t, err, io.EOF)
}
