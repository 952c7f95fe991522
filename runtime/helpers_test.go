package runtime

import (
	"bufio"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"groupchat/repositories"
)

// testPeer pairs a server-side Session with the client end of its pipe.
// A drain goroutine collects everything the server writes so synchronous
// pipe writes never block a test.
type testPeer struct {
	session *Session
	conn    net.Conn
	lines   chan string
}

func newTestPeer(t *testing.T, username string) *testPeer {
	t.Helper()
	serverSide, clientSide := net.Pipe()

	peer := &testPeer{
		session: NewSession(serverSide, bufio.NewReader(serverSide), username, slog.Default()),
		conn:    clientSide,
		lines:   make(chan string, 64),
	}
	go func() {
		reader := bufio.NewReader(clientSide)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				close(peer.lines)
				return
			}
			peer.lines <- strings.TrimRight(line, "\r\n")
		}
	}()
	t.Cleanup(func() { _ = clientSide.Close() })
	return peer
}

// expectLine waits for the next line received by the peer.
func (p *testPeer) expectLine(t *testing.T, want string) {
	t.Helper()
	select {
	case line, ok := <-p.lines:
		require.True(t, ok, "connection closed while waiting for %q", want)
		require.Equal(t, want, line)
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for %q", want)
	}
}

// expectSilence asserts the peer receives nothing for a short window.
func (p *testPeer) expectSilence(t *testing.T) {
	t.Helper()
	select {
	case line, ok := <-p.lines:
		if ok {
			t.Fatalf("unexpected line %q", line)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestRouter(t *testing.T) (*Router, *Registry, repositories.LogRepository) {
	t.Helper()
	registry := NewRegistry()
	repo := repositories.NewFileLogRepository(filepath.Join(t.TempDir(), "chatLog.json"), slog.Default())
	router := NewRouter(registry, repo, nil, slog.Default())
	return router, registry, repo
}
