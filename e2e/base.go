package e2e

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"

	"groupchat/domain/event"
	"groupchat/projection"
	"groupchat/repositories"
	"groupchat/runtime"
	"groupchat/runtime/workers"
	"groupchat/sink"
)

type BaseChatSuite struct {
	suite.Suite
	Config Config

	// Timeline observes the in-process server's event stream, letting
	// scenarios assert on the projected history after the TCP traffic.
	Timeline *projection.Timeline

	addr   string
	cancel context.CancelFunc
	done   chan struct{}
}

// SetupSuite loads the environment configuration, then either targets the
// configured server or boots a full in-process one on a loopback port.
func (s *BaseChatSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerAddr != "" {
		s.addr = s.Config.ServerAddr
		return
	}

	logger := slog.New(slog.NewTextHandler(testWriter{s.T()}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	repo := repositories.NewFileLogRepository(filepath.Join(s.T().TempDir(), "chatLog.json"), logger)

	events := make(chan event.DomainEvent, 64)
	registry := runtime.NewRegistry()
	router := runtime.NewRouter(registry, repo, events, logger)
	listener := runtime.NewListener("127.0.0.1:0", router, logger)

	s.Timeline = projection.NewTimeline(64)
	fanout := workers.NewEventFanout(logger, events)
	fanout.Add(sink.NewMetricsSink(), s.Timeline)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		workers.NewSupervisor(logger, time.Second).
			Add(listener, fanout).
			Run(ctx)
	}()

	s.Require().Eventually(func() bool {
		return listener.Addr() != nil
	}, 2*time.Second, 10*time.Millisecond, "listener never bound")
	s.addr = listener.Addr().String()
}

func (s *BaseChatSuite) TearDownSuite() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

// Dial connects a named participant, performs the username handshake and
// starts draining server lines into a channel for Expect-style assertions.
func (s *BaseChatSuite) Dial(username string) *ChatClient {
	s.Step(fmt.Sprintf("connect %q to %s", username, s.addr))

	conn, err := net.Dial("tcp", s.addr)
	s.Require().NoError(err, "Failed to connect to chat server at "+s.addr)

	c := &ChatClient{
		suite:    s,
		Username: username,
		conn:     conn,
		lines:    make(chan string, 64),
	}
	go c.drain()

	c.SendRaw(username)
	return c
}

// Step prints a colorized header for a scenario step in the test logs.
func (s *BaseChatSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

type ChatClient struct {
	suite    *BaseChatSuite
	Username string
	conn     net.Conn
	lines    chan string
}

func (c *ChatClient) drain() {
	reader := bufio.NewReader(c.conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			close(c.lines)
			return
		}
		c.lines <- strings.TrimRight(line, "\r\n")
	}
}

// SendRaw writes one line exactly as given, commands included.
func (c *ChatClient) SendRaw(line string) {
	_, err := fmt.Fprintf(c.conn, "%s\n", line)
	c.suite.Require().NoError(err, "%s failed to send %q", c.Username, line)
}

// Say sends a chat message the way the reference client does, prefixed
// with the participant's name.
func (c *ChatClient) Say(body string) {
	c.SendRaw(fmt.Sprintf("%s: %s", c.Username, body))
}

// Expect waits for the next server line and asserts it matches exactly.
func (c *ChatClient) Expect(want string) {
	c.suite.T().Helper()
	select {
	case got, ok := <-c.lines:
		c.suite.Require().True(ok, "%s: connection closed while waiting for %q", c.Username, want)
		c.suite.Require().Equal(want, got, "%s received an unexpected line", c.Username)
	case <-time.After(c.suite.Config.ReplyWindow):
		c.suite.Require().Failf("timeout", "%s: no line within %v, wanted %q", c.Username, c.suite.Config.ReplyWindow, want)
	}
}

// ExpectSilence asserts no line arrives within a short window.
func (c *ChatClient) ExpectSilence() {
	c.suite.T().Helper()
	select {
	case got, ok := <-c.lines:
		if ok {
			c.suite.Require().Failf("unexpected line", "%s received %q", c.Username, got)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

// ExpectClosed waits for the server to drop the connection.
func (c *ChatClient) ExpectClosed() {
	c.suite.T().Helper()
	deadline := time.After(c.suite.Config.ReplyWindow)
	for {
		select {
		case _, ok := <-c.lines:
			if !ok {
				return
			}
		case <-deadline:
			c.suite.Require().Fail("timeout", "%s: connection still open", c.Username)
			return
		}
	}
}

func (c *ChatClient) Close() {
	_ = c.conn.Close()
}

// testWriter routes server logs through the test output so they interleave
// with scenario steps.
type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
