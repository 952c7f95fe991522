package runtime

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
)

// Listener accepts connections and runs one receive loop goroutine per
// session. It is a supervised worker: cancellation closes the listening
// socket, which unblocks Accept and ends Run cleanly.
type Listener struct {
	addr   string
	router *Router
	log    *slog.Logger

	mu    sync.Mutex
	bound net.Listener
}

func NewListener(addr string, router *Router, log *slog.Logger) *Listener {
	return &Listener{addr: addr, router: router, log: log}
}

// Addr reports the bound address, useful when listening on port 0.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bound == nil {
		return nil
	}
	return l.bound.Addr()
}

func (l *Listener) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", l.addr, err)
	}
	l.mu.Lock()
	l.bound = ln
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	l.log.Info("Accepting connections", "addr", ln.Addr().String())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		l.log.Info("Client connected", "remote", conn.RemoteAddr().String())
		go l.handle(conn)
	}
}

// handle runs a whole session lifetime: username handshake, registration
// with join announcement, then the receive loop until the transport dies.
func (l *Listener) handle(conn net.Conn) {
	reader := bufio.NewReader(conn)

	username, err := readLine(reader)
	if err != nil {
		l.log.Warn("Handshake failed", "remote", conn.RemoteAddr().String(), "error", err)
		_ = conn.Close()
		return
	}
	if strings.TrimSpace(username) == "" {
		_, _ = conn.Write([]byte("SERVER: Error: Invalid username\n"))
		_ = conn.Close()
		return
	}

	s := NewSession(conn, reader, username, l.log)
	l.router.Join(s)

	for {
		line, err := s.ReadLine()
		if err != nil {
			l.router.Disconnect(s)
			return
		}
		l.router.Broadcast(s, line, false)
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
