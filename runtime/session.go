package runtime

import (
	"bufio"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Session is the server-side state for one connected client: a transport
// and a username fixed at connect time. The receive loop owns reads; the
// write mutex serializes line sends coming from broadcasts, command
// replies, and announcements.
type Session struct {
	ID       uuid.UUID
	Username string

	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	writeMu  sync.Mutex
	teardown sync.Once
	log      *slog.Logger
}

// NewSession wraps an accepted connection. The reader is handed in by the
// listener, which already consumed the username handshake line from it.
func NewSession(conn net.Conn, reader *bufio.Reader, username string, log *slog.Logger) *Session {
	return &Session{
		ID:       uuid.New(),
		Username: username,
		conn:     conn,
		reader:   reader,
		writer:   bufio.NewWriter(conn),
		log:      log,
	}
}

// ReadLine blocks on the next newline-terminated line from the peer.
// Any error, end-of-stream included, means the session is gone.
func (s *Session) ReadLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// SendLine writes one line and flushes. A write or flush failure is fatal
// to this session only; the caller drives teardown.
func (s *Session) SendLine(line string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return s.writer.Flush()
}

// release frees the transport in fixed order: reader first (it holds no
// OS resource beyond its buffer), then the writer flush, then the
// connection. Every step is attempted even when an earlier one fails;
// failures are logged, never propagated.
func (s *Session) release() {
	s.writeMu.Lock()
	if err := s.writer.Flush(); err != nil {
		s.log.Debug("Flushing writer on teardown failed", "username", s.Username, "error", err)
	}
	s.writeMu.Unlock()

	if err := s.conn.Close(); err != nil {
		s.log.Debug("Closing connection on teardown failed", "username", s.Username, "error", err)
	}
}
