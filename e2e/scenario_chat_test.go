package e2e

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"groupchat/domain"
	"groupchat/projection"
)

type chatScenarioSuite struct {
	BaseChatSuite
}

func TestChatScenarioSuite(t *testing.T) {
	suite.Run(t, &chatScenarioSuite{})
}

// TestGroupChatFlow drives two real TCP clients through the whole command
// surface: history reads before and after the first message, counting,
// deletion, every protocol error reply, and the join/leave announcements.
func (s *chatScenarioSuite) TestGroupChatFlow() {
	bob := s.Dial("bob")
	defer bob.Close()

	alice := s.Dial("alice")
	defer alice.Close()
	bob.Expect("SERVER: alice has entered the chat!")

	s.Run("history read on an empty log", func() {
		bob.SendRaw("/getMessage 0")
		alice.Expect("/getMessage 0")
		bob.Expect("SERVER: Error: Message not found.")
	})

	s.Run("first chat message lands on key zero", func() {
		alice.Say("hello")
		bob.Expect("alice: hello")
		alice.ExpectSilence()

		bob.SendRaw("/getMessage 0")
		alice.Expect("/getMessage 0")
		bob.Expect("SERVER: alice said: hello")
		alice.Expect("SERVER: alice said: hello")
	})

	s.Run("message counting per author", func() {
		bob.SendRaw("/messageCount alice")
		alice.Expect("/messageCount alice")
		bob.Expect("SERVER: 1 messages found from alice")
		alice.Expect("SERVER: 1 messages found from alice")

		bob.SendRaw("/messageCount nobody")
		alice.Expect("/messageCount nobody")
		bob.Expect("SERVER: No messages found from nobody")
		alice.Expect("SERVER: No messages found from nobody")
	})

	s.Run("deletion replaces the body and keeps the key", func() {
		alice.SendRaw("/messageDelete 0")
		bob.Expect("/messageDelete 0")
		alice.Expect("SERVER: Message has been deleted.")

		bob.SendRaw("/getMessage 0")
		alice.Expect("/getMessage 0")
		bob.Expect("SERVER: alice said: " + domain.DeletedBody)
		alice.Expect("SERVER: alice said: " + domain.DeletedBody)
	})

	s.Run("protocol errors reply to the sender only", func() {
		for raw, reply := range map[string]string{
			"/getMessage":       "SERVER: Error: Invalid command format.",
			"/getMessage abc":   "SERVER: Error: Invalid message number.",
			"/getMessage 99":    "SERVER: Error: Message not found.",
			"/messageCount":     "SERVER: Error: Invalid username",
			"/bogus":            "SERVER: Error: Invalid Command.",
			"/messageEdit 0 hi": "SERVER: The /messageEdit command is not yet available.",
			"/translate 0 fr":   "SERVER: The /translate command is not yet available.",
			"/messageRandom":    "SERVER: The /messageRandom command is not yet available.",
		} {
			bob.SendRaw(raw)
			alice.Expect(raw)
			bob.Expect(reply)
		}
		alice.ExpectSilence()
	})

	s.Run("help lists the whole command surface to the sender", func() {
		bob.SendRaw("/help")
		alice.Expect("/help")
		bob.Expect("SERVER: Here is a following list of available commands.")
		for range lo.Range(7) {
			line, ok := <-bob.lines
			s.Require().True(ok)
			s.Require().True(strings.HasPrefix(line, "/"), "usage line %q", line)
		}
		alice.ExpectSilence()
	})

	s.Run("departure is announced to the remaining participants", func() {
		alice.Close()
		bob.Expect("SERVER: alice has left the chat!")
	})

	if s.Timeline == nil {
		return
	}
	s.Run("timeline projection observed the history", func() {
		s.Require().Eventually(func() bool {
			recent := s.Timeline.Recent()
			if len(recent) == 0 {
				return false
			}
			first := recent[0]
			return first.Key == 0 && first.Author == "alice" && first.Body == domain.DeletedBody
		}, 2*time.Second, 20*time.Millisecond, "timeline: %#v", s.Timeline.Recent())

		authors := lo.Map(s.Timeline.Recent(), func(e projection.TimelineEntry, _ int) string {
			return e.Author
		})
		s.Require().Contains(authors, domain.ServerAuthor)
	})
}

// TestRejectsEmptyUsername covers the handshake guard with a raw socket,
// below the ChatClient helper.
func (s *chatScenarioSuite) TestRejectsEmptyUsername() {
	conn, err := net.Dial("tcp", s.addr)
	s.Require().NoError(err)
	defer conn.Close()

	_, err = conn.Write([]byte("\n"))
	s.Require().NoError(err)

	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	s.Require().NoError(err)
	s.Require().Equal("SERVER: Error: Invalid username", strings.TrimRight(line, "\n"))

	// The server closes the connection after rejecting the handshake.
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(s.Config.ReplyWindow)))
	_, err = reader.ReadString('\n')
	s.Require().Error(err)
}
