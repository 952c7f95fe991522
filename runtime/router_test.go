package runtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"groupchat/domain"
)

func TestRouter_Broadcast_Excludes_Origin(t *testing.T) {
	router, _, _ := newTestRouter(t)
	alice := newTestPeer(t, "alice")
	bob := newTestPeer(t, "bob")
	carol := newTestPeer(t, "carol")
	router.Join(alice.session)
	router.Join(bob.session)
	router.Join(carol.session)
	drainAnnouncements(alice, bob, carol)

	router.Broadcast(alice.session, "alice: hello", false)

	bob.expectLine(t, "alice: hello")
	carol.expectLine(t, "alice: hello")
	alice.expectSilence(t)
}

func TestRouter_Broadcast_Appends_Logical_Body(t *testing.T) {
	req := require.New(t)
	router, _, repo := newTestRouter(t)
	alice := newTestPeer(t, "alice")
	router.Join(alice.session)

	router.Broadcast(alice.session, "alice: hello there", false)

	entry, err := repo.Get(0)
	req.NoError(err)
	req.Equal(domain.ChatEntry{Author: "alice", Body: "hello there"}, entry)
}

func TestRouter_Broadcast_Server_Origin_Uses_Server_Author(t *testing.T) {
	req := require.New(t)
	router, _, repo := newTestRouter(t)
	alice := newTestPeer(t, "alice")
	router.Join(alice.session)

	router.Broadcast(alice.session, "SERVER: 2 messages found from alice", true)

	entry, err := repo.Get(0)
	req.NoError(err)
	req.Equal(domain.ServerAuthor, entry.Author)
	req.Equal("2 messages found from alice", entry.Body)
}

func TestRouter_Broadcast_Without_Prefix_Logs_Whole_Line(t *testing.T) {
	req := require.New(t)
	router, _, repo := newTestRouter(t)
	alice := newTestPeer(t, "alice")
	router.Join(alice.session)

	router.Broadcast(alice.session, "no prefix here", false)

	entry, err := repo.Get(0)
	req.NoError(err)
	req.Equal("no prefix here", entry.Body)
}

func TestRouter_Announcements_Are_Not_Logged(t *testing.T) {
	req := require.New(t)
	router, _, repo := newTestRouter(t)
	alice := newTestPeer(t, "alice")
	bob := newTestPeer(t, "bob")

	router.Join(alice.session)
	router.Join(bob.session)
	alice.expectLine(t, "SERVER: bob has entered the chat!")

	router.Disconnect(bob.session)
	alice.expectLine(t, "SERVER: bob has left the chat!")

	entries, err := repo.All()
	req.NoError(err)
	req.Empty(entries)
}

func TestRouter_Dead_Recipient_Does_Not_Stop_Delivery(t *testing.T) {
	req := require.New(t)
	router, registry, _ := newTestRouter(t)
	alice := newTestPeer(t, "alice")
	bob := newTestPeer(t, "bob")
	carol := newTestPeer(t, "carol")
	router.Join(alice.session)
	router.Join(bob.session)
	router.Join(carol.session)
	drainAnnouncements(alice, bob, carol)

	// Kill carol's transport; the next delivery to her fails and tears
	// her down, while bob still gets the line.
	req.NoError(carol.conn.Close())
	router.Broadcast(alice.session, "alice: anyone there?", false)

	bob.expectLine(t, "alice: anyone there?")
	bob.expectLine(t, "SERVER: carol has left the chat!")
	req.Equal(2, registry.Len())
}

func TestRouter_Teardown_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	router, registry, _ := newTestRouter(t)
	alice := newTestPeer(t, "alice")
	bob := newTestPeer(t, "bob")
	router.Join(alice.session)
	router.Join(bob.session)
	drainAnnouncements(alice, bob)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			router.Disconnect(bob.session)
		}()
	}
	wg.Wait()

	alice.expectLine(t, "SERVER: bob has left the chat!")
	alice.expectSilence(t)
	req.Equal(1, registry.Len())
}

// drainAnnouncements consumes the join noise each earlier peer saw, so
// assertions start from a quiet wire.
func drainAnnouncements(peers ...*testPeer) {
	for i, p := range peers {
		for range peers[i+1:] {
			<-p.lines
		}
	}
}
