package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_SendLine_Reaches_Peer(t *testing.T) {
	alice := newTestPeer(t, "alice")
	require.NoError(t, alice.session.SendLine("SERVER: welcome"))
	alice.expectLine(t, "SERVER: welcome")
}

func TestSession_ReadLine_Strips_Line_Ending(t *testing.T) {
	req := require.New(t)
	alice := newTestPeer(t, "alice")

	go func() {
		_, _ = alice.conn.Write([]byte("alice: hello\r\n"))
	}()

	line, err := alice.session.ReadLine()
	req.NoError(err)
	req.Equal("alice: hello", line)
}

func TestSession_ReadLine_Fails_After_Peer_Disconnect(t *testing.T) {
	req := require.New(t)
	alice := newTestPeer(t, "alice")
	req.NoError(alice.conn.Close())

	_, err := alice.session.ReadLine()
	req.Error(err)
}

func TestSession_SendLine_Fails_After_Release(t *testing.T) {
	req := require.New(t)
	alice := newTestPeer(t, "alice")

	alice.session.release()
	req.Error(alice.session.SendLine("anyone?"))

	// release twice is harmless.
	alice.session.release()
}
