package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUDPServerAcceptConnectionNotSupported(t *testing.T) {
	logger := zap.NewNop().Sugar()
	srv, err := NewUDPServer(logger, "127.0.0.1:0", time.Second)
	require.NoError(t, err)
	defer srv.Close()

	_, err = srv.AcceptConnection("alias", time.Second)
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestUDPServerReplyWithoutPeerFails(t *testing.T) {
	logger := zap.NewNop().Sugar()
	srv, err := NewUDPServer(logger, "127.0.0.1:0", time.Second)
	require.NoError(t, err)
	defer srv.Close()

	err = srv.Reply([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestUDPServerReceiveAndReply(t *testing.T) {
	logger := zap.NewNop().Sugar()
	srv, err := NewUDPServer(logger, "127.0.0.1:0", time.Second)
	require.NoError(t, err)
	defer srv.Close()

	addr := srv.conn.LocalAddr().String()
	client, err := Dial("udp", addr, time.Second, time.Second)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Send([]byte{0xde, 0xad, 0xbe, 0xef}))

	got, err := srv.Receive(4, "1")
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, got)

	require.NoError(t, srv.Reply([]byte{0xca, 0xfe}))
}
