package framing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chunkTransport replays a fixed sequence of chunks, one per Receive
// call, then fails with a "no more data" error on every later call.
type chunkTransport struct {
	chunks [][]byte
	i      int
}

func (c *chunkTransport) Receive(timeout time.Duration) ([]byte, error) {
	if c.i >= len(c.chunks) {
		return nil, errors.New("no more data")
	}
	chunk := c.chunks[c.i]
	c.i++
	return chunk, nil
}

func TestBufferedStreamExactRead(t *testing.T) {
	tr := &chunkTransport{chunks: [][]byte{{1, 2}, {3, 4, 5}}}
	bs := New(tr, time.Second)

	got, err := bs.Read(4, "")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, got)
	require.Equal(t, 1, bs.Buffered())

	got2, err := bs.Read(1, "")
	require.NoError(t, err)
	require.Equal(t, []byte{5}, got2)
	require.Equal(t, 0, bs.Buffered())
}

type timeoutTransport struct{}

func (timeoutTransport) Receive(timeout time.Duration) ([]byte, error) {
	return nil, errors.New("would block forever")
}

func TestBufferedStreamTimeout(t *testing.T) {
	bs := New(timeoutTransport{}, time.Millisecond)
	_, err := bs.Read(10, "")
	require.Error(t, err)
}

func TestParseTimeoutBlocking(t *testing.T) {
	_, blocking, err := ParseTimeout("blocking", time.Second)
	require.NoError(t, err)
	require.True(t, blocking)
}

func TestParseTimeoutNumeric(t *testing.T) {
	d, blocking, err := ParseTimeout("2.5", time.Second)
	require.NoError(t, err)
	require.False(t, blocking)
	require.Equal(t, 2500*time.Millisecond, d)
}

func TestParseTimeoutEmptyFallsBackToDefault(t *testing.T) {
	d, blocking, err := ParseTimeout("", 7*time.Second)
	require.NoError(t, err)
	require.False(t, blocking)
	require.Equal(t, 7*time.Second, d)
}

func TestEmptyDiscardsBuffer(t *testing.T) {
	tr := &chunkTransport{chunks: [][]byte{{1, 2, 3}}}
	bs := New(tr, time.Second)
	_, err := bs.Read(3, "")
	require.NoError(t, err)
	bs.buf = []byte{9, 9} // simulate leftover from a short subsequent fill
	bs.Empty()
	require.Equal(t, 0, bs.Buffered())
}
