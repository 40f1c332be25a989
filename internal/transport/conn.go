package transport

import (
	"net"
	"time"
)

// TCPReceiveBufferSize and UDPReceiveBufferSize bound a single Receive
// call's read size, per spec.md §6.
const (
	TCPReceiveBufferSize = 1_000_000
	UDPReceiveBufferSize = 65536
)

// connTransport adapts a net.Conn (an accepted TCP connection, or a TCP
// or UDP socket dialed by Client) into pkg/framing.Transport: a single
// blocking Receive(timeout) returning whatever is currently available.
type connTransport struct {
	conn    net.Conn
	bufSize int
}

func newConnTransport(conn net.Conn, bufSize int) *connTransport {
	return &connTransport{conn: conn, bufSize: bufSize}
}

// Receive blocks until at least one byte arrives or timeout elapses. A
// non-positive timeout means no deadline (spec.md §5's "blocking").
func (t *connTransport) Receive(timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
	} else {
		if err := t.conn.SetReadDeadline(time.Time{}); err != nil {
			return nil, err
		}
	}
	buf := make([]byte, t.bufSize)
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
