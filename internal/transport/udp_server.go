package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/mellowdrifter/ptscript/pkg/framing"
	"go.uber.org/zap"
)

// packetTransport adapts a listening *net.UDPConn into
// pkg/framing.Transport, recording the sender of each received datagram
// as peer.
type packetTransport struct {
	conn *net.UDPConn
	peer *net.UDPAddr
}

func (t *packetTransport) Receive(timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
	} else {
		if err := t.conn.SetReadDeadline(time.Time{}); err != nil {
			return nil, err
		}
	}
	buf := make([]byte, UDPReceiveBufferSize)
	n, addr, err := t.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, err
	}
	t.peer = addr
	return buf[:n], nil
}

// UDPServer is a connectionless counterpart to Server. It has no notion
// of accepted connections or aliases — spec.md §7 marks aliasing
// NotSupported here — it simply tracks the most recent peer to send a
// datagram and lets a scenario reply to it.
type UDPServer struct {
	conn   *net.UDPConn
	logger *zap.SugaredLogger
	stream *framing.BufferedStream
	peer   *packetTransport
}

// NewUDPServer binds addr and prepares a BufferedStream over it.
func NewUDPServer(logger *zap.SugaredLogger, addr string, defaultTimeout time.Duration) (*UDPServer, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	pt := &packetTransport{conn: conn}
	return &UDPServer{
		conn:   conn,
		logger: logger,
		stream: framing.New(pt, defaultTimeout),
		peer:   pt,
	}, nil
}

// Receive reads one raw frame of n bytes from whichever peer sends
// next, recording that peer as the reply target.
func (u *UDPServer) Receive(n int, timeoutSpec string) ([]byte, error) {
	return u.stream.Read(n, timeoutSpec)
}

// Reply sends raw bytes back to the most recent peer. Fails if no
// datagram has been received yet.
func (u *UDPServer) Reply(raw []byte) error {
	if u.peer.peer == nil {
		return fmt.Errorf("%w: no peer to reply to yet", ErrNotSupported)
	}
	_, err := u.conn.WriteToUDP(raw, u.peer.peer)
	return err
}

// AcceptConnection always fails: UDP is connectionless, so named
// connection aliasing has no meaning (spec.md §7).
func (u *UDPServer) AcceptConnection(string, time.Duration) (string, error) {
	return "", fmt.Errorf("%w: accept_connection on a UDP server", ErrNotSupported)
}

// Close releases the underlying socket.
func (u *UDPServer) Close() error {
	return u.conn.Close()
}
