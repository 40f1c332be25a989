package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/mellowdrifter/ptscript/pkg/framing"
	"github.com/mellowdrifter/ptscript/pkg/template"
)

// Client is the scenario-driving side of a connection: it dials out,
// sends encoded messages, and reads framed replies. Adapted from the
// bare connect/send/receive shape of a minimal test client, generalized
// to speak whatever MessageTemplate the scenario binds.
type Client struct {
	conn   net.Conn
	stream *framing.BufferedStream
}

// Dial connects to address over network ("tcp" or "udp") with the given
// connect timeout, and prepares a BufferedStream with defaultTimeout as
// its per-read fallback.
func Dial(network, address string, connectTimeout, defaultTimeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout(network, address, connectTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s %s: %w", network, address, err)
	}
	bufSize := TCPReceiveBufferSize
	if network == "udp" {
		bufSize = UDPReceiveBufferSize
	}
	return &Client{
		conn:   conn,
		stream: framing.New(newConnTransport(conn, bufSize), defaultTimeout),
	}, nil
}

// Send writes raw bytes — typically the output of MessageTemplate.Encode — to the wire.
func (c *Client) Send(raw []byte) error {
	_, err := c.conn.Write(raw)
	return err
}

// ReadMessage reads one complete framed message for protocol and
// decodes it against tpl.
func (c *Client) ReadMessage(protocol *template.Protocol, tpl *template.MessageTemplate, timeoutSpec string) (*template.Message, error) {
	ms := framing.NewMessageStream(protocol, c.stream)
	raw, err := ms.ReadBuffer(timeoutSpec)
	if err != nil {
		return nil, err
	}
	return tpl.Decode(raw)
}

// Empty discards buffered-but-unconsumed bytes.
func (c *Client) Empty() {
	c.stream.Empty()
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
