package transport

import (
	"net"
	"sync"
	"time"

	"github.com/mellowdrifter/ptscript/pkg/framing"
	"github.com/mellowdrifter/ptscript/pkg/template"
)

// Connection pairs a live socket with the framing and template layers
// that read and write whole messages over it.
type Connection struct {
	conn      net.Conn
	stream    *framing.BufferedStream
	closeOnce sync.Once
}

func newConnection(conn net.Conn, bufSize int, defaultTimeout time.Duration) *Connection {
	return &Connection{
		conn:   conn,
		stream: framing.New(newConnTransport(conn, bufSize), defaultTimeout),
	}
}

// RemoteAddr returns the peer address, which Server logs when it
// accepts the connection.
func (c *Connection) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Send writes a fully-encoded message to the wire.
func (c *Connection) Send(raw []byte) error {
	_, err := c.conn.Write(raw)
	return err
}

// ReadMessage reads one complete framed message for protocol and
// decodes it against tpl.
func (c *Connection) ReadMessage(protocol *template.Protocol, tpl *template.MessageTemplate, timeoutSpec string) (*template.Message, error) {
	ms := framing.NewMessageStream(protocol, c.stream)
	raw, err := ms.ReadBuffer(timeoutSpec)
	if err != nil {
		return nil, err
	}
	return tpl.Decode(raw)
}

// Empty discards any buffered-but-unconsumed bytes, e.g. after a decode
// error, to realign on the next message boundary.
func (c *Connection) Empty() {
	c.stream.Empty()
}

// Close closes the underlying socket exactly once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}
