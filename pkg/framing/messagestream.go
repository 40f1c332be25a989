package framing

import (
	"fmt"

	"github.com/mellowdrifter/ptscript/pkg/template"
)

// MessageStream binds a Protocol to a BufferedStream, implementing the
// read sequence of spec.md §4.7: read the fixed header prefix, parse
// enough of it to learn the PDU's body length, read exactly that many
// more bytes plus any header suffix, and hand the concatenation back
// to the caller for MessageTemplate.Decode.
type MessageStream struct {
	protocol *template.Protocol
	stream   *BufferedStream
}

// NewMessageStream builds a MessageStream reading framed PDUs for
// protocol off stream.
func NewMessageStream(protocol *template.Protocol, stream *BufferedStream) *MessageStream {
	return &MessageStream{protocol: protocol, stream: stream}
}

// ReadBuffer returns one full framed message's raw bytes (header prefix
// ‖ body ‖ header suffix), ready to pass to MessageTemplate.Decode.
func (m *MessageStream) ReadBuffer(timeoutSpec string) ([]byte, error) {
	prefixLen, err := m.protocol.HeaderLength()
	if err != nil {
		return nil, err
	}
	prefix, err := m.stream.Read(prefixLen, timeoutSpec)
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	bodyLen, _, err := m.protocol.PeekBodyLength(prefix)
	if err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}

	suffixLen, err := m.protocol.SuffixLength()
	if err != nil {
		return nil, err
	}

	rest, err := m.stream.Read(bodyLen+suffixLen, timeoutSpec)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return append(prefix, rest...), nil
}
