package template

import "fmt"

// MessageTemplate binds a body field list to the Protocol whose PDU
// carries it, giving encode/decode/validate a single named entry point
// (spec.md §3/§4.4).
type MessageTemplate struct {
	name     string
	protocol *Protocol
	body     []Field
}

// NewMessageTemplate builds a named template bound to protocol. body is
// the ordered list of top-level fields making up the PDU's contents.
func NewMessageTemplate(name string, protocol *Protocol, body ...Field) *MessageTemplate {
	return &MessageTemplate{name: name, protocol: protocol, body: body}
}

func (t *MessageTemplate) Name() string { return t.name }

// Protocol returns the header Protocol this template is bound to, for
// callers (e.g. pkg/framing.MessageStream) that need header_length()
// and the PDU expression ahead of having a full message to decode.
func (t *MessageTemplate) Protocol() *Protocol { return t.protocol }

// Message is the result of Encode or Decode: the raw wire bytes split
// into header and body sections, plus the decoded tree for both.
type Message struct {
	Name   string
	Raw    []byte
	Header *Node
	Body   *Node
}

const headerNodeName = "_header"

// Encode renders params into wire bytes. params' top-level keys address
// body fields directly by name; a "_header" key (a map) supplies
// explicit header field overrides (the PDU-derived length field is
// always computed, never taken from params). Unknown top-level keys are
// rejected (spec.md §4.4/§4.6).
func (t *MessageTemplate) Encode(params Params) (*Message, error) {
	bodyParams := Params{}
	var headerParams Params
	for k, v := range params {
		if k == headerNodeName {
			sub, ok := v.(Params)
			if !ok {
				if m, ok := v.(map[string]any); ok {
					sub = Params(m)
				} else {
					return nil, fmt.Errorf("%w: %q must be a map", ErrUnknownParameter, headerNodeName)
				}
			}
			headerParams = sub
			continue
		}
		bodyParams[k] = v
	}

	known := map[string]bool{}
	for _, f := range t.body {
		known[f.Name()] = true
	}
	for k := range bodyParams {
		tokens, err := tokenize(k)
		if err != nil {
			return nil, err
		}
		if len(tokens) == 0 || !known[tokens[0]] {
			return nil, fmt.Errorf("%w: %q is not a field of message %s", ErrUnknownParameter, k, t.name)
		}
	}

	scope := NewScope(bodyParams)
	bodyBytes, _, err := encodeFieldList(t.body, scope)
	if err != nil {
		return nil, fmt.Errorf("encoding body of %s: %w", t.name, err)
	}

	prefix, suffix, err := t.protocol.encodeHeader(headerParams, len(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("encoding header of %s: %w", t.name, err)
	}

	raw := append(append(append([]byte(nil), prefix...), bodyBytes...), suffix...)
	return t.Decode(raw)
}

// Decode parses raw wire bytes: header prefix first (to learn the body
// length via the PDU's arithmetic expression), then the body, then any
// trailing header fields (spec.md §4.4).
func (t *MessageTemplate) Decode(raw []byte) (*Message, error) {
	bodyLen, prefixNodes, err := t.protocol.decodeHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding header of %s: %w", t.name, err)
	}
	prefixLen, err := t.protocol.HeaderLength()
	if err != nil {
		return nil, err
	}
	suffixLen, err := t.protocol.suffixLength()
	if err != nil {
		return nil, err
	}
	need := prefixLen + bodyLen + suffixLen
	if len(raw) < need {
		return nil, fmt.Errorf("%w: message %s needs %d bytes, got %d", ErrLengthUnderflow, t.name, need, len(raw))
	}

	bodyOffset := 0
	bodyData := raw[prefixLen : prefixLen+bodyLen]
	bodyNodes, err := decodeFieldList(t.body, bodyData, &bodyOffset)
	if err != nil {
		return nil, fmt.Errorf("decoding body of %s: %w", t.name, err)
	}

	suffixNodes, err := t.protocol.decodeSuffix(raw[prefixLen+bodyLen : need])
	if err != nil {
		return nil, fmt.Errorf("decoding footer of %s: %w", t.name, err)
	}

	headerChildren := append(append([]*Node(nil), prefixNodes...), suffixNodes...)
	header := newStructNode(headerNodeName, headerChildren)
	body := newStructNode(t.name, bodyNodes)

	return &Message{
		Name:   t.name,
		Raw:    append([]byte(nil), raw[:need]...),
		Header: header,
		Body:   body,
	}, nil
}

// Validate compares a decoded Message against params, returning one
// human-readable description per mismatched field. Top-level "_header"
// keys validate against Header; everything else validates against Body
// (spec.md §4.5).
func (t *MessageTemplate) Validate(msg *Message, params Params) []string {
	var errs []string
	bodyParams := Params{}
	var headerParams Params
	for k, v := range params {
		if k == headerNodeName {
			if sub, ok := v.(Params); ok {
				headerParams = sub
			} else if m, ok := v.(map[string]any); ok {
				headerParams = Params(m)
			} else {
				errs = append(errs, fmt.Sprintf("%q must be a map", headerNodeName))
			}
			continue
		}
		bodyParams[k] = v
	}

	if headerParams != nil {
		headerFields := append(append([]Field(nil), t.protocol.prefixFields()...), t.protocol.suffixFields()...)
		validateFieldList(headerFields, msg.Header.children, NewScope(headerParams), headerNodeName, &errs)
	}
	validateFieldList(t.body, msg.Body.children, NewScope(bodyParams), "", &errs)
	return errs
}
