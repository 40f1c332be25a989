package template

import (
	"fmt"
	"strconv"
	"strings"
)

// lengthOp is the arithmetic relation a PDU's length expression uses to
// relate a header field's value to the PDU body's byte length.
type lengthOp int

const (
	opNone lengthOp = iota
	opPlus
	opMinus
)

// lengthExpr is "<ref>" or "<ref><op><int>" (spec.md §4.1), e.g.
// "length-4": ref="length", op=minus, offset=4.
type lengthExpr struct {
	ref    string
	op     lengthOp
	offset int
}

func parseLengthExpr(s string) (lengthExpr, error) {
	for i, op := range []lengthOp{opPlus, opMinus} {
		sep := byte('+')
		if i == 1 {
			sep = '-'
		}
		if idx := strings.IndexByte(s, sep); idx > 0 {
			n, err := strconv.Atoi(s[idx+1:])
			if err != nil {
				return lengthExpr{}, fmt.Errorf("PDU expression %q: bad offset: %w", s, err)
			}
			return lengthExpr{ref: s[:idx], op: op, offset: n}, nil
		}
	}
	if s == "" {
		return lengthExpr{}, fmt.Errorf("PDU expression is empty")
	}
	return lengthExpr{ref: s, op: opNone}, nil
}

// The expression string reads as the decode-direction formula: "length-4"
// means body_length = length - 4 (spec.md §9 DESIGN NOTES: "length-4
// means body length + 4 yields the length field" — i.e. the length field
// equals body length + 4, which is exactly the inverse of that formula).

// bodyLenFromRef computes the PDU body's byte length given the header
// field's decoded value (decode direction): body = ref - offset ("-")
// or body = ref + offset ("+").
func (e lengthExpr) bodyLenFromRef(ref uint64) int {
	switch e.op {
	case opMinus:
		return int(ref) - e.offset
	case opPlus:
		return int(ref) + e.offset
	default:
		return int(ref)
	}
}

// refFromBodyLen inverts bodyLenFromRef (encode direction).
func (e lengthExpr) refFromBodyLen(bodyLen int) uint64 {
	switch e.op {
	case opMinus:
		return uint64(bodyLen + e.offset)
	case opPlus:
		return uint64(bodyLen - e.offset)
	default:
		return uint64(bodyLen)
	}
}

// PDU is a placeholder standing in for "everything else the protocol's
// length field says is here". It is never itself encoded; it only
// carries the arithmetic expression relating a header field to the
// body's byte length (spec.md §4.1).
type PDU struct {
	expr lengthExpr
}

// NewPDU builds a PDU placeholder from its length expression, e.g.
// NewPDU("length-4").
func NewPDU(expr string) (*PDU, error) {
	e, err := parseLengthExpr(expr)
	if err != nil {
		return nil, err
	}
	return &PDU{expr: e}, nil
}

// PDU satisfies Field so it can be passed to Protocol.Add; Protocol
// never encodes, decodes or validates the placeholder entry itself, and
// it contributes no bytes.
func (p *PDU) Name() string            { return "" }
func (p *PDU) staticSize() (int, bool) { return 0, true }
func (p *PDU) encodeField(Scope, map[string]uint64) ([]byte, uint64, error) {
	return nil, 0, nil
}
func (p *PDU) decodeField([]byte, *int, map[string]uint64) (*Node, error) { return nil, nil }
func (p *PDU) validateField(*Node, Scope, string, *[]string)              {}

// headerEntry is one field added to a Protocol. pduRef is non-nil only
// for the entry holding the PDU placeholder.
type headerEntry struct {
	field  Field
	pduRef *PDU
}

// Protocol is an ordered sequence of header fields containing exactly
// one PDU placeholder and at most one field whose value is left
// undefined at construction time (resolved from the PDU body length at
// encode time). (spec.md §3/§4.4)
type Protocol struct {
	name     string
	entries  []headerEntry
	pduIndex int // -1 until a PDU has been added
	lenField *UInt
}

// NewProtocol creates an empty, named Protocol.
func NewProtocol(name string) *Protocol {
	return &Protocol{name: name, pduIndex: -1}
}

func (p *Protocol) Name() string { return p.name }

// Add appends a header field. Adding a PDU fails unless the field it
// references by name was already added and still has no default value
// (spec.md §4.4): that undefined field is the one the PDU will resolve
// at encode time, and only one may exist per Protocol.
func (p *Protocol) Add(f Field) error {
	if pdu, ok := f.(*PDU); ok {
		if p.pduIndex >= 0 {
			return fmt.Errorf("%w: protocol %s already has a PDU", ErrProtocolInvariant, p.name)
		}
		var ref Field
		for _, e := range p.entries {
			if e.field.Name() == pdu.expr.ref {
				ref = e.field
				break
			}
		}
		if ref == nil {
			return fmt.Errorf("%w: cannot add PDU; referenced field %q not found", ErrProtocolInvariant, pdu.expr.ref)
		}
		u, ok := ref.(*UInt)
		if !ok {
			return fmt.Errorf("%w: cannot add PDU; referenced field %q is not a UInt", ErrProtocolInvariant, pdu.expr.ref)
		}
		if u.hasDef {
			return fmt.Errorf("%w: cannot add PDU; no undefined-length field precedes it", ErrProtocolInvariant)
		}
		p.lenField = u
		p.pduIndex = len(p.entries)
		p.entries = append(p.entries, headerEntry{field: f, pduRef: pdu})
		return nil
	}
	p.entries = append(p.entries, headerEntry{field: f})
	return nil
}

// HeaderLength returns the byte length of all header fields up to and
// including the PDU placeholder (the PDU itself contributes 0).
func (p *Protocol) HeaderLength() (int, error) {
	if p.pduIndex < 0 {
		return 0, fmt.Errorf("%w: protocol %s has no PDU", ErrProtocolInvariant, p.name)
	}
	total := 0
	for _, e := range p.entries[:p.pduIndex] {
		n, ok := e.field.staticSize()
		if !ok {
			return 0, fmt.Errorf("header field %s has a non-literal size", e.field.Name())
		}
		total += n
	}
	return total, nil
}

// SuffixLength exposes suffixLength for callers outside the package
// (pkg/framing's MessageStream needs it to size a single framed read).
func (p *Protocol) SuffixLength() (int, error) { return p.suffixLength() }

// PeekBodyLength parses a raw header prefix (exactly HeaderLength()
// bytes) and returns the PDU body length it implies, without needing a
// bound MessageTemplate. Used by pkg/framing to size the remaining read.
func (p *Protocol) PeekBodyLength(prefix []byte) (bodyLen int, prefixNodes []*Node, err error) {
	return p.decodeHeader(prefix)
}

func (p *Protocol) prefixFields() []Field {
	fields := make([]Field, 0, p.pduIndex)
	for _, e := range p.entries[:p.pduIndex] {
		fields = append(fields, e.field)
	}
	return fields
}

func (p *Protocol) suffixFields() []Field {
	fields := make([]Field, 0)
	for _, e := range p.entries[p.pduIndex+1:] {
		fields = append(fields, e.field)
	}
	return fields
}

// suffixLength sums the fixed sizes of header fields after the PDU
// (e.g. a trailing checksum).
func (p *Protocol) suffixLength() (int, error) {
	total := 0
	for _, f := range p.suffixFields() {
		n, ok := f.staticSize()
		if !ok {
			return 0, fmt.Errorf("footer field %s has a non-literal size", f.Name())
		}
		total += n
	}
	return total, nil
}

// encodeHeader encodes the header prefix and suffix given the PDU
// body's length, deriving the undefined length field's value by
// inverting the PDU's expression.
func (p *Protocol) encodeHeader(headerParams Params, bodyLen int) (prefix, suffix []byte, err error) {
	if p.pduIndex < 0 {
		return nil, nil, fmt.Errorf("%w: protocol %s has no PDU", ErrProtocolInvariant, p.name)
	}
	scope := NewScope(headerParams)
	derived := p.lenField.Name()
	derivedValue := p.entries[p.pduIndex].pduRef.expr.refFromBodyLen(bodyLen)

	encodeSection := func(fields []Field) ([]byte, error) {
		siblings := map[string]uint64{}
		var out []byte
		for _, f := range fields {
			if f.Name() == derived {
				buf, _, err := encodeResolvedUint(f.(*UInt), derivedValue, siblings)
				if err != nil {
					return nil, err
				}
				siblings[f.Name()] = derivedValue
				out = append(out, buf...)
				continue
			}
			childScope, err := scope.child(f.Name())
			if err != nil {
				return nil, err
			}
			encoded, selfValue, err := f.encodeField(childScope, siblings)
			if err != nil {
				return nil, err
			}
			if f.Name() != "" {
				siblings[f.Name()] = selfValue
			}
			out = append(out, encoded...)
		}
		return out, nil
	}

	if prefix, err = encodeSection(p.prefixFields()); err != nil {
		return nil, nil, err
	}
	if suffix, err = encodeSection(p.suffixFields()); err != nil {
		return nil, nil, err
	}
	return prefix, suffix, nil
}

// encodeResolvedUint encodes a UInt field whose value is already known
// (the PDU-derived length field), bypassing default/override lookup.
func encodeResolvedUint(u *UInt, value uint64, siblings map[string]uint64) ([]byte, uint64, error) {
	return u.encodeField(Scope{direct: value, hasDirect: true}, siblings)
}

// decodeHeader parses the header prefix, returning the body length
// implied by the PDU expression and the decoded prefix nodes.
func (p *Protocol) decodeHeader(data []byte) (bodyLen int, prefixNodes []*Node, err error) {
	if p.pduIndex < 0 {
		return 0, nil, fmt.Errorf("%w: protocol %s has no PDU", ErrProtocolInvariant, p.name)
	}
	prefixLen, err := p.HeaderLength()
	if err != nil {
		return 0, nil, err
	}
	if len(data) < prefixLen {
		return 0, nil, fmt.Errorf("%w: header needs %d bytes, got %d", ErrLengthUnderflow, prefixLen, len(data))
	}
	offset := 0
	prefixNodes, err = decodeFieldList(p.prefixFields(), data, &offset)
	if err != nil {
		return 0, nil, err
	}
	refNode := prefixNodes[len(prefixNodes)-1]
	for i, f := range p.prefixFields() {
		if f.Name() == p.lenField.Name() {
			refNode = prefixNodes[i]
			break
		}
	}
	refVal, err := refNode.Int()
	if err != nil {
		return 0, nil, err
	}
	bodyLen = p.entries[p.pduIndex].pduRef.expr.bodyLenFromRef(refVal)
	if bodyLen < 0 {
		return 0, nil, fmt.Errorf("%w: derived body length %d is negative", ErrLengthUnderflow, bodyLen)
	}
	return bodyLen, prefixNodes, nil
}

// decodeSuffix parses the header fields after the PDU.
func (p *Protocol) decodeSuffix(data []byte) ([]*Node, error) {
	offset := 0
	return decodeFieldList(p.suffixFields(), data, &offset)
}
