package template

import "fmt"

// Size is either a positive integer literal or a length reference: the
// name of an earlier sibling field whose decoded integer value supplies
// the size (spec.md §3).
type Size struct {
	literal int
	ref     string
}

// Lit builds a literal, fixed-size Size.
func Lit(n int) Size { return Size{literal: n} }

// Ref builds a length-reference Size pointing at an earlier sibling.
func Ref(name string) Size { return Size{ref: name} }

func (s Size) isRef() bool { return s.ref != "" }

// resolve looks up the concrete byte size, consulting siblings for a
// length reference.
func (s Size) resolve(siblings map[string]uint64) (int, error) {
	if !s.isRef() {
		return s.literal, nil
	}
	v, ok := siblings[s.ref]
	if !ok {
		return 0, fmt.Errorf("%w: %q (needed to resolve size)", ErrReferenceNotFound, s.ref)
	}
	return int(v), nil
}

// Field is any node in a template tree: a primitive, a Struct, or a
// List. Struct and List are mutually recursive containers built on top
// of this same interface (spec.md §9).
type Field interface {
	// Name returns the field's name, empty for an unnamed List element
	// template.
	Name() string

	// encodeField resolves this field's value from scope (already
	// projected onto this field's own namespace by its parent) and
	// siblings (the running map of already-encoded sibling values in
	// the same container, for length references), returning the
	// encoded bytes and — for primitives — the integer value the
	// parent should record into siblings under this field's name.
	encodeField(scope Scope, siblings map[string]uint64) (encoded []byte, selfValue uint64, err error)

	// decodeField consumes exactly this field's encoded footprint from
	// data starting at *offset, advancing offset past it.
	decodeField(data []byte, offset *int, siblings map[string]uint64) (*Node, error)

	// validateField recurses through node, comparing against the
	// effective value implied by scope (override) or the field's own
	// default, and appends any mismatch description to errs.
	validateField(node *Node, scope Scope, path string, errs *[]string)

	// staticSize returns the field's fixed byte size and true, or
	// (0, false) if the size is a length reference that can't be known
	// without decoding siblings first (used by Protocol.header_length).
	staticSize() (int, bool)
}

// UInt is a big-endian unsigned integer primitive.
type UInt struct {
	name    string
	size    Size
	def     any
	hasDef  bool
}

// NewUInt builds a UInt field. def may be nil (no default — a param
// override becomes mandatory at encode time).
func NewUInt(size Size, name string, def any) *UInt {
	return &UInt{name: name, size: size, def: def, hasDef: def != nil}
}

func (u *UInt) Name() string          { return u.name }
func (u *UInt) staticSize() (int, bool) {
	if u.size.isRef() {
		return 0, false
	}
	return u.size.literal, true
}

func (u *UInt) effectiveValue(scope Scope) (any, bool) {
	if scope.hasDirect {
		return scope.direct, true
	}
	if u.hasDef {
		return u.def, true
	}
	return nil, false
}

func (u *UInt) encodeField(scope Scope, siblings map[string]uint64) ([]byte, uint64, error) {
	val, ok := u.effectiveValue(scope)
	if !ok {
		return nil, 0, fmt.Errorf("%w: no value for field %s", ErrMissingValue, u.name)
	}
	n, err := resolveUint(val)
	if err != nil {
		return nil, 0, err
	}
	size, err := u.size.resolve(siblings)
	if err != nil {
		return nil, 0, err
	}
	if size < 8 && n>>uint(size*8) != 0 {
		return nil, 0, fmt.Errorf("%w: value %d does not fit in %d bytes for field %s", ErrValueOverflow, n, size, u.name)
	}
	selfValue := n
	buf := make([]byte, size)
	for i := size - 1; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	return buf, selfValue, nil
}

func (u *UInt) decodeField(data []byte, offset *int, siblings map[string]uint64) (*Node, error) {
	size, err := u.size.resolve(siblings)
	if err != nil {
		return nil, err
	}
	if *offset+size > len(data) {
		return nil, fmt.Errorf("%w: field %s needs %d bytes, %d remain", ErrLengthUnderflow, u.name, size, len(data)-*offset)
	}
	raw := data[*offset : *offset+size]
	var v uint64
	for _, b := range raw {
		v = v<<8 | uint64(b)
	}
	*offset += size
	if u.name != "" {
		siblings[u.name] = v
	}
	return newPrimitiveNode(u.name, primUInt, append([]byte(nil), raw...), v), nil
}

func (u *UInt) validateField(node *Node, scope Scope, path string, errs *[]string) {
	val, ok := u.effectiveValue(scope)
	if !ok {
		return
	}
	matchValue(node, val, path, errs)
}

// Char is a fixed-size ASCII byte string, zero-padded on the right when
// an encoded value is shorter than size (spec.md DESIGN NOTES pins the
// padding direction).
type Char struct {
	name   string
	size   Size
	def    any
	hasDef bool
}

// NewChar builds a Char field.
func NewChar(size Size, name string, def any) *Char {
	return &Char{name: name, size: size, def: def, hasDef: def != nil}
}

func (c *Char) Name() string { return c.name }
func (c *Char) staticSize() (int, bool) {
	if c.size.isRef() {
		return 0, false
	}
	return c.size.literal, true
}

func (c *Char) effectiveValue(scope Scope) (any, bool) {
	if scope.hasDirect {
		return scope.direct, true
	}
	if c.hasDef {
		return c.def, true
	}
	return nil, false
}

func (c *Char) encodeField(scope Scope, siblings map[string]uint64) ([]byte, uint64, error) {
	val, ok := c.effectiveValue(scope)
	if !ok {
		return nil, 0, fmt.Errorf("%w: no value for field %s", ErrMissingValue, c.name)
	}
	raw, err := resolveBytes(val)
	if err != nil {
		return nil, 0, err
	}
	size, err := c.size.resolve(siblings)
	if err != nil {
		return nil, 0, err
	}
	if len(raw) > size {
		return nil, 0, fmt.Errorf("%w: value does not fit in %d bytes for field %s", ErrValueOverflow, size, c.name)
	}
	buf := make([]byte, size)
	copy(buf, raw)
	return buf, 0, nil
}

func (c *Char) decodeField(data []byte, offset *int, siblings map[string]uint64) (*Node, error) {
	size, err := c.size.resolve(siblings)
	if err != nil {
		return nil, err
	}
	if *offset+size > len(data) {
		return nil, fmt.Errorf("%w: field %s needs %d bytes, %d remain", ErrLengthUnderflow, c.name, size, len(data)-*offset)
	}
	raw := append([]byte(nil), data[*offset:*offset+size]...)
	*offset += size
	return newPrimitiveNode(c.name, primChar, raw, 0), nil
}

func (c *Char) validateField(node *Node, scope Scope, path string, errs *[]string) {
	val, ok := c.effectiveValue(scope)
	if !ok {
		return
	}
	matchValue(node, val, path, errs)
}
