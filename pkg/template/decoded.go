package template

import (
	"encoding/hex"
	"fmt"
)

// Kind tags a decoded Node as one of the three shapes the engine ever
// produces: a primitive leaf, a struct (named children), or a list
// (indexed children). This is the tagged-variant replacement for the
// source's dynamic-attribute Message objects (spec.md §9).
type Kind int

const (
	KindPrimitive Kind = iota
	KindStruct
	KindList
)

// primitiveKind distinguishes the two primitive wire types.
type primitiveKind int

const (
	primUInt primitiveKind = iota
	primChar
)

// Node is a single decoded field, container, or list element. It is
// immutable once produced by MessageTemplate.Decode or
// MessageTemplate.Encode.
type Node struct {
	kind Kind
	name string
	raw  []byte

	// KindPrimitive
	prim   primitiveKind
	intVal uint64

	// KindStruct
	children    []*Node
	childByName map[string]int

	// KindList
	elements []*Node
}

// Len returns the encoded byte footprint of this node.
func (n *Node) Len() int { return len(n.raw) }

// Bytes returns the raw encoded image of this node.
func (n *Node) Bytes() []byte { return n.raw }

// Int returns a UInt field's decoded integer value.
func (n *Node) Int() (uint64, error) {
	if n.kind != KindPrimitive || n.prim != primUInt {
		return 0, fmt.Errorf("%w: Int() on %s", ErrKindMismatch, n.name)
	}
	return n.intVal, nil
}

// Hex returns "0x" followed by the field's hex representation: for a
// UInt field this is the minimal (unpadded) hex of its integer value;
// for a Char field this is the full hex encoding of its raw bytes.
func (n *Node) Hex() (string, error) {
	if n.kind != KindPrimitive {
		return "", fmt.Errorf("%w: Hex() on %s", ErrKindMismatch, n.name)
	}
	if n.prim == primUInt {
		return formatHex(n.intVal), nil
	}
	return "0x" + hex.EncodeToString(n.raw), nil
}

// ASCII returns a Char field's content interpreted as an ASCII string.
func (n *Node) ASCII() (string, error) {
	if n.kind != KindPrimitive || n.prim != primChar {
		return "", fmt.Errorf("%w: ASCII() on %s", ErrKindMismatch, n.name)
	}
	return string(n.raw), nil
}

// Field returns a struct node's named child.
func (n *Node) Field(name string) (*Node, error) {
	if n.kind != KindStruct {
		return nil, fmt.Errorf("%w: Field(%q) on non-struct node %s", ErrKindMismatch, name, n.name)
	}
	idx, ok := n.childByName[name]
	if !ok {
		return nil, fmt.Errorf("%w: no field %q in %s", ErrReferenceNotFound, name, n.name)
	}
	return n.children[idx], nil
}

// Index returns a list node's element at position i.
func (n *Node) Index(i int) (*Node, error) {
	if n.kind != KindList {
		return nil, fmt.Errorf("%w: Index(%d) on non-list node %s", ErrKindMismatch, i, n.name)
	}
	if i < 0 || i >= len(n.elements) {
		return nil, fmt.Errorf("%w: index %d out of range for %s (len %d)", ErrReferenceNotFound, i, n.name, len(n.elements))
	}
	return n.elements[i], nil
}

// NumElements returns the number of elements in a list node.
func (n *Node) NumElements() int { return len(n.elements) }

// Get resolves a dotted/indexed path starting from this node, the same
// path language spec.md §4.6/§6 describes for parameter overrides.
func (n *Node) Get(path string) (*Node, error) {
	tokens, err := tokenize(path)
	if err != nil {
		return nil, err
	}
	cur := n
	for _, tok := range tokens {
		switch cur.kind {
		case KindStruct:
			cur, err = cur.Field(tok)
		case KindList:
			var idx int
			if _, scanErr := fmt.Sscanf(tok, "%d", &idx); scanErr != nil {
				return nil, fmt.Errorf("path %q: %q is not a list index", path, tok)
			}
			cur, err = cur.Index(idx)
		default:
			return nil, fmt.Errorf("%w: cannot descend into primitive field %s with %q", ErrKindMismatch, cur.name, tok)
		}
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func newPrimitiveNode(name string, kind primitiveKind, raw []byte, intVal uint64) *Node {
	return &Node{kind: KindPrimitive, name: name, raw: raw, prim: kind, intVal: intVal}
}

func newStructNode(name string, children []*Node) *Node {
	n := &Node{kind: KindStruct, name: name, children: children, childByName: map[string]int{}}
	raw := make([]byte, 0, len(children))
	for i, c := range children {
		if c.name != "" {
			n.childByName[c.name] = i
		}
		raw = append(raw, c.raw...)
	}
	n.raw = raw
	return n
}

func newListNode(name string, elements []*Node) *Node {
	n := &Node{kind: KindList, name: name, elements: elements}
	raw := make([]byte, 0)
	for _, e := range elements {
		raw = append(raw, e.raw...)
	}
	n.raw = raw
	return n
}
