package template

import "fmt"

// encodeFieldList encodes an ordered list of sibling fields against a
// scope already projected onto their shared parent (a Struct body, a
// MessageTemplate body, or a Protocol header section). It returns the
// concatenated bytes and the sibling map it built up along the way; the
// current callers (Struct and MessageTemplate) use only the bytes.
func encodeFieldList(fields []Field, scope Scope) ([]byte, map[string]uint64, error) {
	siblings := map[string]uint64{}
	var out []byte
	for _, f := range fields {
		childScope, err := scope.child(f.Name())
		if err != nil {
			return nil, nil, err
		}
		encoded, selfValue, err := f.encodeField(childScope, siblings)
		if err != nil {
			return nil, nil, err
		}
		if f.Name() != "" {
			siblings[f.Name()] = selfValue
		}
		out = append(out, encoded...)
	}
	return out, siblings, nil
}

func decodeFieldList(fields []Field, data []byte, offset *int) ([]*Node, error) {
	siblings := map[string]uint64{}
	nodes := make([]*Node, 0, len(fields))
	for _, f := range fields {
		node, err := f.decodeField(data, offset, siblings)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func validateFieldList(fields []Field, nodes []*Node, scope Scope, pathPrefix string, errs *[]string) {
	for i, f := range fields {
		childScope, err := scope.child(f.Name())
		if err != nil {
			*errs = append(*errs, err.Error())
			continue
		}
		path := f.Name()
		if pathPrefix != "" {
			path = pathPrefix + "." + f.Name()
		}
		f.validateField(nodes[i], childScope, path, errs)
	}
}

// Struct is a named, ordered sequence of child fields. Its encoded
// length is the sum of its children's encoded lengths; children are
// addressed by "structname.childname" paths (spec.md §3).
type Struct struct {
	typeName string
	name     string
	children []Field
}

// NewStruct builds a Struct. typeName is descriptive only (mirrors the
// source's Struct(type_name, field_name) constructor); name is what
// parameter paths and sibling maps use.
func NewStruct(typeName, name string) *Struct {
	return &Struct{typeName: typeName, name: name}
}

// Add appends a child field in declaration order.
func (s *Struct) Add(f Field) *Struct {
	s.children = append(s.children, f)
	return s
}

func (s *Struct) Name() string { return s.name }

func (s *Struct) staticSize() (int, bool) {
	total := 0
	for _, c := range s.children {
		n, ok := c.staticSize()
		if !ok {
			return 0, false
		}
		total += n
	}
	return total, true
}

func (s *Struct) encodeField(scope Scope, _ map[string]uint64) ([]byte, uint64, error) {
	encoded, _, err := encodeFieldList(s.children, scope)
	return encoded, 0, err
}

func (s *Struct) decodeField(data []byte, offset *int, _ map[string]uint64) (*Node, error) {
	nodes, err := decodeFieldList(s.children, data, offset)
	if err != nil {
		return nil, err
	}
	return newStructNode(s.name, nodes), nil
}

func (s *Struct) validateField(node *Node, scope Scope, path string, errs *[]string) {
	if node == nil || node.kind != KindStruct {
		*errs = append(*errs, fmt.Sprintf("Value of field %s does not match: expected a struct", path))
		return
	}
	validateFieldList(s.children, node.children, scope, path, errs)
}

// List is a homogeneous array of a single element template, whose size
// is either a literal or a length reference to an earlier sibling field
// in the SAME parent container (spec.md §3/§4.3).
type List struct {
	name    string
	size    Size
	element Field
}

// NewList builds a List of the given size.
func NewList(size Size, name string) *List {
	return &List{name: name, size: size}
}

// Add sets the list's single element template. Calling it more than
// once replaces the previous element template, matching the source's
// List(size, name).add(element) builder idiom.
func (l *List) Add(element Field) *List {
	l.element = element
	return l
}

func (l *List) Name() string { return l.name }

func (l *List) staticSize() (int, bool) {
	if l.size.isRef() {
		return 0, false
	}
	elemSize, ok := l.element.staticSize()
	if !ok {
		return 0, false
	}
	return l.size.literal * elemSize, true
}

func (l *List) encodeField(scope Scope, siblings map[string]uint64) ([]byte, uint64, error) {
	size, err := l.size.resolve(siblings)
	if err != nil {
		return nil, 0, err
	}
	var out []byte
	for i := 0; i < size; i++ {
		elemScope, err := scope.childAt(i)
		if err != nil {
			return nil, 0, err
		}
		encoded, _, err := l.element.encodeField(elemScope, map[string]uint64{})
		if err != nil {
			return nil, 0, fmt.Errorf("%s[%d]: %w", l.name, i, err)
		}
		out = append(out, encoded...)
	}
	return out, 0, nil
}

func (l *List) decodeField(data []byte, offset *int, siblings map[string]uint64) (*Node, error) {
	size, err := l.size.resolve(siblings)
	if err != nil {
		return nil, err
	}
	elements := make([]*Node, 0, size)
	for i := 0; i < size; i++ {
		node, err := l.element.decodeField(data, offset, map[string]uint64{})
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", l.name, i, err)
		}
		elements = append(elements, node)
	}
	return newListNode(l.name, elements), nil
}

func (l *List) validateField(node *Node, scope Scope, path string, errs *[]string) {
	if node == nil || node.kind != KindList {
		*errs = append(*errs, fmt.Sprintf("Value of field %s does not match: expected a list", path))
		return
	}
	for i, elem := range node.elements {
		elemScope, err := scope.childAt(i)
		if err != nil {
			*errs = append(*errs, err.Error())
			continue
		}
		l.element.validateField(elem, elemScope, fmt.Sprintf("%s[%d]", path, i), errs)
	}
}
