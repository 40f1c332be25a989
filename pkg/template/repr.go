package template

import (
	"fmt"
	"strings"
)

const indentUnit = "  "

// String renders a decoded message in the display form of spec.md §8:
// a name header line followed by one indented line per field, structs
// and lists nesting one indent level deeper than their parent.
func (m *Message) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", m.Name)
	writeChildren(&b, m.Body.children, 1)
	return b.String()
}

func writeChildren(b *strings.Builder, children []*Node, depth int) {
	for _, c := range children {
		writeNode(b, c, depth)
	}
}

func writeNode(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	switch n.kind {
	case KindPrimitive:
		switch n.prim {
		case primUInt:
			fmt.Fprintf(b, "%s%s = %s\n", indent, n.name, formatHex(n.intVal))
		case primChar:
			ascii, _ := n.ASCII()
			fmt.Fprintf(b, "%s%s = %q\n", indent, n.name, ascii)
		}
	case KindStruct:
		fmt.Fprintf(b, "%s%s:\n", indent, n.name)
		writeChildren(b, n.children, depth+1)
	case KindList:
		fmt.Fprintf(b, "%s%s:\n", indent, n.name)
		writeListElements(b, n.elements, depth+1)
	}
}

func writeListElements(b *strings.Builder, elements []*Node, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	for i, e := range elements {
		switch e.kind {
		case KindPrimitive:
			switch e.prim {
			case primUInt:
				fmt.Fprintf(b, "%s[%d] = %s\n", indent, i, formatHex(e.intVal))
			case primChar:
				ascii, _ := e.ASCII()
				fmt.Fprintf(b, "%s[%d] = %q\n", indent, i, ascii)
			}
		case KindStruct:
			fmt.Fprintf(b, "%s[%d]:\n", indent, i)
			writeChildren(b, e.children, depth+1)
		case KindList:
			fmt.Fprintf(b, "%s[%d]:\n", indent, i)
			writeListElements(b, e.elements, depth+1)
		}
	}
}
