package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Params is the flat, caller-supplied parameter map keyed by dotted/
// indexed path, e.g. "liststruct[1].first" or "field_2". Values are
// typically int, uint64, or string (plain ASCII, decimal, or a 0x hex
// literal per spec.md §6).
type Params map[string]any

// tokenize splits a path into its ordered name/index tokens. Both
// "liststruct[1].first" and "liststruct.1.first" tokenize identically,
// which is what lets a container strip its own name/index and hand the
// remainder straight back through tokenize at the next level down.
func tokenize(path string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			i++
		case '[':
			j := strings.IndexByte(path[i:], ']')
			if j < 0 {
				return nil, fmt.Errorf("path %q: unterminated '['", path)
			}
			tokens = append(tokens, path[i+1:i+j])
			i += j + 1
		default:
			j := i
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			tokens = append(tokens, path[i:j])
			i = j
		}
	}
	return tokens, nil
}

// Scope is the parameter map already projected onto one container's own
// children: a field never sees its own name in the map it's handed, only
// its parent strips that prefix before recursing. A scope is either a
// single direct value (a leaf override reaching a childless field) or a
// table of sub-paths relative to this container's children.
type Scope struct {
	table     Params
	direct    any
	hasDirect bool
}

// NewScope wraps a raw top-level parameter map (used by MessageTemplate
// and Protocol, whose body/header fields are addressed directly with no
// enclosing container name to strip).
func NewScope(params Params) Scope {
	return Scope{table: params}
}

// child projects the scope onto the named child: params keyed exactly
// "name" become a direct value for that child; params keyed "name.rest"
// or "name[idx]..." become entries of the child's own scope table.
func (s Scope) child(name string) (Scope, error) {
	out := Scope{table: Params{}}
	for key, val := range s.table {
		tokens, err := tokenize(key)
		if err != nil {
			return Scope{}, err
		}
		if len(tokens) == 0 || tokens[0] != name {
			continue
		}
		if len(tokens) == 1 {
			out.direct = val
			out.hasDirect = true
			continue
		}
		out.table[strings.Join(tokens[1:], ".")] = val
	}
	return out, nil
}

// childAt projects the scope onto the element at list index idx.
func (s Scope) childAt(idx int) (Scope, error) {
	out := Scope{table: Params{}}
	want := strconv.Itoa(idx)
	for key, val := range s.table {
		tokens, err := tokenize(key)
		if err != nil {
			return Scope{}, err
		}
		if len(tokens) == 0 || tokens[0] != want {
			continue
		}
		if len(tokens) == 1 {
			out.direct = val
			out.hasDirect = true
			continue
		}
		out.table[strings.Join(tokens[1:], ".")] = val
	}
	return out, nil
}

// topLevelNames returns the set of first-path-segment names present in
// the scope's table. MessageTemplate.Encode does its own unknown-key
// check and does not call it.
func (s Scope) topLevelNames() (map[string]bool, error) {
	names := map[string]bool{}
	for key := range s.table {
		tokens, err := tokenize(key)
		if err != nil {
			return nil, err
		}
		if len(tokens) > 0 {
			names[tokens[0]] = true
		}
	}
	return names, nil
}
