package template

import (
	"fmt"
	"regexp"
)

// matchValue implements the matching rule of spec.md §4.5: the expected
// value is a string (or coercible to one). If it parses as an integer
// (decimal or 0x hex), equality is by integer value. Otherwise it's a
// regular expression matched against the field's hex representation
// (without the "0x" prefix), anchored at the start.
func matchValue(node *Node, expected any, path string, errs *[]string) {
	expectedStr := stringifyExpected(expected)

	actualHex, err := node.Hex()
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("Value of field %s does not match: %v", path, err))
		return
	}
	actual := actualHex[2:] // strip "0x"

	if want, ok := parseUintLiteral(expectedStr); ok {
		if node.prim != primUInt {
			*errs = append(*errs, fmt.Sprintf("Value of field %s does not match %s!=%s", path, actual, expectedStr))
			return
		}
		if node.intVal != want {
			*errs = append(*errs, fmt.Sprintf("Value of field %s does not match %s!=%s", path, actual, expectedStr))
		}
		return
	}

	re, err := regexp.Compile("^(?:" + expectedStr + ")")
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("Value of field %s does not match: invalid pattern %q", path, expectedStr))
		return
	}
	if !re.MatchString(actual) {
		*errs = append(*errs, fmt.Sprintf("Value of field %s does not match %s!=%s", path, actual, expectedStr))
	}
}

func stringifyExpected(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case uint64:
		return fmt.Sprintf("%d", t)
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
