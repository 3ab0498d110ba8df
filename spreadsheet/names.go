package spreadsheet

import (
	"regexp"
	"strings"
)

var unsafe = regexp.MustCompile(`[\s_]+`)

// SafeColumnName reduces a column header to the element name used by the list feed, e.g.
// 'Last Name' -> 'lastname'.
func SafeColumnName(name string) string {
	return strings.ToLower(unsafe.ReplaceAllString(name, ""))
}
