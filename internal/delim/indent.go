package delim

import "strings"

// tabWidth is the column width assumed for '\t' when comparing indentation.
const tabWidth = 4

// IndentOf returns the leading whitespace of line.
func IndentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// Width measures the leading whitespace of line in columns.
func Width(line string) int {
	w := 0
	for _, b := range []byte(IndentOf(line)) {
		if b == '\t' {
			w += tabWidth
		} else {
			w++
		}
	}
	return w
}

// Blank reports whether line holds only whitespace.
func Blank(line string) bool {
	return strings.TrimSpace(line) == ""
}
