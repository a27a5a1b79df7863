package rules

import (
	"regexp"
	"strings"

	"mend/internal/delim"
	"mend/internal/fix"
)

var (
	// a statement start inside what should have been a block
	statementRe = regexp.MustCompile(`^(?:(?:let|if|match|for|while|loop|return|break|continue)\b|[A-Za-z_][A-Za-z0-9_:]*!\s*[(\[{])`)
	// last element of a multi-line group: separator or chained call
	elementEndRe = regexp.MustCompile(`(?:,|\)|\?|[A-Za-z0-9_])$`)
)

// danglingContinuation restores the `) {` missing after a multi-line
// condition of an if/while/match/for header.
type danglingContinuation struct{}

func (danglingContinuation) Name() string { return DanglingContinuation }

func (danglingContinuation) Match(lines []string, target int) (fix.Edit, bool) {
	x := analyze(lines)
	t := x.target(target)

	for h := t; h >= 0; h-- {
		if !x.code(h) {
			continue
		}
		s := x.trimmed(h)
		if !control(s) || x.between(h, h+1) != (delim.Balance{Paren: 1}) {
			continue
		}
		if edit, orphan, ok := x.closeCondition(h); ok && (t <= orphan || x.tail(t)) {
			return edit, true
		}
	}
	return fix.Edit{}, false
}

// tail reports whether no code follows line l, as when the checker points at
// end of file.
func (x *text) tail(l int) bool {
	for j := l + 1; j < len(x.lines); j++ {
		if x.code(j) {
			return false
		}
	}
	return true
}

// closeCondition finds the first statement line after header h while only
// the header's paren is open, and checks that inserting `) {` there lets a
// later `}` at the header's indentation close the new block.
func (x *text) closeCondition(h int) (fix.Edit, int, bool) {
	open := delim.Balance{Paren: 1}
	boundary := -1
	for j := h + 1; j < len(x.lines); j++ {
		bal := x.between(h, j)
		if bal.Paren < 1 || bal.Negative() {
			return fix.Edit{}, 0, false
		}
		if bal != open || !x.code(j) || x.comment(j) {
			continue
		}
		s := x.trimmed(j)
		if statementRe.MatchString(s) {
			boundary = j
			break
		}
		if !elementEndRe.MatchString(s) {
			return fix.Edit{}, 0, false
		}
	}
	if boundary <= h+1 {
		return fix.Edit{}, 0, false
	}

	indent := delim.IndentOf(x.lines[h])
	edit := fix.Insert(boundary, indent+") {")
	patched, err := edit.ApplyTo(x.lines)
	if err != nil {
		return fix.Edit{}, 0, false
	}
	y := analyze(patched)
	if y.between(h, boundary+1) != (delim.Balance{Brace: 1}) {
		return fix.Edit{}, 0, false
	}
	width := delim.Width(x.lines[h])
	for j := boundary + 1; j < len(patched); j++ {
		bal := y.between(h, j+1)
		if bal.Negative() {
			return fix.Edit{}, 0, false
		}
		if bal.Zero() {
			if strings.HasPrefix(y.trimmed(j), "}") && delim.Width(patched[j]) == width {
				// j is in patched coordinates; the orphan was one line up
				return edit, j - 1, true
			}
			return fix.Edit{}, 0, false
		}
	}
	return fix.Edit{}, 0, false
}
