package rules

import (
	"regexp"

	"mend/internal/delim"
	"mend/internal/fix"
)

var (
	// `Path::To::Name {` or `Name::<T> {` at the end of a line
	literalOpenRe = regexp.MustCompile(`(?:^|[^A-Za-z0-9_])(?:[A-Za-z_][A-Za-z0-9_]*::)*[A-Z][A-Za-z0-9_]*(?:::<[^{}]*>)?\s*\{$`)
	// `name: value,` / `name,` / `..base`
	fieldRe = regexp.MustCompile(`^(?:\.\.\S|[a-z_][A-Za-z0-9_]*\s*(?::[^:]|:$|,|$))`)
)

// structLiteral closes a record literal whose field list runs straight into
// the next declaration.
type structLiteral struct{}

func (structLiteral) Name() string { return StructLiteral }

func (structLiteral) Match(lines []string, target int) (fix.Edit, bool) {
	x := analyze(lines)
	t := x.target(target)

	// nearest opener at or above the diagnosed line
	for o := t; o >= 0; o-- {
		if !x.code(o) {
			continue
		}
		s := x.trimmed(o)
		if !literalOpenRe.MatchString(s) || x.lead(o) || control(s) {
			continue
		}
		if edit, sib, ok := x.closeLiteral(o); ok && t <= sib {
			return edit, true
		}
	}
	return fix.Edit{}, false
}

// closeLiteral returns the edit closing the literal opened on line o and the
// index of the declaration that follows its fields.
func (x *text) closeLiteral(o int) (fix.Edit, int, bool) {
	if x.between(o, o+1) != (delim.Balance{Brace: 1}) {
		return fix.Edit{}, 0, false
	}
	inside := delim.Balance{Brace: 1}
	sib := -1
	last := o
	for j := o + 1; j < len(x.lines); j++ {
		bal := x.between(o, j)
		if bal.Brace < 1 {
			return fix.Edit{}, 0, false
		}
		if bal != inside || !x.code(j) || x.comment(j) {
			if !delim.Blank(x.lines[j]) {
				last = j
			}
			continue
		}
		s := x.trimmed(j)
		if fieldRe.MatchString(s) {
			last = j
			continue
		}
		if x.lead(j) && delim.Width(x.lines[j]) <= delim.Width(x.lines[o]) {
			sib = j
		}
		break
	}
	if sib < 0 || last == o {
		return fix.Edit{}, 0, false
	}
	for last > o && x.comment(last) {
		last--
	}
	if x.between(o, last+1) != inside {
		return fix.Edit{}, 0, false
	}

	edit := fix.Insert(last+1, delim.IndentOf(x.lines[o])+"}")
	if !windowBalanced(x.lines, edit, o, last+2) {
		return fix.Edit{}, 0, false
	}
	return edit, sib, true
}
