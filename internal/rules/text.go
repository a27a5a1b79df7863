package rules

import (
	"strings"

	"mend/internal/delim"
)

// text is a scanned view of a file shared by the rules.
type text struct {
	lines []string
	res   *delim.Result
	pre   []delim.Balance // pre[l] = balance of lines [0, l)
}

func analyze(lines []string) *text {
	res := delim.Scan(lines)
	pre := make([]delim.Balance, len(lines)+1)
	for l := range lines {
		pre[l+1] = pre[l]
		for _, t := range res.Line(l) {
			pre[l+1].Add(t)
		}
	}
	return &text{lines: lines, res: res, pre: pre}
}

// between returns the balance of lines [a, b).
func (x *text) between(a, b int) delim.Balance {
	return delim.Balance{
		Paren:   x.pre[b].Paren - x.pre[a].Paren,
		Brace:   x.pre[b].Brace - x.pre[a].Brace,
		Bracket: x.pre[b].Bracket - x.pre[a].Bracket,
	}
}

// code reports whether line l is non-blank and starts outside strings and comments.
func (x *text) code(l int) bool {
	return l >= 0 && l < len(x.lines) && x.res.InCode(l) && !delim.Blank(x.lines[l])
}

// trimmed returns line l without indentation, trailing line comment and spaces.
func (x *text) trimmed(l int) string {
	return strings.TrimSpace(stripComment(x.lines[l]))
}

// lead reports whether line l begins an item; see declLead.
func (x *text) lead(l int) bool {
	return declLead(strings.TrimSpace(x.lines[l]))
}

// comment reports whether line l holds only a line comment.
func (x *text) comment(l int) bool {
	return strings.HasPrefix(strings.TrimSpace(x.lines[l]), "//")
}

// target converts a 1-based diagnostic line into an index inside the file.
func (x *text) target(line int) int {
	t := line - 1
	if t >= len(x.lines) {
		t = len(x.lines) - 1
	}
	if t < 0 {
		t = 0
	}
	return t
}

// stripComment drops a trailing "//" comment that is not inside a string.
func stripComment(line string) string {
	inStr := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if inStr {
				i++
			}
		case '"':
			inStr = !inStr
		case '/':
			if !inStr && i+1 < len(line) && line[i+1] == '/' {
				return line[:i]
			}
		}
	}
	return line
}

// hasKeyword reports whether s starts with kw as a whole word.
func hasKeyword(s, kw string) bool {
	if !strings.HasPrefix(s, kw) {
		return false
	}
	if len(s) == len(kw) || strings.HasSuffix(kw, "!") {
		return true
	}
	b := s[len(kw)]
	return !(b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9'))
}

// stripModifiers removes visibility and qualifier prefixes of a declaration.
func stripModifiers(s string) string {
	for {
		switch {
		case strings.HasPrefix(s, "pub("):
			end := strings.IndexByte(s, ')')
			if end < 0 {
				return s
			}
			s = strings.TrimSpace(s[end+1:])
		case hasKeyword(s, "pub"), hasKeyword(s, "async"), hasKeyword(s, "unsafe"), hasKeyword(s, "default"):
			i := strings.IndexByte(s, ' ')
			if i < 0 {
				return s
			}
			s = strings.TrimSpace(s[i+1:])
		case hasKeyword(s, "const") && (hasKeyword(strings.TrimSpace(s[5:]), "fn") ||
			hasKeyword(strings.TrimSpace(s[5:]), "unsafe") || hasKeyword(strings.TrimSpace(s[5:]), "async")):
			s = strings.TrimSpace(s[5:])
		case strings.HasPrefix(s, `extern "`):
			end := strings.IndexByte(s[8:], '"')
			if end < 0 {
				return s
			}
			rest := strings.TrimSpace(s[8+end+1:])
			if rest == "{" || rest == "" {
				return "extern"
			}
			s = rest
		default:
			return s
		}
	}
}

var declKeywords = []string{
	"fn", "struct", "enum", "impl", "trait", "mod", "type", "const",
	"static", "union", "use", "extern", "macro_rules!",
}

// blockKeywords are the declarations that can open a body with '{'.
var blockKeywords = []string{"fn", "impl", "trait", "mod", "struct", "enum", "union", "extern", "macro_rules!"}

func startsWithAny(s string, kws []string) bool {
	for _, kw := range kws {
		if hasKeyword(s, kw) {
			return true
		}
	}
	return false
}

// declLead reports whether a trimmed line begins an item: attribute, doc
// comment or declaration keyword.
func declLead(s string) bool {
	if strings.HasPrefix(s, "#[") || strings.HasPrefix(s, "#![") || strings.HasPrefix(s, "///") {
		return true
	}
	return startsWithAny(stripModifiers(s), declKeywords)
}

// declHeader reports whether a trimmed line is a declaration opening a block.
func declHeader(s string) bool {
	return strings.HasSuffix(s, "{") && startsWithAny(stripModifiers(s), blockKeywords)
}

var controlKeywords = []string{"if", "while", "match", "for", "loop", "else"}

// control reports whether a trimmed line starts a control-flow construct.
func control(s string) bool {
	s = strings.TrimSpace(strings.TrimPrefix(s, "}"))
	return startsWithAny(s, controlKeywords)
}

// nonTerminal lists line endings after which an expression is still incomplete.
var nonTerminal = []string{",", "(", "[", "{", "=", ".", "+", "-", "*", "/", "%", "&", "|", "^", "!", "<", ">", ":", "\\"}

// terminal reports whether a trimmed line can end a block body.
func terminal(s string) bool {
	if s == "" {
		return false
	}
	for _, suf := range nonTerminal {
		if strings.HasSuffix(s, suf) {
			return false
		}
	}
	return true
}
