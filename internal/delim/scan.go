package delim

import "unicode/utf8"

// Mode is the lexical state of the scanner at a position.
type Mode uint8

const (
	ModeCode Mode = iota
	ModeString
	ModeRawString
	ModeBacktick
	ModeBlockComment
)

// Result holds every delimiter of a text and the lexical state at each line start.
type Result struct {
	Tokens    []Token
	lineStart []int  // index into Tokens of the first token of each line
	startMode []Mode // state at the start of each line
	// Open lists openers left unmatched at end of input, outermost first.
	Open []Token
	// Stray lists closers that did not match the innermost open group.
	Stray []Token
	// EndMode is the state after the last line; anything but ModeCode means
	// the text ends inside a string or comment.
	EndMode Mode
}

type scanner struct {
	res        *Result
	mode       Mode
	commentLvl int // вложенность /* */
	rawHashes  int // число '#' у r#"..."#
	stack      []Token
}

// Scan tokenizes lines and matches delimiters with a stack.
func Scan(lines []string) *Result {
	s := &scanner{res: &Result{
		Tokens:    make([]Token, 0, len(lines)),
		lineStart: make([]int, len(lines)+1),
		startMode: make([]Mode, len(lines)),
	}}
	for i, line := range lines {
		s.res.lineStart[i] = len(s.res.Tokens)
		s.res.startMode[i] = s.mode
		s.scanLine(i, line)
	}
	s.res.lineStart[len(lines)] = len(s.res.Tokens)
	s.res.Open = s.stack
	s.res.EndMode = s.mode
	return s.res
}

// Line returns the delimiter tokens found on line l.
func (r *Result) Line(l int) []Token {
	if l < 0 || l+1 >= len(r.lineStart) {
		return nil
	}
	return r.Tokens[r.lineStart[l]:r.lineStart[l+1]]
}

// StartMode returns the lexical state at the beginning of line l.
func (r *Result) StartMode(l int) Mode {
	if l < 0 || l >= len(r.startMode) {
		return ModeCode
	}
	return r.startMode[l]
}

// InCode reports whether line l starts outside strings and comments.
func (r *Result) InCode(l int) bool {
	return r.StartMode(l) == ModeCode
}

// Balance sums all tokens.
func (r *Result) Balance() Balance {
	var b Balance
	for _, t := range r.Tokens {
		b.Add(t)
	}
	return b
}

// Imbalance of the whole text; see Balance.Imbalance.
func (r *Result) Imbalance() int {
	return r.Balance().Imbalance()
}

// Imbalance is a shortcut for Scan(lines).Imbalance().
func Imbalance(lines []string) int {
	return Scan(lines).Imbalance()
}

func (s *scanner) scanLine(ln int, line string) {
	i := 0
	for i < len(line) {
		switch s.mode {
		case ModeBlockComment:
			i = s.scanBlockComment(line, i)
		case ModeString:
			i = s.scanString(line, i)
		case ModeRawString:
			i = s.scanRawString(line, i)
		case ModeBacktick:
			i = s.scanBacktick(line, i)
		default:
			next, stop := s.scanCode(ln, line, i)
			if stop {
				return
			}
			i = next
		}
	}
}

// scanCode handles one step in code mode. stop is true when the rest of the
// line is a line comment.
func (s *scanner) scanCode(ln int, line string, i int) (int, bool) {
	b := line[i]
	switch {
	case b == '/' && i+1 < len(line) && line[i+1] == '/':
		return len(line), true
	case b == '/' && i+1 < len(line) && line[i+1] == '*':
		s.mode = ModeBlockComment
		s.commentLvl = 1
		return i + 2, false
	case b == '"':
		s.mode = ModeString
		return i + 1, false
	case b == '`':
		s.mode = ModeBacktick
		return i + 1, false
	case b == 'r' && rawStringPrefix(line, i):
		j := i + 1
		for j < len(line) && line[j] == '#' {
			j++
		}
		if j < len(line) && line[j] == '"' {
			s.mode = ModeRawString
			s.rawHashes = j - i - 1
			return j + 1, false
		}
		return i + 1, false
	case b == '\'':
		return skipQuote(line, i), false
	case isDelim(b):
		s.push(Token{Ch: b, Line: ln, Col: i})
		return i + 1, false
	}
	return i + 1, false
}

func (s *scanner) push(t Token) {
	s.res.Tokens = append(s.res.Tokens, t)
	if t.Opener() {
		s.stack = append(s.stack, t)
		return
	}
	if n := len(s.stack); n > 0 && Closer(s.stack[n-1].Ch) == t.Ch {
		s.stack = s.stack[:n-1]
		return
	}
	s.res.Stray = append(s.res.Stray, t)
}

func (s *scanner) scanBlockComment(line string, i int) int {
	for i < len(line) {
		if line[i] == '/' && i+1 < len(line) && line[i+1] == '*' {
			s.commentLvl++
			i += 2
			continue
		}
		if line[i] == '*' && i+1 < len(line) && line[i+1] == '/' {
			s.commentLvl--
			i += 2
			if s.commentLvl == 0 {
				s.mode = ModeCode
				return i
			}
			continue
		}
		i++
	}
	return i
}

func (s *scanner) scanString(line string, i int) int {
	for i < len(line) {
		switch line[i] {
		case '\\':
			// escape; '\' в конце строки продолжает литерал на следующей
			i += 2
		case '"':
			s.mode = ModeCode
			return i + 1
		default:
			i++
		}
	}
	return len(line)
}

func (s *scanner) scanRawString(line string, i int) int {
	for i < len(line) {
		if line[i] == '"' && closesRaw(line, i, s.rawHashes) {
			s.mode = ModeCode
			return i + 1 + s.rawHashes
		}
		i++
	}
	return i
}

func (s *scanner) scanBacktick(line string, i int) int {
	for i < len(line) {
		if line[i] == '`' {
			s.mode = ModeCode
			return i + 1
		}
		i++
	}
	return i
}

func closesRaw(line string, i, hashes int) bool {
	if i+hashes >= len(line) {
		return false
	}
	for k := 1; k <= hashes; k++ {
		if line[i+k] != '#' {
			return false
		}
	}
	return true
}

// rawStringPrefix reports whether the 'r' at i starts r"..." / r#"..."# / br"...".
func rawStringPrefix(line string, i int) bool {
	if i+1 >= len(line) || (line[i+1] != '"' && line[i+1] != '#') {
		return false
	}
	if i == 0 {
		return true
	}
	prev := line[i-1]
	if prev == 'b' {
		return i < 2 || !isIdentByte(line[i-2])
	}
	return !isIdentByte(prev)
}

// skipQuote consumes a character literal starting at i, or just the quote of
// a lifetime / label.
func skipQuote(line string, i int) int {
	if i+1 >= len(line) {
		return i + 1
	}
	if line[i+1] == '\\' {
		for j := i + 3; j < len(line); j++ {
			if line[j] == '\'' {
				return j + 1
			}
		}
		return len(line)
	}
	_, size := utf8.DecodeRuneInString(line[i+1:])
	if end := i + 1 + size; end < len(line) && line[end] == '\'' {
		return end + 1
	}
	return i + 1
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
