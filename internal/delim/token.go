package delim

// Kind identifies a delimiter family.
type Kind uint8

const (
	Paren   Kind = iota // ( )
	Brace               // { }
	Bracket             // [ ]
)

func (k Kind) String() string {
	switch k {
	case Paren:
		return "paren"
	case Brace:
		return "brace"
	case Bracket:
		return "bracket"
	}
	return "unknown"
}

// Token is a single delimiter occurrence. Line and Col are 0-based.
type Token struct {
	Ch   byte
	Line int
	Col  int
}

// Kind returns the delimiter family of the token.
func (t Token) Kind() Kind {
	switch t.Ch {
	case '(', ')':
		return Paren
	case '{', '}':
		return Brace
	default:
		return Bracket
	}
}

// Opener reports whether the token opens a group.
func (t Token) Opener() bool {
	return t.Ch == '(' || t.Ch == '{' || t.Ch == '['
}

// Closer returns the closing byte matching an opener.
func Closer(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '{':
		return '}'
	case '[':
		return ']'
	}
	return 0
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '{', '}', '[', ']':
		return true
	}
	return false
}

// Balance is the per-family count of openers minus closers.
type Balance struct {
	Paren   int
	Brace   int
	Bracket int
}

// Add accounts for one token.
func (b *Balance) Add(t Token) {
	d := 1
	if !t.Opener() {
		d = -1
	}
	switch t.Kind() {
	case Paren:
		b.Paren += d
	case Brace:
		b.Brace += d
	case Bracket:
		b.Bracket += d
	}
}

// Zero reports whether every family is balanced.
func (b Balance) Zero() bool {
	return b.Paren == 0 && b.Brace == 0 && b.Bracket == 0
}

// Negative reports whether any family has more closers than openers.
func (b Balance) Negative() bool {
	return b.Paren < 0 || b.Brace < 0 || b.Bracket < 0
}

// Imbalance is the distance of the balance from zero.
func (b Balance) Imbalance() int {
	return abs(b.Paren) + abs(b.Brace) + abs(b.Bracket)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
