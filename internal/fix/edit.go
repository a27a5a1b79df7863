package fix

import "fmt"

// Edit replaces the half-open line range [Start, End) with Lines.
// Line numbers are 0-based indexes into source.File.Lines(); Start == End
// inserts before Start.
type Edit struct {
	Start int
	End   int
	Lines []string
	Rule  string // name of the rule that produced the edit
}

// Insert creates an edit that inserts lines before line index at.
func Insert(at int, lines ...string) Edit {
	return Edit{Start: at, End: at, Lines: lines}
}

// IsInsert reports whether the edit removes no lines.
func (e Edit) IsInsert() bool {
	return e.Start == e.End
}

// Delta is the change in line count after the edit.
func (e Edit) Delta() int {
	return len(e.Lines) - (e.End - e.Start)
}

// Valid reports whether the range exists in a file of n lines.
func (e Edit) Valid(n int) bool {
	return e.Start >= 0 && e.Start <= e.End && e.End <= n
}

// ApplyTo returns a new slice with the edit applied; lines is not modified.
func (e Edit) ApplyTo(lines []string) ([]string, error) {
	if !e.Valid(len(lines)) {
		return nil, fmt.Errorf("%w: range [%d,%d) outside %d lines", ErrStale, e.Start, e.End, len(lines))
	}
	out := make([]string, 0, len(lines)+e.Delta())
	out = append(out, lines[:e.Start]...)
	out = append(out, e.Lines...)
	out = append(out, lines[e.End:]...)
	return out, nil
}

func (e Edit) String() string {
	if e.IsInsert() {
		return fmt.Sprintf("insert %d line(s) at %d", len(e.Lines), e.Start+1)
	}
	return fmt.Sprintf("replace lines %d-%d with %d line(s)", e.Start+1, e.End, len(e.Lines))
}
