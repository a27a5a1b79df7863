package fix

// Ledger remembers the edits applied to each file during one iteration so
// that line numbers reported by the checker before those edits can be mapped
// onto the current file.
type Ledger struct {
	byPath map[string][]Edit
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{byPath: make(map[string][]Edit)}
}

// Record appends an applied edit for path. Edits must be recorded in the
// order they were written, each in the coordinates of the file at that time.
func (l *Ledger) Record(path string, e Edit) {
	l.byPath[path] = append(l.byPath[path], Edit{Start: e.Start, End: e.End, Lines: e.Lines})
}

// Translate maps a 1-based line from the checker's view of path to the
// current file. ok is false when the line was inside a replaced range.
func (l *Ledger) Translate(path string, line int) (int, bool) {
	idx := line - 1
	for _, e := range l.byPath[path] {
		switch {
		case idx < e.Start:
		case idx >= e.End:
			idx += e.Delta()
		default:
			return 0, false
		}
	}
	return idx + 1, true
}

// Reset forgets all edits; called at the start of every iteration.
func (l *Ledger) Reset() {
	clear(l.byPath)
}
