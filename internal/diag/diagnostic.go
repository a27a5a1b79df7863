package diag

import "fmt"

// Location identifies a (file, line) pair; it is the dedup key of a Bag.
type Location struct {
	Path string
	Line int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.Path, l.Line)
}

type Diagnostic struct {
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Column   int      `json:"column,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message,omitempty"`
	Raw      string   `json:"raw"`
}

// Location returns the dedup key of d.
func (d Diagnostic) Location() Location {
	return Location{Path: d.Path, Line: d.Line}
}

// String renders "path:line[:col]: message".
func (d Diagnostic) String() string {
	pos := d.Location().String()
	if d.Column > 0 {
		pos = fmt.Sprintf("%s:%d", pos, d.Column)
	}
	if d.Message == "" {
		return pos
	}
	return pos + ": " + d.Message
}
