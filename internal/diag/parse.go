package diag

import (
	"errors"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultMarker prefixes location lines in rustc-style output.
const DefaultMarker = "-->"

// ErrUnparseable is returned when a failed check yields no location markers.
var ErrUnparseable = errors.New("checker failed but reported no recognisable locations")

var headerRe = regexp.MustCompile(`^(error|warning|note|help)(\[[A-Za-z0-9_]+\])?:`)

// Parser extracts locations from raw checker output.
type Parser struct {
	location *regexp.Regexp
}

// NewParser builds a parser for location lines starting with marker.
// An empty marker selects DefaultMarker.
func NewParser(marker string) *Parser {
	if strings.TrimSpace(marker) == "" {
		marker = DefaultMarker
	}
	pattern := `^\s*` + regexp.QuoteMeta(marker) + `\s*(.+?):(\d+)(?::(\d+))?\s*$`
	return &Parser{location: regexp.MustCompile(pattern)}
}

// Parse is NewParser(marker).Parse(text).
func Parse(text, marker string) *Bag {
	return NewParser(marker).Parse(text)
}

// Parse returns the unique locations in text, in first-seen order.
func (p *Parser) Parse(text string) *Bag {
	bag := NewBag()
	header, sev := "", SevError
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if m := headerRe.FindStringSubmatch(line); m != nil {
			header = strings.TrimSpace(line)
			sev = severityOf(m[1])
			continue
		}
		m := p.location.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, err := strconv.Atoi(m[2])
		if err != nil || lineNo <= 0 {
			continue
		}
		col := 0
		if m[3] != "" {
			col, _ = strconv.Atoi(m[3])
		}
		bag.Add(Diagnostic{
			Path:     cleanPath(m[1]),
			Line:     lineNo,
			Column:   col,
			Severity: sev,
			Message:  header,
			Raw:      strings.TrimSpace(line),
		})
	}
	return bag
}

func severityOf(word string) Severity {
	switch word {
	case "warning":
		return SevWarning
	case "note", "help":
		return SevInfo
	}
	return SevError
}

// cleanPath приводит путь к NFC и "/", иначе один файл даёт два ключа.
func cleanPath(p string) string {
	p = norm.NFC.String(strings.TrimSpace(p))
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
}
