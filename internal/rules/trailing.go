package rules

import (
	"mend/internal/delim"
	"mend/internal/fix"
)

// trailingIncomplete closes every group still open at end of file.
type trailingIncomplete struct{}

func (trailingIncomplete) Name() string { return TrailingIncomplete }

func (trailingIncomplete) Match(lines []string, _ int) (fix.Edit, bool) {
	res := delim.Scan(lines)
	if len(res.Open) == 0 || len(res.Stray) > 0 || res.EndMode != delim.ModeCode {
		return fix.Edit{}, false
	}

	at := len(lines)
	for at > 0 && delim.Blank(lines[at-1]) {
		at--
	}

	closers := make([]string, 0, len(res.Open))
	for i := len(res.Open) - 1; i >= 0; i-- {
		open := res.Open[i]
		closers = append(closers, delim.IndentOf(lines[open.Line])+string(delim.Closer(open.Ch)))
	}
	return fix.Insert(at, closers...), true
}
