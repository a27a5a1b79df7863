package rules

import (
	"sort"

	"mend/internal/delim"
	"mend/internal/fix"
)

// unclosedBlock closes a declaration body that is still open when the next
// sibling declaration begins.
type unclosedBlock struct{}

func (unclosedBlock) Name() string { return UnclosedBlock }

func (unclosedBlock) Match(lines []string, target int) (fix.Edit, bool) {
	x := analyze(lines)
	t := x.target(target)

	type cand struct {
		header int
		edit   fix.Edit
	}
	var before, after []cand
	for h := range lines {
		if !x.code(h) || !declHeader(x.trimmed(h)) {
			continue
		}
		edit, ok := x.closeBlock(h)
		if !ok {
			continue
		}
		if h <= t {
			before = append(before, cand{h, edit})
		} else {
			after = append(after, cand{h, edit})
		}
	}
	// nearest header preceding the diagnosed line wins, then the following ones
	sort.Slice(before, func(i, j int) bool { return before[i].header > before[j].header })
	all := append(before, after...)
	if len(all) == 0 {
		return fix.Edit{}, false
	}
	return all[0].edit, true
}

// closeBlock checks that the block opened on line h is still open, and only
// it, when the next sibling declaration starts.
func (x *text) closeBlock(h int) (fix.Edit, bool) {
	width := delim.Width(x.lines[h])
	sib := -1
	for j := h + 1; j < len(x.lines); j++ {
		if x.code(j) && delim.Width(x.lines[j]) <= width && x.lead(j) {
			sib = j
			break
		}
	}
	if sib < 0 {
		return fix.Edit{}, false
	}
	if x.between(h, sib) != (delim.Balance{Brace: 1}) {
		return fix.Edit{}, false
	}
	// the header's brace must stay open through the whole window
	if x.between(h, h+1).Brace < 1 {
		return fix.Edit{}, false
	}
	for j := h + 1; j < sib; j++ {
		if x.between(h, j+1).Brace < 1 {
			return fix.Edit{}, false
		}
	}

	last := sib - 1
	for last > h && (delim.Blank(x.lines[last]) || x.comment(last)) {
		last--
	}
	if last > h && !terminal(x.trimmed(last)) {
		return fix.Edit{}, false
	}

	edit := fix.Insert(last+1, delim.IndentOf(x.lines[h])+"}")
	if !windowBalanced(x.lines, edit, h, last+2) {
		return fix.Edit{}, false
	}
	return edit, true
}

// windowBalanced applies edit and reports whether lines [from, to) of the
// result are balanced and never close more than they open.
func windowBalanced(lines []string, edit fix.Edit, from, to int) bool {
	patched, err := edit.ApplyTo(lines)
	if err != nil || to > len(patched) {
		return false
	}
	y := analyze(patched)
	for j := from + 1; j <= to; j++ {
		if y.between(from, j).Negative() {
			return false
		}
	}
	return y.between(from, to).Zero()
}
