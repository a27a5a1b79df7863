package rules

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"mend/internal/delim"
	"mend/internal/fix"
	"mend/internal/trace"
)

// ErrNoRuleMatched is returned when no rule recognises the damage at a location.
var ErrNoRuleMatched = errors.New("no rule matched")

// Rule names, in catalog order.
const (
	DanglingContinuation = "dangling-continuation"
	StructLiteral        = "struct-literal"
	UnclosedBlock        = "unclosed-block"
	TrailingIncomplete   = "trailing-incomplete"
)

// Rule recognises one damaged shape. Match gets the file's lines and the
// 1-based diagnosed line; it must return false rather than guess when the
// replacement would not be delimiter-balanced.
type Rule interface {
	Name() string
	Match(lines []string, target int) (fix.Edit, bool)
}

// Default returns the built-in rules, most specific first.
func Default() []Rule {
	return []Rule{
		danglingContinuation{},
		structLiteral{},
		unclosedBlock{},
		trailingIncomplete{},
	}
}

// Names lists the built-in rule names in priority order.
func Names() []string {
	rs := Default()
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name()
	}
	return names
}

// Match is an accepted rule result.
type Match struct {
	Rule   string
	Edit   fix.Edit
	Before int // imbalance of the file before the edit
	After  int // imbalance after the edit
}

// Catalog tries rules in order.
type Catalog struct {
	rules []Rule
}

// New builds a catalog from the default rules without the disabled ones.
func New(disabled []string) (*Catalog, error) {
	skip := make(map[string]bool, len(disabled))
	known := make(map[string]bool)
	for _, n := range Names() {
		known[n] = true
	}
	for _, n := range disabled {
		if !known[n] {
			return nil, fmt.Errorf("unknown rule %q", n)
		}
		skip[n] = true
	}
	var rs []Rule
	for _, r := range Default() {
		if !skip[r.Name()] {
			rs = append(rs, r)
		}
	}
	return &Catalog{rules: rs}, nil
}

// NewWith builds a catalog from explicit rules.
func NewWith(rs ...Rule) *Catalog {
	return &Catalog{rules: rs}
}

// Rules returns the active rules in order.
func (c *Catalog) Rules() []Rule {
	return c.rules
}

// Match returns the first rule whose edit strictly lowers the imbalance of
// lines. It returns ErrNoRuleMatched when none does.
func (c *Catalog) Match(ctx context.Context, lines []string, target int) (Match, error) {
	before := delim.Imbalance(lines)

	for _, r := range c.rules {
		edit, ok := r.Match(lines, target)
		if !ok {
			continue
		}
		patched, err := edit.ApplyTo(lines)
		if err != nil {
			trace.Rule(ctx, r.Name(), "edit out of range")
			continue
		}
		after := delim.Imbalance(patched)
		if after >= before {
			trace.Rule(ctx, r.Name(), "rejected: imbalance "+strconv.Itoa(before)+" -> "+strconv.Itoa(after))
			continue
		}
		edit.Rule = r.Name()
		trace.Rule(ctx, r.Name(), edit.String())
		return Match{Rule: r.Name(), Edit: edit, Before: before, After: after}, nil
	}
	return Match{}, ErrNoRuleMatched
}
