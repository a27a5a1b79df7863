package trace

import (
	"fmt"
	"strings"
)

// Level selects which scopes are written out.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing is written; the ring is dumped when a run ends FATAL
	LevelPhase        // run and iteration spans
	LevelDetail       // plus checker runs and patches
	LevelDebug        // plus every rule tried
)

var levelNames = []string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by Level.String, in any case.
func ParseLevel(s string) (Level, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if name == want {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (expected %s)", s, strings.Join(levelNames, "|"))
}

// writes reports whether events of scope are written out at l.
func (l Level) writes(scope Scope) bool {
	if l < LevelPhase {
		return false
	}
	return scope <= ScopeIteration+Scope(l-LevelPhase)
}

// keeps reports whether events of scope are recorded at all. At LevelError
// everything goes to the ring so a fatal run can be explained afterwards.
func (l Level) keeps(scope Scope) bool {
	return l == LevelError || l.writes(scope)
}
