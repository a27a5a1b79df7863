package trace

import "time"

// Kind of trace event.
type Kind uint8

const (
	KindBegin Kind = iota + 1 // span opened
	KindEnd                   // span closed
	KindRule                  // one rule tried at a location
	KindPulse                 // checker still running
)

var kindNames = [...]string{KindBegin: "begin", KindEnd: "end", KindRule: "rule", KindPulse: "pulse"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	ScopeRun       Scope = iota + 1 // one repair run
	ScopeIteration                  // one checker pass and the patches it leads to
	ScopeStep                       // a checker invocation or a single patch
	ScopeRule                       // rule evaluation
)

var scopeNames = [...]string{ScopeRun: "run", ScopeIteration: "iteration", ScopeStep: "step", ScopeRule: "rule"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. Path and Line locate patch, rule and pulse
// events in the repaired tree; Rule names the rule that was tried or applied.
type Event struct {
	Time   time.Time
	Seq    uint64 // per tracer, assigned on Emit
	Kind   Kind
	Scope  Scope
	Span   uint64
	Parent uint64 // 0 for the run span
	Name   string // "repair", "iteration", "check", "patch"
	Path   string
	Line   int
	Rule   string
	Detail string
	Extra  map[string]string
}
