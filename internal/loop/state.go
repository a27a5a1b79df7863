package loop

import (
	"mend/internal/diag"
)

// State is the repair loop's state machine position.
type State uint8

const (
	Running State = iota
	Succeeded
	Stalled
	Exhausted
	Fatal
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Succeeded:
		return "SUCCEEDED"
	case Stalled:
		return "STALLED"
	case Exhausted:
		return "EXHAUSTED"
	case Fatal:
		return "FATAL"
	}
	return "UNKNOWN"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether the loop stops in s.
func (s State) Terminal() bool {
	return s != Running
}

// ExitCode maps a terminal state to the process exit status.
func (s State) ExitCode() int {
	switch s {
	case Succeeded:
		return 0
	case Stalled:
		return 2
	case Exhausted:
		return 3
	default:
		return 4
	}
}

// Outcome is the result of one repair attempt.
type Outcome string

const (
	OutcomePatched     Outcome = "patched"
	OutcomeUnchanged   Outcome = "unchanged"
	OutcomeNoRule      Outcome = "no-rule"
	OutcomeStale       Outcome = "stale"
	OutcomeRepeat      Outcome = "repeat"
	OutcomeExcluded    Outcome = "excluded"
	OutcomeWriteFailed Outcome = "write-failed"
)

// Attempt records what happened at one diagnosed location.
type Attempt struct {
	Iteration int     `json:"iteration"`
	Path      string  `json:"path"`
	Line      int     `json:"line"`
	Rule      string  `json:"rule,omitempty"`
	Outcome   Outcome `json:"outcome"`
	Detail    string  `json:"detail,omitempty"`
}

// LoopState is the bookkeeping of one run.
type LoopState struct {
	Iteration int
	// Patched holds every location patched during the run, in the
	// checker's coordinates of the iteration that reported it.
	Patched map[diag.Location]int
	// Progress is set when a patch changed a file in the current iteration.
	Progress bool
	Counts   map[string]int   // patches per absolute path
	Excluded map[string]error // files whose write failed
}

func newLoopState() *LoopState {
	return &LoopState{
		Patched:  make(map[diag.Location]int),
		Counts:   make(map[string]int),
		Excluded: make(map[string]error),
	}
}

// patchedIn reports whether loc was patched in iteration it.
func (s *LoopState) patchedIn(loc diag.Location, it int) bool {
	n, ok := s.Patched[loc]
	return ok && n == it
}
