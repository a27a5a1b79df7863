package loop

// Stage identifies which part of an iteration an Event reports.
type Stage uint8

const (
	StageCheck Stage = iota + 1
	StageParse
	StagePatch
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageCheck:
		return "check"
	case StageParse:
		return "parse"
	case StagePatch:
		return "patch"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// Event is a progress notification sent to Options.Progress.
type Event struct {
	Iteration int
	Stage     Stage
	Path      string // relative to root, StagePatch only
	Line      int
	Status    string
	State     State // StageDone only
}
