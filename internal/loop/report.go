package loop

import (
	"sort"
	"time"

	"mend/internal/diag"
	"mend/internal/source"
)

// File states in a report.
const (
	FileFixed       = "fixed"
	FilePatched     = "patched"
	FileBroken      = "broken"
	FileWriteFailed = "write-failed"
)

// FileReport summarises one file of the run.
type FileReport struct {
	Path    string `json:"path"`
	Patches int    `json:"patches_applied"`
	State   string `json:"final_state"`
}

// Report is emitted on every terminal state.
type Report struct {
	// RunID correlates the report with trace output of the same run.
	RunID      string
	Root       string
	State      State
	Iterations int
	Files      []FileReport
	Attempts   []Attempt
	// Unresolved holds the diagnostics of the last failed check.
	Unresolved []diag.Diagnostic
	// NoRule holds every diagnostic no rule recognised during the run.
	NoRule   []diag.Diagnostic
	Err      error
	Duration time.Duration
}

// Patches returns the total number of applied patches.
func (r *Report) Patches() int {
	n := 0
	for _, f := range r.Files {
		n += f.Patches
	}
	return n
}

// Broken lists the files that still carry diagnostics or could not be written.
func (r *Report) Broken() []string {
	var out []string
	for _, f := range r.Files {
		if f.State == FileBroken || f.State == FileWriteFailed {
			out = append(out, f.Path)
		}
	}
	return out
}

func (r *runner) finish(state State, err error) {
	rep := r.report
	rep.State = state
	rep.Err = err
	if state == Succeeded {
		rep.Unresolved = nil
	}

	broken := make(map[string]bool)
	for _, d := range rep.Unresolved {
		broken[source.Resolve(r.opts.Root, d.Path)] = true
	}

	files := make(map[string]*FileReport)
	add := func(path string) *FileReport {
		if f, ok := files[path]; ok {
			return f
		}
		f := &FileReport{Path: r.rel(path)}
		files[path] = f
		return f
	}
	for path, n := range r.state.Counts {
		add(path).Patches = n
	}
	for path := range broken {
		add(path)
	}
	for path := range r.state.Excluded {
		add(path)
	}

	for path, f := range files {
		switch {
		case r.state.Excluded[path] != nil:
			f.State = FileWriteFailed
		case broken[path]:
			f.State = FileBroken
		case state == Succeeded:
			f.State = FileFixed
		default:
			f.State = FilePatched
		}
		rep.Files = append(rep.Files, *f)
	}
	sort.Slice(rep.Files, func(i, j int) bool { return rep.Files[i].Path < rep.Files[j].Path })
}
