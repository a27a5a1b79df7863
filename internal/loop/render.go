package loop

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"mend/internal/diag"
	"mend/internal/source"
)

var (
	stateColors = map[State]*color.Color{
		Succeeded: color.New(color.FgGreen, color.Bold),
		Stalled:   color.New(color.FgYellow, color.Bold),
		Exhausted: color.New(color.FgYellow, color.Bold),
		Fatal:     color.New(color.FgRed, color.Bold),
	}
	pathColor  = color.New(color.Bold)
	dimColor   = color.New(color.Faint)
	brokeColor = color.New(color.FgRed)
)

// RenderText writes the human summary. Colour follows color.NoColor.
func RenderText(w io.Writer, r *Report) {
	label := r.State.String()
	if c, ok := stateColors[r.State]; ok {
		label = c.Sprint(label)
	}
	fmt.Fprintf(w, "%s after %d iteration(s), %d patch(es) in %d file(s) (%s)\n",
		label, r.Iterations, r.Patches(), countPatched(r), r.Duration.Round(1e6))
	if r.Err != nil {
		fmt.Fprintf(w, "error: %v\n", r.Err)
	}

	if len(r.Files) > 0 {
		fmt.Fprintln(w, "\nfiles:")
		for _, f := range r.Files {
			state := f.State
			if f.State == FileBroken || f.State == FileWriteFailed {
				state = brokeColor.Sprint(state)
			}
			fmt.Fprintf(w, "  %s  %d patch(es)  %s\n", pathColor.Sprint(f.Path), f.Patches, state)
		}
	}

	if r.State == Succeeded {
		return
	}
	if len(r.Unresolved) > 0 {
		fmt.Fprintf(w, "\nremaining diagnostics (%d):\n", len(r.Unresolved))
		for _, d := range r.Unresolved {
			if d.Message != "" {
				fmt.Fprintf(w, "  %s\n", d.Message)
			}
			fmt.Fprintf(w, "    %s\n", dimColor.Sprint(d.Raw))
			excerpt(w, r.Root, d, "    ")
		}
	}
	if len(r.NoRule) > 0 {
		fmt.Fprintf(w, "\nno rule matched (%d):\n", len(r.NoRule))
		for _, d := range r.NoRule {
			fmt.Fprintf(w, "  %s\n", d.String())
			excerpt(w, r.Root, d, "  ")
		}
	}
}

// excerpt prints the diagnosed source line as it is on disk now. Files that
// can no longer be read are skipped silently.
func excerpt(w io.Writer, root string, d diag.Diagnostic, indent string) {
	f, err := source.Load(source.Resolve(root, d.Path))
	if err != nil {
		return
	}
	line, ok := f.Line(d.Line)
	if !ok {
		return
	}
	fmt.Fprintf(w, "%s%4d | %s\n", indent, d.Line, strings.TrimRight(line, " \t"))
}

func countPatched(r *Report) int {
	n := 0
	for _, f := range r.Files {
		if f.Patches > 0 {
			n++
		}
	}
	return n
}

// ReportJSON is the machine-readable report.
type ReportJSON struct {
	RunID      string       `json:"run_id"`
	State      State        `json:"state"`
	ExitCode   int          `json:"exit_code"`
	Iterations int          `json:"iterations"`
	Files      []FileReport `json:"files"`
	Unresolved []DiagJSON   `json:"unresolved"`
	NoRule     []DiagJSON   `json:"no_rule"`
	Attempts   []Attempt    `json:"attempts,omitempty"`
	Error      string       `json:"error,omitempty"`
	DurationMS float64      `json:"duration_ms"`
}

// DiagJSON is a diagnostic in the JSON report.
type DiagJSON struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Message string `json:"message,omitempty"`
	Raw     string `json:"raw"`
}

// JSON builds the machine-readable form of r.
func (r *Report) JSON(withAttempts bool) ReportJSON {
	out := ReportJSON{
		RunID:      r.RunID,
		State:      r.State,
		ExitCode:   r.State.ExitCode(),
		Iterations: r.Iterations,
		Files:      r.Files,
		Unresolved: toDiagJSON(r),
		NoRule:     make([]DiagJSON, 0, len(r.NoRule)),
		DurationMS: float64(r.Duration) / 1e6,
	}
	if out.Files == nil {
		out.Files = []FileReport{}
	}
	for _, d := range r.NoRule {
		out.NoRule = append(out.NoRule, DiagJSON{Path: d.Path, Line: d.Line, Message: d.Message, Raw: d.Raw})
	}
	if withAttempts {
		out.Attempts = r.Attempts
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

func toDiagJSON(r *Report) []DiagJSON {
	out := make([]DiagJSON, 0, len(r.Unresolved))
	for _, d := range r.Unresolved {
		out = append(out, DiagJSON{Path: d.Path, Line: d.Line, Message: d.Message, Raw: d.Raw})
	}
	return out
}

// RenderJSON writes the JSON report.
func RenderJSON(w io.Writer, r *Report, withAttempts bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.JSON(withAttempts))
}
