package loop

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"mend/internal/diag"
)

func sampleReport() *Report {
	return &Report{
		State:      Stalled,
		Iterations: 1,
		Files:      []FileReport{{Path: "src/main.rs", Patches: 0, State: FileBroken}},
		Unresolved: []diag.Diagnostic{{Path: "src/main.rs", Line: 2, Message: "error: boom", Raw: "--> src/main.rs:2:5"}},
		NoRule:     []diag.Diagnostic{{Path: "src/main.rs", Line: 2, Message: "error: boom", Raw: "--> src/main.rs:2:5"}},
	}
}

func TestRenderTextListsRemaining(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	RenderText(&buf, sampleReport())
	out := buf.String()
	for _, want := range []string{"STALLED after 1 iteration(s)", "src/main.rs  0 patch(es)  broken", "--> src/main.rs:2:5", "no rule matched (1)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderTextQuotesSourceLine(t *testing.T) {
	color.NoColor = true
	root := writeTree(t, map[string]string{
		"src/main.rs": "fn main() {\n    let x = ;\n}\n",
	})
	rep := sampleReport()
	rep.Root = root
	var buf bytes.Buffer
	RenderText(&buf, rep)
	out := buf.String()
	if got := strings.Count(out, "   2 |     let x = ;"); got != 2 {
		t.Fatalf("expected the source line under both lists, got %d in:\n%s", got, out)
	}

	rep.Unresolved[0].Line = 40
	rep.NoRule = nil
	buf.Reset()
	RenderText(&buf, rep)
	if strings.Contains(buf.String(), " | ") {
		t.Fatalf("expected no excerpt for a line past the end:\n%s", buf.String())
	}
}

func TestRenderJSON(t *testing.T) {
	rep := sampleReport()
	rep.State = Fatal
	rep.Err = errors.New("checker missing")
	var buf bytes.Buffer
	if err := RenderJSON(&buf, rep, false); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got["state"] != "FATAL" || got["error"] != "checker missing" || got["exit_code"] != float64(4) {
		t.Fatalf("unexpected payload %v", got)
	}
	files := got["files"].([]any)
	if files[0].(map[string]any)["patches_applied"] != float64(0) {
		t.Fatalf("unexpected files %v", files)
	}
}
