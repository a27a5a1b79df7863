package ui

import (
	"strings"
	"testing"

	"mend/internal/loop"
)

func TestApplyEventTracksFiles(t *testing.T) {
	m := NewProgressModel("mend", 4, nil).(*progressModel)
	m.applyEvent(loop.Event{Iteration: 1, Stage: loop.StageCheck})
	m.applyEvent(loop.Event{Iteration: 1, Stage: loop.StagePatch, Path: "src/a.rs", Line: 3, Status: "patched"})
	m.applyEvent(loop.Event{Iteration: 2, Stage: loop.StageCheck})
	m.applyEvent(loop.Event{Iteration: 2, Stage: loop.StagePatch, Path: "src/a.rs", Line: 9, Status: "patched"})
	m.applyEvent(loop.Event{Iteration: 2, Stage: loop.StagePatch, Path: "src/b.rs", Line: 1, Status: "no-rule"})

	if len(m.items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(m.items))
	}
	if m.items[0].patches != 2 || m.items[1].patches != 0 || m.items[1].status != "no-rule" {
		t.Fatalf("unexpected rows %+v", m.items)
	}
	if m.iteration != 2 {
		t.Fatalf("expected iteration 2, got %d", m.iteration)
	}

	m.applyEvent(loop.Event{Iteration: 2, Stage: loop.StageDone, State: loop.Succeeded})
	m.done = true
	view := m.View()
	if !strings.Contains(view, "SUCCEEDED") || !strings.Contains(view, "src/b.rs") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestProgressOf(t *testing.T) {
	cases := []struct {
		it, ceiling int
		want        float64
	}{
		{0, 20, 0},
		{1, 20, 0},
		{3, 4, 0.5},
		{9, 4, 1},
	}
	for _, tc := range cases {
		if got := progressOf(tc.it, tc.ceiling); got != tc.want {
			t.Fatalf("progressOf(%d, %d): expected %v, got %v", tc.it, tc.ceiling, tc.want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("src/very/long/path.rs", 10); got != "src/..." {
		t.Fatalf("expected src/..., got %q", got)
	}
	if got := truncate("a.rs", 10); got != "a.rs" {
		t.Fatalf("expected a.rs unchanged, got %q", got)
	}
}
