package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

func newRecorder(t *testing.T, cfg Config) *Recorder {
	t.Helper()
	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r, ok := tr.(*Recorder)
	if !ok {
		t.Fatalf("expected *Recorder, got %T", tr)
	}
	return r
}

func TestRingWrapsInOrder(t *testing.T) {
	r := newRecorder(t, Config{Level: LevelDebug, Mode: ModeRing, RingSize: 3})
	for _, name := range []string{"a", "b", "c", "d"} {
		r.Emit(Event{Kind: KindBegin, Scope: ScopeStep, Name: name})
	}
	events := r.Recent()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	got := events[0].Name + events[1].Name + events[2].Name
	if got != "bcd" {
		t.Fatalf("expected bcd, got %q", got)
	}
	if events[2].Seq != 4 {
		t.Fatalf("expected seq 4 on the newest event, got %d", events[2].Seq)
	}
}

func TestStreamFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	r := newRecorder(t, Config{Level: LevelPhase, Mode: ModeStream, Output: &buf, Format: FormatText})
	ctx := WithTracer(context.Background(), r)

	ctx, span := Start(ctx, ScopeIteration, "iteration")
	_, patch := Start(At(ctx, "src/main.rs", 3), ScopeStep, "patch")
	patch.End("patched")
	Rule(ctx, "unclosed-block", "hidden")
	span.With("patched", "2").End("progress")

	out := buf.String()
	if !strings.Contains(out, "→ iteration") || !strings.Contains(out, "← iteration (progress) {patched=2}") {
		t.Fatalf("expected iteration begin/end, got %q", out)
	}
	if strings.Contains(out, "src/main.rs") {
		t.Fatalf("step scope must be filtered at phase level, got %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("rule scope must be filtered at phase level, got %q", out)
	}
}

func TestRuleEventsCarryLocation(t *testing.T) {
	var buf bytes.Buffer
	r := newRecorder(t, Config{Level: LevelDebug, Mode: ModeStream, Output: &buf, Format: FormatNDJSON})
	ctx := WithTracer(context.Background(), r)
	ctx, run := Start(ctx, ScopeRun, "repair")
	pctx, patch := Start(At(ctx, "src/lib.rs", 12), ScopeStep, "patch")
	Rule(pctx, "trailing-incomplete", "insert 1 line(s) at 12")
	patch.Rule("trailing-incomplete").End("patched")
	run.End("SUCCEEDED")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 events, got %d: %q", len(lines), buf.String())
	}
	var rule jsonEvent
	if err := json.Unmarshal([]byte(lines[2]), &rule); err != nil {
		t.Fatalf("invalid NDJSON: %v", err)
	}
	if rule.Kind != "rule" || rule.Path != "src/lib.rs" || rule.Line != 12 || rule.Rule != "trailing-incomplete" {
		t.Fatalf("unexpected rule event %+v", rule)
	}
	var end jsonEvent
	if err := json.Unmarshal([]byte(lines[3]), &end); err != nil {
		t.Fatalf("invalid NDJSON: %v", err)
	}
	if end.Kind != "end" || end.Rule != "trailing-incomplete" || end.Detail != "patched" || end.Parent == 0 {
		t.Fatalf("unexpected patch end %+v", end)
	}
	if rule.Parent != end.Span {
		t.Fatalf("expected the rule event under the patch span, got parent %d want %d", rule.Parent, end.Span)
	}
}

func TestErrorLevelOnlyFillsRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelError, Mode: ModeBoth, Output: &buf, Format: FormatNDJSON})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := WithTracer(context.Background(), tr)
	_, span := Start(ctx, ScopeStep, "check")
	span.End("exit 1")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing streamed at error level, got %q", buf.String())
	}
	var dump bytes.Buffer
	ok, err := Dump(tr, &dump, FormatNDJSON)
	if err != nil || !ok {
		t.Fatalf("expected ring dump, got ok=%v err=%v", ok, err)
	}
	if strings.Count(dump.String(), "\n") != 2 {
		t.Fatalf("expected 2 dumped events, got %q", dump.String())
	}
	if ok, _ := Dump(Nop, &dump, FormatText); ok {
		t.Fatal("expected Nop to have no ring")
	}
}

func TestOffIsInert(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop {
		t.Fatalf("expected Nop tracer")
	}
	next, span := Start(ctx, ScopeRun, "repair")
	if next != ctx {
		t.Fatal("expected the context to be returned unchanged")
	}
	if d := span.With("k", "v").Rule("r").End("done"); d != 0 {
		t.Fatalf("expected zero duration from an inert span, got %v", d)
	}
	Rule(At(ctx, "a.rs", 1), "r", "ignored")
	Pulse(ctx)()
}

// syncBuffer guards writes from the pulse goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPulseRunsUntilStopped(t *testing.T) {
	var out syncBuffer
	r := newRecorder(t, Config{Level: LevelDetail, Mode: ModeStream, Output: &out, Pulse: 5 * time.Millisecond})
	ctx := WithTracer(context.Background(), r)
	ctx, span := Start(ctx, ScopeStep, "check")

	stop := Pulse(ctx)
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "♡ check") {
		if time.Now().After(deadline) {
			t.Fatalf("expected a pulse, got %q", out.String())
		}
		time.Sleep(time.Millisecond)
	}
	stop()
	stop()
	span.End("ok")

	n := strings.Count(out.String(), "♡")
	time.Sleep(20 * time.Millisecond)
	if got := strings.Count(out.String(), "♡"); got != n {
		t.Fatalf("expected no pulses after stop, got %d more", got-n)
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DETAIL")
	if err != nil || lvl != LevelDetail {
		t.Fatalf("expected detail, got %v (%v)", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := ParseMode("both"); err != nil {
		t.Fatalf("ParseMode: %v", err)
	}
	if _, err := ParseMode(""); err == nil {
		t.Fatal("expected error for empty mode")
	}
}

func TestLevelScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelError, ScopeRun, false},
		{LevelPhase, ScopeIteration, true},
		{LevelPhase, ScopeStep, false},
		{LevelDetail, ScopeStep, true},
		{LevelDetail, ScopeRule, false},
		{LevelDebug, ScopeRule, true},
	}
	for _, tc := range cases {
		if got := tc.level.writes(tc.scope); got != tc.want {
			t.Fatalf("%s writes %s: expected %v, got %v", tc.level, tc.scope, tc.want, got)
		}
	}
	if !LevelError.keeps(ScopeRule) {
		t.Fatal("expected error level to keep everything for the ring")
	}
}
