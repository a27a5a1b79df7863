// Package loop drives the compiler-feedback repair loop: run the checker,
// parse its locations, patch what the rule catalog recognises, repeat.
package loop

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"mend/internal/checker"
	"mend/internal/diag"
	"mend/internal/fix"
	"mend/internal/journal"
	"mend/internal/observ"
	"mend/internal/rules"
	"mend/internal/source"
	"mend/internal/trace"
)

// Options configures one run. Root, Source and Catalog are required.
type Options struct {
	Root          string
	Source        checker.Source
	Catalog       *rules.Catalog
	Marker        string // location marker, diag.DefaultMarker when empty
	MaxIterations int    // ceiling, 20 when zero
	MaxLocations  int    // locations repaired per iteration, 5 when zero
	Journal       *journal.Journal
	Timer         *observ.Timer
	Progress      func(Event)
}

const (
	defaultMaxIterations = 20
	defaultMaxLocations  = 5
)

type runner struct {
	opts   Options
	parser *diag.Parser
	state  *LoopState
	ledger *fix.Ledger
	report *Report
	noRule map[diag.Location]bool
}

// Run executes the loop until a terminal state and returns the report.
// Fatal conditions are reported through Report.State and Report.Err.
func Run(ctx context.Context, opts Options) *Report {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = defaultMaxIterations
	}
	if opts.MaxLocations <= 0 {
		opts.MaxLocations = defaultMaxLocations
	}
	if opts.Marker == "" {
		opts.Marker = diag.DefaultMarker
	}
	r := &runner{
		opts:   opts,
		parser: diag.NewParser(opts.Marker),
		state:  newLoopState(),
		ledger: fix.NewLedger(),
		report: &Report{RunID: uuid.NewString(), Root: opts.Root},
		noRule: make(map[diag.Location]bool),
	}

	start := time.Now()
	ctx, span := trace.Start(ctx, trace.ScopeRun, "repair")
	span.With("run", r.report.RunID)

	state, err := r.run(ctx)
	r.finish(state, err)
	r.report.Duration = time.Since(start)

	span.With("iterations", strconv.Itoa(r.report.Iterations)).
		With("patches", strconv.Itoa(r.report.Patches())).
		End(state.String())
	r.emit(Event{Iteration: r.state.Iteration, Stage: StageDone, State: state})
	return r.report
}

func (r *runner) run(ctx context.Context) (State, error) {
	switch {
	case r.opts.Source == nil:
		return Fatal, errors.New("no diagnostic source configured")
	case r.opts.Catalog == nil:
		return Fatal, errors.New("no repair catalog configured")
	}

	for {
		if err := ctx.Err(); err != nil {
			return Fatal, err
		}
		state, err := r.iterate(ctx)
		if state.Terminal() {
			return state, err
		}
	}
}

// iterate runs one checker pass and the repairs it leads to.
func (r *runner) iterate(ctx context.Context) (State, error) {
	it := r.state.Iteration + 1
	ctx, span := trace.Start(ctx, trace.ScopeIteration, "iteration")
	span.With("n", strconv.Itoa(it))

	r.emit(Event{Iteration: it, Stage: StageCheck})
	phase := r.opts.Timer.Begin("check")
	out, err := r.opts.Source.Check(ctx, r.opts.Root)
	r.opts.Timer.End(phase, out.Duration.String())
	if err != nil {
		span.End("fatal")
		return Fatal, err
	}
	if out.Success {
		r.report.Unresolved = nil
		span.End("clean")
		return Succeeded, nil
	}

	phase = r.opts.Timer.Begin("parse")
	parsed := r.parser.Parse(out.Text)
	r.opts.Timer.End(phase, "")
	if !parsed.HasErrors() {
		span.End("unparseable")
		return Fatal, fmt.Errorf("%w (exit %d)", diag.ErrUnparseable, out.ExitCode)
	}
	bag := parsed.Actionable()
	r.report.Unresolved = bag.Items()
	r.emit(Event{Iteration: it, Stage: StageParse, Status: strconv.Itoa(bag.Len()) + " location(s)"})

	r.state.Iteration = it
	r.report.Iterations = it
	r.state.Progress = false
	r.ledger.Reset()

	phase = r.opts.Timer.Begin("repair")
	tried := 0
	for _, d := range bag.Items() {
		if tried >= r.opts.MaxLocations {
			break
		}
		if err := ctx.Err(); err != nil {
			r.opts.Timer.End(phase, "canceled")
			span.End("canceled")
			return Fatal, err
		}
		a, reachedCatalog := r.attempt(ctx, it, d)
		if reachedCatalog {
			tried++
		}
		r.report.Attempts = append(r.report.Attempts, a)
		r.emit(Event{Iteration: it, Stage: StagePatch, Path: a.Path, Line: a.Line, Status: string(a.Outcome)})
	}
	r.opts.Timer.End(phase, "")

	span.With("locations", strconv.Itoa(bag.Len())).With("tried", strconv.Itoa(tried))
	switch {
	case !r.state.Progress:
		span.End("stalled")
		return Stalled, nil
	case it >= r.opts.MaxIterations:
		span.End("exhausted")
		return Exhausted, nil
	}
	span.End("progress")
	return Running, nil
}

// attempt handles one diagnosed location. reachedCatalog reports whether the
// location counted against the per-iteration cap.
func (r *runner) attempt(ctx context.Context, it int, d diag.Diagnostic) (Attempt, bool) {
	path := source.Resolve(r.opts.Root, d.Path)
	loc := diag.Location{Path: path, Line: d.Line}
	a := Attempt{Iteration: it, Path: r.rel(path), Line: d.Line}

	if err, ok := r.state.Excluded[path]; ok {
		a.Outcome, a.Detail = OutcomeExcluded, err.Error()
		return a, false
	}
	if r.state.patchedIn(loc, it-1) {
		a.Outcome = OutcomeRepeat
		return a, false
	}
	line, ok := r.ledger.Translate(path, d.Line)
	if !ok {
		a.Outcome, a.Detail = OutcomeStale, "inside an earlier patch"
		return a, false
	}
	f, err := source.Load(path)
	if err != nil {
		a.Outcome, a.Detail = OutcomeStale, err.Error()
		return a, false
	}
	if line < 1 || line > f.LineCount()+1 {
		a.Outcome, a.Detail = OutcomeStale, "line no longer exists"
		return a, false
	}

	ctx, span := trace.Start(trace.At(ctx, a.Path, line), trace.ScopeStep, "patch")
	if line != d.Line {
		span.With("reported", strconv.Itoa(d.Line))
	}

	m, err := r.opts.Catalog.Match(ctx, f.Lines(), line)
	if err != nil {
		a.Outcome = OutcomeNoRule
		if !r.noRule[loc] {
			r.noRule[loc] = true
			r.report.NoRule = append(r.report.NoRule, d)
		}
		span.End(string(a.Outcome))
		return a, true
	}
	a.Rule = m.Rule

	if err := r.opts.Journal.Record(path); err != nil {
		r.state.Excluded[path] = err
		a.Outcome, a.Detail = OutcomeWriteFailed, err.Error()
		span.End(string(a.Outcome))
		return a, true
	}

	changed, err := fix.Apply(path, m.Edit, f.Hash)
	var werr *fix.WriteError
	switch {
	case errors.As(err, &werr):
		r.state.Excluded[path] = err
		a.Outcome, a.Detail = OutcomeWriteFailed, err.Error()
	case errors.Is(err, fix.ErrStale):
		a.Outcome, a.Detail = OutcomeStale, err.Error()
	case err != nil:
		r.state.Excluded[path] = err
		a.Outcome, a.Detail = OutcomeWriteFailed, err.Error()
	case !changed:
		a.Outcome = OutcomeUnchanged
	default:
		a.Outcome = OutcomePatched
		a.Detail = m.Edit.String()
		r.state.Progress = true
		r.state.Counts[path]++
		r.state.Patched[loc] = it
		r.ledger.Record(path, m.Edit)
	}
	span.Rule(m.Rule).End(string(a.Outcome))
	return a, true
}

func (r *runner) rel(path string) string {
	rel, err := source.RelativePath(path, r.opts.Root)
	if err != nil {
		return path
	}
	return rel
}

func (r *runner) emit(ev Event) {
	if r.opts.Progress != nil {
		r.opts.Progress(ev)
	}
}
