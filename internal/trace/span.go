package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var spanIDs atomic.Uint64

// frame is what a context carries: the tracer, the innermost span and the
// source location being worked on.
type frame struct {
	tracer Tracer
	span   uint64
	name   string
	path   string
	line   int
}

type frameKey struct{}

func current(ctx context.Context) frame {
	var f frame
	if ctx != nil {
		f, _ = ctx.Value(frameKey{}).(frame)
	}
	if f.tracer == nil {
		f.tracer = Nop
	}
	return f
}

// WithTracer attaches t to ctx.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	f := current(ctx)
	f.tracer = t
	return context.WithValue(ctx, frameKey{}, f)
}

// FromContext returns the attached tracer or Nop.
func FromContext(ctx context.Context) Tracer {
	return current(ctx).tracer
}

// At returns ctx with a source location. Spans, rule events and pulses
// started under it carry path and line.
func At(ctx context.Context, path string, line int) context.Context {
	f := current(ctx)
	if f.tracer.Level() == LevelOff {
		return ctx
	}
	f.path, f.line = path, line
	return context.WithValue(ctx, frameKey{}, f)
}

// Span is an open span. The zero Span, returned when its scope is not
// recorded, ignores every call.
type Span struct {
	tracer Tracer
	end    Event
	start  time.Time
}

// Start opens a span under the one active in ctx and returns a context that
// carries it.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	f := current(ctx)
	if !f.tracer.Level().keeps(scope) {
		return ctx, &Span{}
	}
	now := time.Now()
	ev := Event{
		Time:   now,
		Kind:   KindBegin,
		Scope:  scope,
		Span:   spanIDs.Add(1),
		Parent: f.span,
		Name:   name,
		Path:   f.path,
		Line:   f.line,
	}
	f.tracer.Emit(ev)

	f.span, f.name = ev.Span, name
	ev.Kind = KindEnd
	return context.WithValue(ctx, frameKey{}, f), &Span{tracer: f.tracer, end: ev, start: now}
}

// With adds a key-value pair to the end event.
func (s *Span) With(key, value string) *Span {
	if s.tracer == nil {
		return s
	}
	if s.end.Extra == nil {
		s.end.Extra = make(map[string]string)
	}
	s.end.Extra[key] = value
	return s
}

// Rule names the rule applied within the span.
func (s *Span) Rule(name string) *Span {
	if s.tracer != nil {
		s.end.Rule = name
	}
	return s
}

// End closes the span with an outcome and returns its duration.
func (s *Span) End(outcome string) time.Duration {
	if s.tracer == nil {
		return 0
	}
	ev := s.end
	ev.Time = time.Now()
	ev.Detail = outcome
	s.tracer.Emit(ev)
	return ev.Time.Sub(s.start)
}

// Rule records the verdict of one rule at the location carried by ctx.
func Rule(ctx context.Context, rule, verdict string) {
	f := current(ctx)
	if !f.tracer.Level().keeps(ScopeRule) {
		return
	}
	f.tracer.Emit(Event{
		Time:   time.Now(),
		Kind:   KindRule,
		Scope:  ScopeRule,
		Parent: f.span,
		Name:   "rule",
		Path:   f.path,
		Line:   f.line,
		Rule:   rule,
		Detail: verdict,
	})
}
