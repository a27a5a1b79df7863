package trace

import (
	"context"
	"sync"
	"time"
)

// Pulse emits a pulse under the span active in ctx at the interval set by
// Config.Pulse until stop is called. A checker that hangs shows up as
// pulses with no end event.
func Pulse(ctx context.Context) (stop func()) {
	f := current(ctx)
	r, ok := f.tracer.(*Recorder)
	if !ok || r.pulse <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(r.pulse)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case now := <-ticker.C:
				r.Emit(Event{
					Time:   now,
					Kind:   KindPulse,
					Scope:  ScopeStep,
					Parent: f.span,
					Name:   f.name,
					Path:   f.path,
					Line:   f.line,
					Detail: now.Sub(start).Round(time.Millisecond).String(),
				})
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
