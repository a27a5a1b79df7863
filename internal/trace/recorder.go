package trace

import (
	"io"
	"sync"
	"time"
)

// Recorder is the Tracer built by New. It writes events to a stream, keeps
// the most recent ones in a ring, or both.
type Recorder struct {
	mu     sync.Mutex
	level  Level
	format Format
	out    io.Writer // nil without a stream
	closer io.Closer // set when New opened the output file
	ring   []Event   // nil without a ring
	head   int
	full   bool
	seq    uint64
	pulse  time.Duration
}

func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	ev.Seq = r.seq
	if r.ring != nil {
		r.ring[r.head] = ev
		r.head = (r.head + 1) % len(r.ring)
		if r.head == 0 {
			r.full = true
		}
	}
	if r.out != nil && (ev.Kind == KindPulse || r.level.writes(ev.Scope)) {
		// a broken trace sink must not fail the repair run
		_, _ = r.out.Write(FormatEvent(&ev, r.format)) //nolint:errcheck
	}
}

func (r *Recorder) Level() Level { return r.level }

// Recent returns the ring contents in emission order.
func (r *Recorder) Recent() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Event(nil), r.ring[:r.head]...)
	}
	out := make([]Event, 0, len(r.ring))
	out = append(out, r.ring[r.head:]...)
	return append(out, r.ring[:r.head]...)
}

// Close closes the output file opened by New. Stderr and caller-provided
// writers are left open.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer, r.out = nil, nil
	return err
}
