package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer receives events. Emit must be safe for concurrent use.
type Tracer interface {
	Emit(ev Event)
	Level() Level
	Close() error
}

type nop struct{}

func (nop) Emit(Event)   {}
func (nop) Level() Level { return LevelOff }
func (nop) Close() error { return nil }

// Nop discards everything; it is what FromContext returns when no tracer
// was attached.
var Nop Tracer = nop{}

// Mode says where a Recorder puts events.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // write each event as it happens
	ModeRing                   // keep the most recent events for a dump
	ModeBoth
)

var modeNames = [...]string{ModeStream: "stream", ModeRing: "ring", ModeBoth: "both"}

func (m Mode) String() string {
	if int(m) < len(modeNames) && modeNames[m] != "" {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode accepts stream, ring or both.
func ParseMode(s string) (Mode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if name != "" && name == want {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("invalid trace mode %q (expected stream|ring|both)", s)
}

const defaultRingSize = 4096

// Config describes the tracer built by New.
type Config struct {
	Level      Level
	Mode       Mode
	Format     Format        // FormatAuto picks NDJSON for .ndjson/.jsonl paths
	Output     io.Writer     // stream sink; OutputPath is used when nil
	OutputPath string        // "" or "-" for stderr
	RingSize   int           // 4096 when zero
	Pulse      time.Duration // pulse interval while the checker runs, 0 disables
}

// New builds a Recorder for cfg, or Nop when the level is off.
// LevelError always records into a ring only.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Level == LevelError {
		cfg.Mode = ModeRing
	}
	r := &Recorder{level: cfg.Level, format: cfg.Format, pulse: cfg.Pulse}
	if r.format == FormatAuto {
		r.format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".jsonl") {
			r.format = FormatNDJSON
		}
	}

	switch cfg.Mode {
	case ModeStream, ModeRing, ModeBoth:
	default:
		return nil, fmt.Errorf("unknown trace mode %v", cfg.Mode)
	}
	if cfg.Mode != ModeStream {
		size := cfg.RingSize
		if size <= 0 {
			size = defaultRingSize
		}
		r.ring = make([]Event, size)
	}
	if cfg.Mode != ModeRing {
		switch {
		case cfg.Output != nil:
			r.out = cfg.Output
		case cfg.OutputPath == "" || cfg.OutputPath == "-":
			r.out = os.Stderr
		default:
			f, err := os.Create(cfg.OutputPath)
			if err != nil {
				return nil, fmt.Errorf("open trace output: %w", err)
			}
			r.out, r.closer = f, f
		}
	}
	return r, nil
}

// Dump writes the ring of t to w, oldest event first. It reports false when
// t keeps no ring.
func Dump(t Tracer, w io.Writer, format Format) (bool, error) {
	r, ok := t.(*Recorder)
	if !ok || r.ring == nil {
		return false, nil
	}
	for _, ev := range r.Recent() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return true, err
		}
	}
	return true, nil
}
