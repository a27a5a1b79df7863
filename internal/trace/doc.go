// Package trace is mend's structured log: spans for the run, each iteration,
// each checker invocation and each patch, plus one event per rule tried.
//
// The context carries the tracer, the innermost span and the file location
// under repair, so rule events and checker pulses are attributed without
// threading IDs through the loop:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeIteration, "iteration")
//	defer span.End("")
//
//	ctx = trace.At(ctx, "src/main.rs", 7)
//	trace.Rule(ctx, "unclosed-block", "rejected")
//
// A Recorder streams events (text or NDJSON), keeps the last N in a ring, or
// both. At LevelError nothing is written and the ring is dumped only when a
// run ends FATAL:
//
//	mend repair --trace=- --trace-level=detail ./project
package trace
