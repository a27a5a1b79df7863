// Package diag defines the diagnostic model produced from checker output.
//
// # Purpose
//
//   - Parse the free-text output of an external checker into located
//     Diagnostic records. Only location markers ("--> path:line[:col]") are
//     recognised; tool-specific structured formats are deliberately ignored so
//     any checker that prints rustc-style locations can drive the repair loop.
//   - Keep a deterministic, deduplicated set (Bag) in first-seen order.
//
// # Scope
//
// Package diag does not run tools, touch files, or render output. Running the
// checker lives in internal/checker, rendering in internal/loop.
//
// # Data model
//
// Diagnostic is immutable once parsed:
//
//   - Path – file path as reported by the checker (NFC, slash separated).
//   - Line / Column – 1-based position; Column is 0 when absent.
//   - Severity – taken from the nearest preceding header line.
//   - Message – that header line ("error: unexpected closing delimiter: `}`").
//   - Raw – the location line exactly as printed.
//
// A Bag is rebuilt from scratch on every loop iteration and never mutated by
// consumers.
package diag
