// Package trace is the event log of unicecream.
//
// The linter has no other logging: the driver opens spans for the run and
// for every file, and point events record decisions worth explaining
// (excluded paths, skipped files, config fallbacks, syntax errors).
//
// # Usage
//
//	unicecream --check --trace=- --trace-level=detail src/
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: error points only
//   - LevelPhase: run-level spans (discover, process)
//   - LevelDetail: adds one span per file
//   - LevelDebug: adds per-file passes (read, parse, rules, fix, write)
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFile, path, parentID)
//	defer span.End("")
package trace
