// Package trace records the progress of the ash pipeline as a stream of
// span and point events.
//
// Tracing is enabled from the command line:
//
//	ash run --trace=- --trace-level=phase main.ash
//	ash check --trace=trace.ndjson --trace-level=detail a.ash b.ash
//
// A Tracer is carried through the pipeline in a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeStage, "parse")
//	defer span.End("")
//
// Levels select scopes: phase emits driver and stage spans, detail adds
// per-file and per-declaration events, debug emits everything.
//
// A ring tracer keeps the most recent events in memory so they can be
// dumped after a failed run.
package trace
