// Package driver runs the ash pipeline: parse, resolve, type-check, lower
// and compile. It owns the per-compilation state (file set, identity
// allocator, diagnostic bag) and reports every stage to the tracer carried
// by the context and to an optional phase timer.
package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ash/internal/ast"
	"ash/internal/bytecode"
	"ash/internal/diag"
	"ash/internal/hir"
	"ash/internal/observ"
	"ash/internal/parser"
	"ash/internal/sema"
	"ash/internal/source"
	"ash/internal/symbols"
	"ash/internal/trace"
	"ash/internal/vm"
)

// Stage is the last pipeline stage a compilation runs.
type Stage uint8

const (
	StageParse Stage = iota + 1
	StageResolve
	StageTypes
	StageLower
	StageCompile
)

var stageNames = [...]string{
	StageParse:   "parse",
	StageResolve: "resolve",
	StageTypes:   "types",
	StageLower:   "lower",
	StageCompile: "compile",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) && stageNames[s] != "" {
		return stageNames[s]
	}
	return "unknown"
}

// ParseStage converts a stage name to a Stage.
func ParseStage(s string) (Stage, error) {
	for st, name := range stageNames {
		if name != "" && strings.EqualFold(name, s) {
			return Stage(st), nil
		}
	}
	return 0, fmt.Errorf("invalid stage: %q (expected: parse|resolve|types|lower|compile)", s)
}

// Options configure one compilation.
type Options struct {
	// Stage defaults to StageCompile.
	Stage          Stage
	MaxDiagnostics int
	// Natives are declared to the resolver as the prelude; nil means
	// vm.Natives().
	Natives []vm.Native
	// Timer, when set, receives one phase per executed stage.
	Timer *observ.Timer
	// Cache, when set, serves and stores chunks for full compilations.
	Cache *ChunkCache
}

// Result holds everything a compilation produced. Fields after the last
// completed stage are nil. A cache hit fills only Chunk.
type Result struct {
	FileSet *source.FileSet
	File    *source.File
	Bag     *diag.Bag
	Reached Stage
	Cached  bool

	AST     *ast.File
	Symbols *symbols.Context
	Typed   *sema.File
	Module  *hir.Module
	Chunk   *bytecode.Chunk
}

// OK reports whether the compilation produced no error diagnostics.
func (r *Result) OK() bool { return r.Bag == nil || !r.Bag.HasErrors() }

// Prelude declares natives to the resolver.
func Prelude(natives []vm.Native) []symbols.PreludeEntry {
	entries := make([]symbols.PreludeEntry, 0, len(natives))
	for i := range natives {
		entries = append(entries, symbols.PreludeEntry{Name: natives[i].Name, Type: natives[i].Signature()})
	}
	return entries
}

// Compile loads path and compiles it.
func Compile(ctx context.Context, path string, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return compileFile(ctx, fs, fs.Get(id), opts)
}

// CompileSource compiles src under the given file name.
func CompileSource(ctx context.Context, name string, src []byte, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	return compileFile(ctx, fs, fs.Get(fs.AddVirtual(name, src)), opts)
}

func compileFile(ctx context.Context, fs *source.FileSet, file *source.File, opts Options) (*Result, error) {
	if opts.Stage == 0 {
		opts.Stage = StageCompile
	}
	if opts.Natives == nil {
		opts.Natives = vm.Natives()
	}
	res := &Result{FileSet: fs, File: file, Bag: diag.NewBag(opts.MaxDiagnostics)}

	ctx, span := trace.Start(ctx, trace.ScopeFile, "file:"+file.Path)
	defer func() {
		span.WithExtra("stage", res.Reached.String()).
			WithExtra("diagnostics", fmt.Sprint(res.Bag.Len())).
			End(outcome(res))
	}()

	useCache := opts.Cache != nil && opts.Stage == StageCompile
	var key CacheKey
	if useCache {
		key = KeyFor(file.Content)
		chunk, ok, err := opts.Cache.Get(key)
		if err != nil {
			trace.Point(ctx, trace.ScopeFile, "cache", err.Error())
		}
		if ok {
			res.Chunk, res.Cached, res.Reached = chunk, true, StageCompile
			trace.Point(ctx, trace.ScopeFile, "cache", "hit")
			return res, nil
		}
	}

	r := &run{ctx: ctx, opts: opts, res: res}
	if err := r.pipeline(); err != nil {
		return res, err
	}
	if useCache && res.Chunk != nil {
		if err := opts.Cache.Put(key, res.Chunk); err != nil {
			trace.Point(ctx, trace.ScopeFile, "cache", err.Error())
		}
	}
	return res, nil
}

func outcome(res *Result) string {
	switch {
	case res.Cached:
		return "cached"
	case res.OK():
		return "ok"
	default:
		return "failed"
	}
}

type run struct {
	ctx  context.Context
	opts Options
	res  *Result
	ids  *ast.IDAllocator
}

// stage runs fn as stage st. It reports whether the pipeline continues:
// st left no errors and is not the requested last stage. Earlier stages
// stop on their first error so any error in the bag belongs to st.
func (r *run) stage(st Stage, fn func(rep diag.Reporter) (string, error)) (bool, error) {
	if err := r.ctx.Err(); err != nil {
		return false, err
	}
	_, span := trace.Start(r.ctx, trace.ScopeStage, st.String())
	idx := r.opts.Timer.Begin(st.String())

	note, err := fn(diag.BagReporter{Bag: r.res.Bag})
	failed := err != nil || r.res.Bag.HasErrors()

	r.opts.Timer.End(idx, note)
	span.End(note)
	if err != nil {
		return false, err
	}
	if !failed {
		r.res.Reached = st
	}
	return !failed && st < r.opts.Stage, nil
}

func (r *run) pipeline() error {
	r.ids = ast.NewIDAllocator()
	res := r.res

	steps := []struct {
		st Stage
		fn func(rep diag.Reporter) (string, error)
	}{
		{StageParse, func(rep diag.Reporter) (string, error) {
			res.AST = parser.ParseFile(res.File, parser.Options{Reporter: rep, IDs: r.ids})
			return fmt.Sprintf("stmts=%d", len(res.AST.Stmts)), nil
		}},
		{StageResolve, func(rep diag.Reporter) (string, error) {
			resolved := symbols.ResolveFile(res.AST, symbols.ResolveOptions{
				IDs:      r.ids,
				Reporter: rep,
				Prelude:  Prelude(r.opts.Natives),
			})
			res.Symbols = resolved.Context
			return fmt.Sprintf("errors=%d", resolved.Errors), nil
		}},
		{StageTypes, func(rep diag.Reporter) (string, error) {
			checked := sema.Check(res.AST, sema.Options{Reporter: rep, Context: res.Symbols})
			res.Typed = checked.File
			return fmt.Sprintf("errors=%d", checked.Errors), nil
		}},
		{StageLower, func(diag.Reporter) (string, error) {
			m, err := hir.Lower(res.Typed, hir.Options{Context: res.Symbols, IDs: r.ids})
			if err != nil {
				return "", fmt.Errorf("lower %s: %w", res.File.Path, err)
			}
			res.Module = m
			return fmt.Sprintf("stmts=%d", len(m.Stmts)), nil
		}},
		{StageCompile, func(rep diag.Reporter) (string, error) {
			chunk, err := bytecode.Compile(res.Module)
			var encErr *bytecode.EncodingError
			if errors.As(err, &encErr) {
				diag.ReportError(rep, EncodingCode(encErr), source.Span{File: res.File.ID}, encErr.Error()).Emit()
				return "encoding error", nil
			}
			if err != nil {
				return "", fmt.Errorf("compile %s: %w", res.File.Path, err)
			}
			res.Chunk = chunk
			return fmt.Sprintf("bytes=%d constants=%d", chunk.Len(), len(chunk.Constants)), nil
		}},
	}
	for _, step := range steps {
		more, err := r.stage(step.st, step.fn)
		if err != nil || !more {
			return err
		}
	}
	return nil
}

// EncodingCode maps an encoding failure to its diagnostic code.
func EncodingCode(e *bytecode.EncodingError) diag.Code {
	switch {
	case e.What == "index":
		return diag.EncIndexTooLarge
	case e.What == "count":
		return diag.EncArityTooLarge
	case e.Op == bytecode.OpLoop:
		return diag.EncLoopTooFar
	case e.Op == bytecode.OpFun || e.Op == bytecode.OpFunLong:
		return diag.EncBodyTooLarge
	default:
		return diag.EncJumpTooFar
	}
}
