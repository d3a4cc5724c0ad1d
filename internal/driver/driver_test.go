package driver_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ash/internal/bytecode"
	"ash/internal/diag"
	"ash/internal/driver"
	"ash/internal/observ"
	"ash/internal/trace"
	"ash/internal/value"
	"ash/internal/vm"
)

func compile(t *testing.T, src string, opts driver.Options) *driver.Result {
	t.Helper()
	res, err := driver.CompileSource(context.Background(), "demo.ash", []byte(src), opts)
	if err != nil {
		t.Fatalf("CompileSource: %v", err)
	}
	return res
}

func codes(res *driver.Result) []diag.Code {
	var out []diag.Code
	for _, d := range res.Bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func runChunk(t *testing.T, chunk *bytecode.Chunk) value.Value {
	t.Helper()
	v, ok, vmErr := vm.New(chunk, vm.Options{Stdout: &bytes.Buffer{}}).Run()
	if vmErr != nil {
		t.Fatalf("run: %s", vmErr.Format())
	}
	if !ok {
		t.Fatalf("program produced no result")
	}
	return v
}

func TestCompileSourceRuns(t *testing.T) {
	res := compile(t, "fun double(n: I32): I32 = n * 2\ndouble(21)", driver.Options{})
	if !res.OK() || res.Reached != driver.StageCompile || res.Chunk == nil {
		t.Fatalf("compile failed: reached %s, codes %v", res.Reached, codes(res))
	}
	if got := runChunk(t, res.Chunk); !got.Equal(value.MakeI32(42)) {
		t.Fatalf("result %s", got.Literal())
	}
}

func TestStopsAtRequestedStage(t *testing.T) {
	res := compile(t, "val x = 1\nx", driver.Options{Stage: driver.StageTypes})
	if res.Reached != driver.StageTypes || res.Typed == nil {
		t.Fatalf("reached %s", res.Reached)
	}
	if res.Module != nil || res.Chunk != nil {
		t.Fatalf("ran past the types stage")
	}
}

func TestStopsAtFirstFailingStage(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		reached driver.Stage
		lo, hi  diag.Code
	}{
		{"syntax", "val = 1", 0, diag.SynInfo, diag.ResInfo},
		{"resolve", "val a = missing", driver.StageParse, diag.ResInfo, diag.TypInfo},
		{"types", "val a: I32 = true", driver.StageResolve, diag.TypInfo, diag.EncInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, tt.src, driver.Options{})
			if res.OK() {
				t.Fatalf("expected diagnostics")
			}
			if res.Reached != tt.reached {
				t.Fatalf("reached %s, want %s", res.Reached, tt.reached)
			}
			for _, c := range codes(res) {
				if c < tt.lo || c >= tt.hi {
					t.Fatalf("diagnostic %s outside the %s stage", c.ID(), tt.name)
				}
			}
			if res.Chunk != nil {
				t.Fatalf("failed compilation produced a chunk")
			}
		})
	}
}

func TestEncodingErrorIsDiagnostic(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("var x = 0\nwhile x < 1 {\n")
	for i := 0; i < 20000; i++ {
		sb.WriteString("x = x + 1\n")
	}
	sb.WriteString("}\n")
	res := compile(t, sb.String(), driver.Options{})
	got := codes(res)
	if len(got) != 1 || got[0] != diag.EncLoopTooFar {
		t.Fatalf("codes %v, want [%s]", got, diag.EncLoopTooFar.ID())
	}
	if res.Reached != driver.StageLower {
		t.Fatalf("reached %s", res.Reached)
	}
}

func TestEncodingCode(t *testing.T) {
	tests := []struct {
		err  bytecode.EncodingError
		want diag.Code
	}{
		{bytecode.EncodingError{Op: bytecode.OpConstLong, What: "index"}, diag.EncIndexTooLarge},
		{bytecode.EncodingError{Op: bytecode.OpCall, What: "count"}, diag.EncArityTooLarge},
		{bytecode.EncodingError{Op: bytecode.OpLoop, What: "jump"}, diag.EncLoopTooFar},
		{bytecode.EncodingError{Op: bytecode.OpFun, What: "jump"}, diag.EncBodyTooLarge},
		{bytecode.EncodingError{Op: bytecode.OpJmpIfFalse, What: "jump"}, diag.EncJumpTooFar},
	}
	for _, tt := range tests {
		t.Run(tt.want.ID(), func(t *testing.T) {
			if got := driver.EncodingCode(&tt.err); got != tt.want {
				t.Fatalf("EncodingCode = %s", got.ID())
			}
		})
	}
}

func TestTimerAndTrace(t *testing.T) {
	var out bytes.Buffer
	tr := trace.NewStreamTracer(&out, trace.LevelDetail, trace.FormatText)
	ctx := trace.WithTracer(context.Background(), tr)
	timer := observ.NewTimer()

	_, err := driver.CompileSource(ctx, "demo.ash", []byte("1 + 2"), driver.Options{Timer: timer})
	if err != nil {
		t.Fatalf("CompileSource: %v", err)
	}
	var names []string
	for _, p := range timer.Phases() {
		names = append(names, p.Name)
	}
	if got := strings.Join(names, " "); got != "parse resolve types lower compile" {
		t.Fatalf("phases %q", got)
	}
	for _, want := range []string{"→ file:demo.ash", "→ parse", "← compile", "(ok)"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("trace missing %q:\n%s", want, out.String())
		}
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := driver.CompileSource(ctx, "demo.ash", []byte("1"), driver.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error %v, want context.Canceled", err)
	}
}

func TestChunkCache(t *testing.T) {
	cache, err := driver.NewChunkCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewChunkCache: %v", err)
	}
	src := "fun sq(n: I32): I32 = n * n\nsq(9)"
	first := compile(t, src, driver.Options{Cache: cache})
	if first.Cached {
		t.Fatalf("empty cache reported a hit")
	}
	second := compile(t, src, driver.Options{Cache: cache})
	if !second.Cached || second.AST != nil {
		t.Fatalf("second compilation not served from cache")
	}
	if got := runChunk(t, second.Chunk); !got.Equal(value.MakeI32(81)) {
		t.Fatalf("cached chunk result %s", got.Literal())
	}
	if other := compile(t, src+" + 1", driver.Options{Cache: cache}); other.Cached {
		t.Fatalf("different source hit the cache")
	}
	if partial := compile(t, src, driver.Options{Cache: cache, Stage: driver.StageLower}); partial.Cached {
		t.Fatalf("partial compilation must bypass the cache")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, err := cache.Get(driver.KeyFor([]byte(src))); ok || err != nil {
		t.Fatalf("entry survived DropAll: ok=%v err=%v", ok, err)
	}
}

func TestCacheIgnoresCorruptEntries(t *testing.T) {
	dir := t.TempDir()
	cache, err := driver.NewChunkCache(dir)
	if err != nil {
		t.Fatalf("NewChunkCache: %v", err)
	}
	key := driver.KeyFor([]byte("1"))
	path := filepath.Join(dir, "chunks", key.String()+".mp")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte{0xc1}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok, err := cache.Get(key); ok || err == nil {
		t.Fatalf("corrupt entry: ok=%v err=%v", ok, err)
	}
	res := compile(t, "1", driver.Options{Cache: cache})
	if !res.OK() || res.Cached {
		t.Fatalf("corrupt entry must fall back to compiling")
	}
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.ash")
	bad := filepath.Join(dir, "bad.ash")
	missing := filepath.Join(dir, "missing.ash")
	if err := os.WriteFile(good, []byte("val a = 1\na"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(bad, []byte("val a = b"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	results, err := driver.CheckFiles(context.Background(), []string{good, bad, missing}, 2, driver.Options{})
	if err != nil {
		t.Fatalf("CheckFiles: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if !results[0].OK() || results[0].File.Path != good {
		t.Fatalf("good file: %v", codes(results[0]))
	}
	if got := codes(results[1]); len(got) == 0 || got[0] != diag.ResUndefined {
		t.Fatalf("bad file codes %v", got)
	}
	if got := codes(results[2]); len(got) != 1 || got[0] != diag.IOLoadFileError {
		t.Fatalf("missing file codes %v", got)
	}
}

func TestParseStage(t *testing.T) {
	st, err := driver.ParseStage("Lower")
	if err != nil || st != driver.StageLower {
		t.Fatalf("ParseStage(Lower) = %s, %v", st, err)
	}
	if _, err := driver.ParseStage("link"); err == nil {
		t.Fatalf("unknown stage accepted")
	}
}
