package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"ash/internal/diag"
	"ash/internal/source"
)

type palette struct {
	err, warn, info, note, code, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty renders every diagnostic in bag as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	   3 | val a = missing
//	     |         ^~~~~~~
//
// followed by its notes when opts.ShowNotes is set. Columns in the caret
// line are display columns, so wide characters stay aligned.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	pr := &printer{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	if pr.opts.TabWidth <= 0 {
		pr.opts.TabWidth = 4
	}
	for _, d := range bag.Items() {
		pr.diagnostic(d)
	}
	if n := bag.Dropped(); n > 0 {
		pr.printf("... %d more errors not shown\n", n)
	}
	return pr.err
}

type printer struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
	err  error
}

func (pr *printer) printf(format string, args ...any) {
	if pr.err != nil {
		return
	}
	_, pr.err = fmt.Fprintf(pr.w, format, args...)
}

func (pr *printer) diagnostic(d diag.Diagnostic) {
	f := pr.fs.Get(d.Primary.File)
	pos := source.LineCol{}
	if f != nil {
		pos = f.Position(d.Primary.Start)
	}
	pr.printf("%s:%d:%d: %s %s: %s\n",
		formatPath(f, pr.opts.PathMode, pr.opts.BaseDir), pos.Line, pos.Col,
		pr.pal.severity(d.Severity).Sprint(d.Severity.String()),
		pr.pal.code.Sprint(d.Code.ID()),
		d.Message)
	pr.excerpt(f, d.Primary)
	if !pr.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := pr.fs.Get(n.Span.File)
		npos := source.LineCol{}
		if nf != nil {
			npos = nf.Position(n.Span.Start)
		}
		pr.printf("  %s %s:%d:%d: %s\n", pr.pal.note.Sprint("note:"),
			formatPath(nf, pr.opts.PathMode, pr.opts.BaseDir), npos.Line, npos.Col, n.Msg)
		pr.excerpt(nf, n.Span)
	}
}

// excerpt prints the first line of span with a caret underline. Spans that
// run past the line are underlined to its end.
func (pr *printer) excerpt(f *source.File, span source.Span) {
	if f == nil || len(f.Content) == 0 {
		return
	}
	start := f.Position(span.Start)
	line := f.Line(start.Line)
	col := min(int(start.Col)-1, len(line))
	end := len(line)
	if stop := f.Position(span.End); stop.Line == start.Line {
		end = min(int(stop.Col)-1, len(line))
	}

	prefix := pr.expand(line[:col])
	marked := pr.expand(line[col:end])
	width := max(runewidth.StringWidth(marked), 1)

	num := fmt.Sprint(start.Line)
	pad := strings.Repeat(" ", len(num))
	pr.printf(" %s %s %s\n", pr.pal.gutter.Sprint(num), pr.pal.gutter.Sprint("|"), pr.expand(line))
	pr.printf(" %s %s %s%s\n", pad, pr.pal.gutter.Sprint("|"),
		strings.Repeat(" ", runewidth.StringWidth(prefix)),
		pr.pal.caret.Sprint("^"+strings.Repeat("~", width-1)))
}

func (pr *printer) expand(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", pr.opts.TabWidth))
}
