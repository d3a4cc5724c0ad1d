package diag

import (
	"fmt"
	"strings"

	"ash/internal/source"
)

// FormatShort renders diagnostics one per line as
// "<severity> <code> <path>:<line>:<col> <message>", in input order.
// Notes follow their diagnostic with severity "note". The format is stable
// and used by `ash check --format short` and by tests.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	var lines []string
	for i := range diags {
		d := &diags[i]
		lines = append(lines, shortLine(fs, d.Severity.Label(), d.Code, d.Primary, d.Message))
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			lines = append(lines, shortLine(fs, "note", d.Code, n.Span, n.Msg))
		}
	}
	return strings.Join(lines, "\n")
}

func shortLine(fs *source.FileSet, sev string, code Code, span source.Span, msg string) string {
	path := "?"
	var line, col uint32
	if f := fs.Get(span.File); f != nil {
		path = f.Path
		pos := f.Position(span.Start)
		line, col = pos.Line, pos.Col
	}
	return fmt.Sprintf("%s %s %s:%d:%d %s", sev, code.ID(), path, line, col, sanitizeMessage(msg))
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
