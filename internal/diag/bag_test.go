package diag

import (
	"testing"

	"ash/internal/source"
)

func TestBag_LimitKeepsErrorState(t *testing.T) {
	b := NewBag(1)
	if !b.Add(NewError(ResUndefined, source.Span{}, "first")) {
		t.Fatalf("first diagnostic must be stored")
	}
	if b.Add(NewError(ResUndefined, source.Span{}, "second")) {
		t.Fatalf("second diagnostic must be dropped")
	}
	if b.Len() != 1 || b.Dropped() != 1 || b.ErrorCount() != 2 {
		t.Fatalf("len=%d dropped=%d errors=%d", b.Len(), b.Dropped(), b.ErrorCount())
	}
	if !b.HasErrors() {
		t.Fatalf("HasErrors must be true")
	}
}

func TestBag_Sort(t *testing.T) {
	b := NewBag(0)
	b.Add(New(SevWarning, TypMismatch, source.Span{Start: 5, End: 6}, "w"))
	b.Add(NewError(ResUndefined, source.Span{Start: 5, End: 6}, "e"))
	b.Add(NewError(ResDuplicate, source.Span{Start: 1, End: 2}, "first"))
	b.Sort()
	got := []string{b.Items()[0].Message, b.Items()[1].Message, b.Items()[2].Message}
	want := []string{"first", "e", "w"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestReportBuilder_EmitOnce(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	b := ReportError(r, ResInitCycle, source.Span{Start: 1, End: 2}, "initialization loop").
		WithNote(source.Span{Start: 3, End: 4}, "a refers to b")
	b.Emit()
	b.Emit()
	ReportError(r, ResInitCycle, source.Span{Start: 1, End: 2}, "initialization loop").Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	if n := len(bag.Items()[0].Notes); n != 1 {
		t.Fatalf("expected one note, got %d", n)
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.ash", []byte("val a = b\nval b = a\n"))
	d := NewError(ResInitCycle, source.Span{File: id, Start: 4, End: 5}, "initialization loop:\na → b → a").
		WithNote(source.Span{File: id, Start: 14, End: 15}, "b refers to a")
	got := FormatShort([]Diagnostic{d}, fs, true)
	want := "error RES3003 main.ash:1:5 initialization loop: a → b → a\n" +
		"note RES3003 main.ash:2:5 b refers to a"
	if got != want {
		t.Fatalf("FormatShort:\nwant %q\ngot  %q", want, got)
	}
}
