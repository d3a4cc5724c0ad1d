package observ_test

import (
	"strings"
	"sync"
	"testing"

	"ash/internal/observ"
)

func TestTimerReport(t *testing.T) {
	timer := observ.NewTimer()
	parse := timer.Begin("parse")
	timer.End(parse, "1 file")
	lower := timer.Begin("lower")
	timer.End(lower, "")
	timer.End(99, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("got %d phases", len(report.Phases))
	}
	if report.Phases[0].Name != "parse" || report.Phases[0].Note != "1 file" {
		t.Fatalf("unexpected first phase %+v", report.Phases[0])
	}
	sum := report.Phases[0].DurationMS + report.Phases[1].DurationMS
	if report.TotalMS != sum {
		t.Fatalf("total %v, want %v", report.TotalMS, sum)
	}
	summary := timer.Summary()
	for _, want := range []string{"timings:", "parse", "// 1 file", "total"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestTimerConcurrent(t *testing.T) {
	timer := observ.NewTimer()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			timer.End(timer.Begin("check"), "")
		}()
	}
	wg.Wait()
	if got := len(timer.Phases()); got != 16 {
		t.Fatalf("got %d phases, want 16", got)
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var timer *observ.Timer
	timer.End(timer.Begin("parse"), "")
}
