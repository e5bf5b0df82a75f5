package observ

import (
	"errors"
	"strings"
	"testing"
)

func TestTimerAccumulatesRepeatedPhases(t *testing.T) {
	timer := NewTimer()
	for i := 0; i < 3; i++ {
		tok := timer.Begin("parse")
		timer.End(tok, "")
	}
	tok := timer.Begin("write")
	timer.End(tok, "1 file")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].Name != "parse" || report.Phases[0].Count != 3 {
		t.Fatalf("unexpected parse phase %+v", report.Phases[0])
	}
	if report.Phases[1].Note != "1 file" {
		t.Fatalf("note lost: %+v", report.Phases[1])
	}
	if !strings.HasPrefix(timer.Summary(), "timings:\n") {
		t.Fatalf("unexpected summary %q", timer.Summary())
	}
}

func TestTimerIgnoresUnknownTokens(t *testing.T) {
	timer := NewTimer()
	tok := timer.Begin("read")
	timer.End(tok+42, "")
	timer.End(tok, "")
	timer.End(tok, "")
	if got := timer.Report().Phases[0].Count; got != 1 {
		t.Fatalf("expected a single measurement, got %d", got)
	}
}

func TestNilTimer(t *testing.T) {
	var timer *Timer
	want := errors.New("boom")
	if err := timer.Track("fix", func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("Track must return fn's error, got %v", err)
	}
	if len(timer.Report().Phases) != 0 {
		t.Fatalf("nil timer must report nothing")
	}
}
