package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase accumulates the time spent in one kind of work across all files.
type Phase struct {
	Name  string
	Dur   time.Duration
	Count int
	Note  string
}

// Timer tracks named phases. Repeated phases are summed, so a per-file pass
// such as "parse" shows the total for the run and how often it ran.
type Timer struct {
	phases []Phase
	index  map[string]int
	open   map[int]measurement
	seq    int
}

type measurement struct {
	phase int
	start time.Time
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer {
	return &Timer{
		phases: make([]Phase, 0, 8),
		index:  make(map[string]int, 8),
		open:   make(map[int]measurement, 4),
	}
}

// Begin starts a measurement of phase name and returns its token.
// A nil timer is valid and measures nothing.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	if _, ok := t.index[name]; !ok {
		t.index[name] = len(t.phases)
		t.phases = append(t.phases, Phase{Name: name})
	}
	t.seq++
	t.open[t.seq] = measurement{phase: t.index[name], start: time.Now()}
	return t.seq
}

// End finishes the measurement started with token.
func (t *Timer) End(token int, note string) {
	if t == nil || token < 0 {
		return
	}
	m, ok := t.open[token]
	if !ok {
		return
	}
	delete(t.open, token)
	p := &t.phases[m.phase]
	p.Dur += time.Since(m.start)
	p.Count++
	if note != "" {
		p.Note = note
	}
}

// Track runs fn inside phase name.
func (t *Timer) Track(name string, fn func() error) error {
	token := t.Begin(name)
	err := fn()
	t.End(token, "")
	return err
}

// Summary returns a human-readable string summarizing all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-12s %9.2f ms  x%d", p.Name, p.DurationMS, p.Count)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "  %-12s %9.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Count      int     `json:"count"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report формирует срез фаз и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Count:      phase.Count,
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
