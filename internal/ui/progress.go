// Package ui renders a live per-file view of a run for interactive
// terminals (--progress).
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"unicecream/internal/driver"
)

// Status is the state of one file in the view.
type Status uint8

const (
	StatusQueued Status = iota
	StatusClean
	StatusViolations
	StatusFixed
	StatusPending // diff: fix available but not written
	StatusSkipped
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusViolations:
		return "violations"
	case StatusFixed:
		return "fixed"
	case StatusPending:
		return "would fix"
	case StatusSkipped:
		return "skipped"
	case StatusError:
		return "error"
	default:
		return "queued"
	}
}

// Event reports that one file is done.
type Event struct {
	Path   string
	Status Status
	Count  int // violations in check mode
}

// EventFor converts a driver result into a view event.
func EventFor(fr *driver.FileResult, mode driver.Mode) Event {
	ev := Event{Path: fr.Path, Status: StatusClean, Count: len(fr.Violations)}
	switch {
	case fr.Err != nil:
		ev.Status = StatusError
	case fr.Skipped != "":
		ev.Status = StatusSkipped
	case mode == driver.ModeCheck && len(fr.Violations) > 0:
		ev.Status = StatusViolations
	case fr.Changed && mode == driver.ModeDiff:
		ev.Status = StatusPending
	case fr.Changed:
		ev.Status = StatusFixed
	}
	return ev
}

type progressModel struct {
	title   string
	events  <-chan Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	done    int
	width   int
	height  int
	closed  bool
}

type fileItem struct {
	path   string
	status Status
	count  int
}

type eventMsg Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders per-file progress.
// The model quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
		height:  24,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.closed = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		if msg.Height > 0 {
			m.height = msg.Height
		}
		return m, nil
	case tea.KeyMsg:
		// прерывание только скрывает вид, прогон доделывается
		if msg.Type == tea.KeyCtrlC {
			m.closed = true
			return m, tea.Quit
		}
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s %d/%d", m.title, m.done, len(m.items))
	if m.closed {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, item := range m.visible() {
		label := item.status.String()
		if item.status == StatusViolations {
			label = fmt.Sprintf("%d found", item.count)
		}
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", label))
		fmt.Fprintf(&b, "  %s %s\n", statusStyled, truncate(item.path, nameWidth))
	}

	b.WriteString("\n")
	if m.closed {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

// visible returns the window of items that fits the terminal: the most
// recently finished files and the queue right after them.
func (m *progressModel) visible() []fileItem {
	rows := max(m.height-6, 3)
	if len(m.items) <= rows {
		return m.items
	}
	start := min(max(m.done-rows/2, 0), len(m.items)-rows)
	return m.items[start : start+rows]
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev Event) tea.Cmd {
	idx, ok := m.index[ev.Path]
	if !ok {
		return nil
	}
	if m.items[idx].status == StatusQueued {
		m.done++
	}
	m.items[idx].status = ev.Status
	m.items[idx].count = ev.Count
	return m.prog.SetPercent(float64(m.done) / float64(len(m.items)))
}

func styleStatus(status Status) lipgloss.Style {
	switch status {
	case StatusClean, StatusFixed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case StatusError, StatusViolations:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case StatusPending, StatusSkipped:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
