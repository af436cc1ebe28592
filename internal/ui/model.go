// Package ui renders an interactive view of a dispatch run. It shows the
// resolved calls, asks for confirmation and then executes them one at a
// time, capturing each command's output.
package ui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cesarempathy/ef-tools/internal/dispatch"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	flagStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Width(14)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// CallRunner executes calls with caller-provided output streams
type CallRunner interface {
	Execute(ctx context.Context, call dispatch.Call, stdout, stderr io.Writer) error
	CommandLine(call dispatch.Call) string
}

// State of a single call
type State int

// Call states
const (
	StatePending State = iota
	StateRunning
	StateDone
	StateFailed
	StateSkipped // not run because an earlier call failed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateRunning:
		return "Running"
	case StateDone:
		return "Completed"
	case StateFailed:
		return "Failed"
	case StateSkipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

// CallStatus tracks one call through the run
type CallStatus struct {
	Call      dispatch.Call
	State     State
	Output    string
	Err       error
	StartTime time.Time
	EndTime   time.Time
}

type callDoneMsg struct {
	index  int
	output string
	err    error
}

type doneMsg struct{}

// Model is the Bubble Tea model
type Model struct {
	runner    CallRunner
	statuses  []CallStatus
	spinner   spinner.Model
	progress  progress.Model
	current   int
	confirmed bool
	finished  bool
	quitting  bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewModel creates a new UI model for the given calls
func NewModel(runner CallRunner, calls []dispatch.Call) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
	)

	statuses := make([]CallStatus, len(calls))
	for i, call := range calls {
		statuses[i] = CallStatus{Call: call, State: StatePending}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		runner:   runner,
		statuses: statuses,
		spinner:  s,
		progress: p,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		case "enter", "y":
			if !m.confirmed {
				m.confirmed = true
				return m.runNext()
			}
		case "n":
			if !m.confirmed {
				m.quitting = true
				return m, tea.Quit
			}
		}

	case callDoneMsg:
		s := &m.statuses[msg.index]
		s.EndTime = time.Now()
		s.Output = msg.output
		if msg.err != nil {
			s.State = StateFailed
			s.Err = msg.err
			for i := msg.index + 1; i < len(m.statuses); i++ {
				m.statuses[i].State = StateSkipped
			}
			m.current = len(m.statuses)
		} else {
			s.State = StateDone
			m.current = msg.index + 1
		}
		return m.runNext()

	case doneMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// runNext starts the call at m.current, or finishes the run
func (m Model) runNext() (tea.Model, tea.Cmd) {
	if m.current >= len(m.statuses) {
		m.finished = true
		return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
			return doneMsg{}
		})
	}

	idx := m.current
	m.statuses[idx].State = StateRunning
	m.statuses[idx].StartTime = time.Now()
	return m, m.executeCmd(idx, m.statuses[idx].Call)
}

func (m Model) executeCmd(idx int, call dispatch.Call) tea.Cmd {
	runner := m.runner
	ctx := m.ctx
	return func() tea.Msg {
		var out bytes.Buffer
		err := runner.Execute(ctx, call, &out, &out)
		return callDoneMsg{index: idx, output: out.String(), err: err}
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting && !m.confirmed {
		return "\n  👋 Cancelled.\n\n"
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  🛠  eftools"))
	b.WriteString("\n\n")

	if len(m.statuses) == 0 {
		b.WriteString(dimStyle.Render("  No recognized flags, nothing to do. Press q to exit"))
		b.WriteString("\n\n")
		return b.String()
	}

	for _, s := range m.statuses {
		b.WriteString(m.renderStatus(s))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if !m.confirmed {
		b.WriteString("  Press ")
		b.WriteString(headerStyle.Render("Enter"))
		b.WriteString(" or ")
		b.WriteString(headerStyle.Render("y"))
		b.WriteString(" to run, ")
		b.WriteString(headerStyle.Render("n"))
		b.WriteString(" or ")
		b.WriteString(headerStyle.Render("q"))
		b.WriteString(" to cancel\n\n")
		return b.String()
	}

	b.WriteString("  ")
	b.WriteString(m.progress.ViewAs(m.completedRatio()))
	b.WriteString("\n\n")

	switch {
	case m.finished && m.HasErrors():
		b.WriteString(errorStyle.Render("  ✗ Run stopped after a failure"))
	case m.finished:
		b.WriteString(successStyle.Render("  ✅ All commands completed"))
	default:
		b.WriteString(dimStyle.Render("  Press q or Ctrl+C to cancel"))
	}
	b.WriteString("\n\n")

	return b.String()
}

func (m Model) renderStatus(s CallStatus) string {
	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(flagStyle.Render(s.Call.Flag))
	b.WriteString(" ")

	switch s.State {
	case StatePending:
		b.WriteString(dimStyle.Render("○"))
	case StateRunning:
		b.WriteString(m.spinner.View())
	case StateDone:
		b.WriteString(successStyle.Render("✓"))
	case StateFailed:
		b.WriteString(errorStyle.Render("✗"))
	case StateSkipped:
		b.WriteString(warningStyle.Render("○"))
	}
	b.WriteString(" ")

	if line := m.runner.CommandLine(s.Call); line != "" {
		b.WriteString(infoStyle.Render(line))
	} else {
		b.WriteString(infoStyle.Render(s.Call.Action.String()))
	}

	if s.State == StateDone && !s.EndTime.IsZero() && !s.StartTime.IsZero() {
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", s.EndTime.Sub(s.StartTime).Round(time.Millisecond))))
	}
	if s.State == StateFailed && s.Err != nil {
		b.WriteString(dimStyle.Render(" - " + truncate(s.Err.Error(), 60)))
	}

	return b.String()
}

func (m Model) completedRatio() float64 {
	if len(m.statuses) == 0 {
		return 1
	}
	done := 0
	for _, s := range m.statuses {
		if s.State == StateDone || s.State == StateFailed || s.State == StateSkipped {
			done++
		}
	}
	return float64(done) / float64(len(m.statuses))
}

// Statuses returns a copy of the call statuses
func (m Model) Statuses() []CallStatus {
	out := make([]CallStatus, len(m.statuses))
	copy(out, m.statuses)
	return out
}

// Err returns the error of the failed call, if any
func (m Model) Err() error {
	for _, s := range m.statuses {
		if s.State == StateFailed {
			return s.Err
		}
	}
	return nil
}

// HasErrors returns true if any call failed
func (m Model) HasErrors() bool {
	return m.Err() != nil
}

// PrintSummary writes the captured output and outcome of every call that ran
func (m Model) PrintSummary(w io.Writer) {
	if !m.confirmed {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("EFTOOLS SUMMARY"))
	fmt.Fprintln(w)

	for _, s := range m.statuses {
		switch s.State {
		case StateDone:
			fmt.Fprintf(w, "  %s %s\n", successStyle.Render("✓"), s.Call.Flag)
		case StateFailed:
			fmt.Fprintf(w, "  %s %s\n", errorStyle.Render("✗"), s.Call.Flag)
			if s.Err != nil {
				fmt.Fprintf(w, "    %s %s\n", errorStyle.Render("Error:"), s.Err.Error())
			}
		case StateSkipped:
			fmt.Fprintf(w, "  %s %s %s\n", warningStyle.Render("○"), s.Call.Flag, dimStyle.Render("(not run)"))
		default:
			fmt.Fprintf(w, "  %s %s (Incomplete)\n", warningStyle.Render("○"), s.Call.Flag)
		}
		if out := strings.TrimRight(s.Output, "\n"); out != "" {
			for _, line := range strings.Split(out, "\n") {
				fmt.Fprintf(w, "    %s\n", dimStyle.Render(line))
			}
		}
	}
	fmt.Fprintln(w)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
