package dispatch

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Plan formatting styles
var (
	planTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	planHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("75"))

	planBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1)

	planRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	planSkipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	planDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// CommandLine renders the external command for a call, or "" when the
// action runs nothing.
type CommandLine func(call Call) string

// FormatPlan renders the scanned calls and what each one would execute
func FormatPlan(calls []Call, commandLine CommandLine) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(planTitleStyle.Render("EFTOOLS PLAN"))
	b.WriteString("\n\n")

	if len(calls) == 0 {
		b.WriteString(planDimStyle.Render("  No recognized flags, nothing to do."))
		b.WriteString("\n")
		return b.String()
	}

	runCount := 0
	for _, call := range calls {
		if commandLine(call) != "" {
			runCount++
		}
	}

	b.WriteString(planHeaderStyle.Render(fmt.Sprintf("Calls (%d):", len(calls))))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s  %s\n",
		planRunStyle.Render(fmt.Sprintf("✓ Run: %d", runCount)),
		planSkipStyle.Render(fmt.Sprintf("○ No-op: %d", len(calls)-runCount)),
	))
	b.WriteString("\n")

	b.WriteString(planBoxStyle.Render(renderPlanTable(calls, commandLine)))
	b.WriteString("\n")

	return b.String()
}

func renderPlanTable(calls []Call, commandLine CommandLine) string {
	var b strings.Builder

	flagColWidth := 14
	actionColWidth := 10

	b.WriteString(planHeaderStyle.Render(padRight("Flag", flagColWidth)))
	b.WriteString(planHeaderStyle.Render(padRight("Action", actionColWidth)))
	b.WriteString(planHeaderStyle.Render("Command"))
	b.WriteString("\n")
	b.WriteString(planDimStyle.Render(strings.Repeat("─", flagColWidth+actionColWidth+40)))
	b.WriteString("\n")

	for i, call := range calls {
		b.WriteString(padRight(call.Flag, flagColWidth))
		b.WriteString(padRight(call.Action.String(), actionColWidth))
		if line := commandLine(call); line != "" {
			b.WriteString(planRunStyle.Render(line))
		} else {
			b.WriteString(planSkipStyle.Render("○ nothing to run"))
		}
		if i < len(calls)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width-1] + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
