package tui

import (
	"fmt"
	"strings"

	"budget/internal/core"
	"budget/internal/state"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("#3B82F6")
	colorDanger = lipgloss.Color("#DC2626")
	colorMuted  = lipgloss.Color("#6B7280")
	colorText   = lipgloss.Color("#F9FAFB")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted).Width(11)
	valueStyle = lipgloss.NewStyle().Bold(true)
	overStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorDanger)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorDanger).
			Bold(true).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

const barWidth = 30

// ErrorMessage renders a validation message as a banner; "" renders nothing.
func ErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}
	return errorStyle.Render(msg)
}

// ProgressBar draws the spent share of the budget.
func ProgressBar(pct float64) string {
	filled := int(pct / 100 * barWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	style := titleStyle
	if pct > 100 {
		style = overStyle
	}
	return style.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", barWidth-filled)) +
		fmt.Sprintf(" %.2f%%", pct)
}

// Summary renders the tracker and the filtered expense list.
func Summary(st state.State, cats core.Categories) string {
	if !st.HasBudget() {
		return panelStyle.Render(titleStyle.Render("Budget planner") + "\n" +
			mutedStyle.Render("No budget defined yet"))
	}

	remaining := st.RemainingBudget()
	remainingStyle := valueStyle
	if remaining < 0 {
		remainingStyle = overStyle
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Budget planner"))
	b.WriteString("\n")
	b.WriteString(ProgressBar(st.SpentPercentage()))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Budget") + valueStyle.Render(core.FormatAmount(st.Budget)) + "\n")
	b.WriteString(labelStyle.Render("Available") + remainingStyle.Render(core.FormatAmount(remaining)) + "\n")
	b.WriteString(labelStyle.Render("Spent") + valueStyle.Render(core.FormatAmount(st.TotalExpenses())))

	if st.CurrentCategory != "" {
		b.WriteString("\n" + mutedStyle.Render("Filter: "+cats.Name(st.CurrentCategory)))
	}

	expenses := st.FilteredExpenses()
	if len(expenses) == 0 {
		b.WriteString("\n\n" + mutedStyle.Render("No expenses yet"))
	}
	for _, e := range expenses {
		b.WriteString("\n" + ExpenseLine(e, cats))
	}

	return panelStyle.Render(b.String())
}

// ExpenseLine is the one-line rendition of an expense, used in the list and
// in selection prompts.
func ExpenseLine(e core.Expense, cats core.Categories) string {
	return fmt.Sprintf("%-12s %-20s %12s  %s",
		cats.Name(e.Category), e.ExpenseName, core.FormatAmount(e.Amount), e.Date.Long())
}
