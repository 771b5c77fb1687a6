package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/ssopt/internal/output"
	"github.com/rgehrsitz/ssopt/internal/tui/components"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.loading {
		return m.renderLoading()
	}
	if m.err != nil {
		return m.renderError()
	}

	var content string
	switch m.currentScene {
	case SceneHome:
		content = m.renderHome()
	case SceneGrid:
		content = m.renderGrid()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Unknown scene"
	}
	return m.renderApp(content)
}

// renderApp wraps content with title bar, status bar, and main container
func (m Model) renderApp(content string) string {
	contentHeight := max(m.height-4, 0)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		lipgloss.NewStyle().Height(contentHeight).Render(content),
		m.renderStatusBar(),
	)
}

func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("SSOPT - Social Security Filing Strategy")
	breadcrumb := m.currentScene.String()
	if m.status != "" {
		breadcrumb += " / " + m.status
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, SubtitleStyle.Render(breadcrumb))
}

func (m Model) renderStatusBar() string {
	shortcuts := []string{
		formatShortcut("h", "household"),
		formatShortcut("o", "grid"),
		formatShortcut("r", "run"),
		formatShortcut("x", "cancel"),
		formatShortcut("?", "help"),
		formatShortcut("q", "quit"),
	}
	statusText := strings.Join(shortcuts, " • ")

	if m.planPath != "" {
		name := SubtitleStyle.Render(filepath.Base(m.planPath))
		spacer := strings.Repeat(" ", max(0, m.width-lipgloss.Width(statusText)-lipgloss.Width(name)-1))
		statusText += spacer + name
	}
	return StatusBarStyle.Width(m.width).Render(statusText)
}

// formatShortcut formats a keyboard shortcut with key and description
func formatShortcut(key, desc string) string {
	return StatusKeyStyle.Render(key) + " " + desc
}

func (m Model) renderLoading() string {
	message := m.loadingMessage
	if message == "" {
		message = "Loading..."
	}
	return m.renderApp(BorderStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), message)))
}

func (m Model) renderError() string {
	return m.renderApp(ErrorStyle.Render(fmt.Sprintf("Error: %s\n\nPress any key to continue...", m.err)))
}

// renderHome shows each recipient's benefit summary and the search state.
func (m Model) renderHome() string {
	if m.plan == nil {
		return BorderStyle.Render("No household loaded.")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Current month: %s    Discount rate: %s", m.plan.CurrentDate, output.FormatPercentage(m.rate))
	if m.rateSource != "" {
		fmt.Fprintf(&b, " (%s)", m.rateSource)
	}
	b.WriteString("\n\n")

	for i, s := range m.summaries {
		b.WriteString(TitleStyle.Render(m.recipientName(i)))
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("born %s, full retirement age %s", s.BirthDate, s.NormalRetirementAge)))
		b.WriteString("\n")
		cards := []*components.MetricCard{
			components.NewMetricCard("PIA", s.PIA.String()).WithWidth(18),
			components.NewMetricCard("At "+s.EarliestFilingAge.String(), s.BenefitEarliest.String()).WithWidth(18),
			components.NewMetricCard("At 70y0m", s.BenefitAt70.String()).WithWidth(18),
		}
		if len(m.summaries) == 2 && s.SpousalEligible {
			cards[0].WithDescription("spousal eligible")
		}
		b.WriteString(components.MetricGrid(cards, len(cards)))
		b.WriteString("\n")
	}

	if m.searching {
		b.WriteString("\n" + m.spinner.View() + " " + m.progress.Render())
	} else {
		b.WriteString("\n" + SubtitleStyle.Render("Press r to search every combination of final ages."))
	}
	return b.String()
}

func (m Model) renderGrid() string {
	if m.searching {
		return BorderStyle.Render(m.spinner.View() + " " + m.progress.Render())
	}
	return m.gridModel.View()
}

func (m Model) renderHelp() string {
	helpText := `
SSOPT - Social Security Filing Strategy

KEYBOARD SHORTCUTS:
  h        Household summary
  o        Optimal filing ages grid
  r        Run the final-age search
  x        Cancel a running search
  ?        Show this help
  ESC      Go back
  q/Ctrl+C Quit

GRID:
  ↑/k ↓/j  Move between your final ages
  ← →      Move between your spouse's final ages
  g/G      First/last row

Cells read "70:00/62:01": each recipient's filing age in years:months.
`
	return BorderStyle.Render(helpText)
}
