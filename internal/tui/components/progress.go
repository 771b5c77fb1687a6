package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/ssopt/internal/tui/tuistyles"
)

// ProgressBar shows how many grid rows have finished.
type ProgressBar struct {
	Current int
	Total   int
	Width   int
	Label   string
}

// NewProgressBar returns an empty bar for total rows.
func NewProgressBar(total int) *ProgressBar {
	return &ProgressBar{Total: total, Width: 40}
}

// WithLabel sets the line drawn above the bar.
func (p *ProgressBar) WithLabel(label string) *ProgressBar {
	p.Label = label
	return p
}

// WithWidth sets the bar width in cells.
func (p *ProgressBar) WithWidth(width int) *ProgressBar {
	p.Width = width
	return p
}

// Add advances the bar by n, never past Total.
func (p *ProgressBar) Add(n int) {
	p.Current = min(p.Current+n, p.Total)
}

// Fraction is the completed share in [0, 1].
func (p *ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Current) / float64(p.Total)
}

// IsComplete reports whether every row is done.
func (p *ProgressBar) IsComplete() bool {
	return p.Total > 0 && p.Current >= p.Total
}

// Render draws the label, the bar and a "12/39 rows" count.
func (p *ProgressBar) Render() string {
	var b strings.Builder
	if p.Label != "" {
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(tuistyles.ColorForeground).Render(p.Label))
		b.WriteString("\n")
	}

	filled := min(int(float64(p.Width)*p.Fraction()), p.Width)
	b.WriteString("[")
	b.WriteString(lipgloss.NewStyle().Foreground(tuistyles.ColorSuccess).Render(strings.Repeat("█", filled)))
	b.WriteString(lipgloss.NewStyle().Foreground(tuistyles.ColorBorder).Render(strings.Repeat("░", p.Width-filled)))
	b.WriteString("] ")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(tuistyles.ColorPrimary).Render(fmt.Sprintf("%.0f%%", p.Fraction()*100)))
	b.WriteString(" ")
	b.WriteString(tuistyles.MetricLabelStyle.Render(fmt.Sprintf("%d/%d rows", p.Current, p.Total)))
	return b.String()
}
