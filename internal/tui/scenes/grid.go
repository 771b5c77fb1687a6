// Package scenes holds the sub-models the TUI switches between.
package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/ssopt/internal/domain"
	"github.com/rgehrsitz/ssopt/internal/optimizer"
	"github.com/rgehrsitz/ssopt/internal/tui/components"
	"github.com/rgehrsitz/ssopt/internal/tui/tuistyles"
)

const cellWidth = 12

// GridKeyMap is the cursor bindings of the grid scene.
type GridKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Top    key.Binding
	Bottom key.Binding
}

// GridKeys are the default bindings.
var GridKeys = GridKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "younger final age")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "older final age")),
	Left:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "spouse younger")),
	Right:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "spouse older")),
	Top:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first row")),
	Bottom: key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last row")),
}

// GridModel browses a grid of optimal filing pairs, or for a single
// recipient the optimal filing age per final age.
type GridModel struct {
	names   [2]string
	grid    *optimizer.GridResult
	singles []domain.StrategyResult
	minAge  int

	row, col      int
	width, height int
}

// NewGridModel returns an empty grid scene.
func NewGridModel() *GridModel {
	return &GridModel{names: [2]string{"Recipient 1", "Recipient 2"}, width: 80, height: 24}
}

// SetNames sets the row and column recipient names.
func (m *GridModel) SetNames(first, second string) {
	m.names = [2]string{first, second}
}

// SetGrid shows a couple's grid and resets the cursor.
func (m *GridModel) SetGrid(g *optimizer.GridResult) {
	m.grid, m.singles = g, nil
	if g != nil {
		m.minAge = g.MinAge
	}
	m.row, m.col = 0, 0
}

// SetSingles shows one result per final age starting at minAge.
func (m *GridModel) SetSingles(minAge int, results []domain.StrategyResult) {
	m.grid, m.singles = nil, results
	m.minAge = minAge
	m.row, m.col = 0, 0
}

// SetSize records the terminal size.
func (m *GridModel) SetSize(width, height int) {
	m.width, m.height = width, height
}

// Empty reports whether there is nothing to browse yet.
func (m *GridModel) Empty() bool { return m.rows() == 0 }

func (m *GridModel) rows() int {
	switch {
	case m.grid != nil:
		return m.grid.Width
	default:
		return len(m.singles)
	}
}

func (m *GridModel) cols() int {
	switch {
	case m.grid != nil:
		return m.grid.Width
	case len(m.singles) > 0:
		return 1
	default:
		return 0
	}
}

// Cursor returns the final ages under the cursor.
func (m *GridModel) Cursor() (finalAge1, finalAge2 int) {
	return m.minAge + m.row, m.minAge + m.col
}

// Selected returns the result under the cursor.
func (m *GridModel) Selected() (domain.StrategyResult, bool) {
	return m.at(m.row, m.col)
}

func (m *GridModel) at(row, col int) (domain.StrategyResult, bool) {
	if row < 0 || row >= m.rows() || col < 0 || col >= m.cols() {
		return domain.StrategyResult{}, false
	}
	if m.grid != nil {
		return m.grid.At(m.minAge+row, m.minAge+col)
	}
	return m.singles[row], true
}

// Update moves the cursor.
func (m *GridModel) Update(msg tea.Msg) (*GridModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.Empty() {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, GridKeys.Up):
		m.row = max(m.row-1, 0)
	case key.Matches(keyMsg, GridKeys.Down):
		m.row = min(m.row+1, m.rows()-1)
	case key.Matches(keyMsg, GridKeys.Left):
		m.col = max(m.col-1, 0)
	case key.Matches(keyMsg, GridKeys.Right):
		m.col = min(m.col+1, m.cols()-1)
	case key.Matches(keyMsg, GridKeys.Top):
		m.row = 0
	case key.Matches(keyMsg, GridKeys.Bottom):
		m.row = m.rows() - 1
	}
	return m, nil
}

// View draws the visible window of the matrix and the selected cell.
func (m *GridModel) View() string {
	if m.Empty() {
		return tuistyles.BorderStyle.Render("No results yet. Press r to run the search.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderMatrix(), "", m.renderSelection())
}

// window returns the first visible index so that cursor stays in view.
func window(cursor, visible, total int) int {
	if visible >= total || cursor < visible {
		return 0
	}
	return min(cursor-visible+1, total-visible)
}

func (m *GridModel) renderMatrix() string {
	visCols := max(1, (m.width-6)/cellWidth)
	visRows := max(1, m.height-16)
	c0 := window(m.col, visCols, m.cols())
	r0 := window(m.row, visRows, m.rows())
	c1 := min(c0+visCols, m.cols())
	r1 := min(r0+visRows, m.rows())

	var b strings.Builder
	if m.grid != nil {
		b.WriteString(tuistyles.SubtitleStyle.Render(fmt.Sprintf("Rows: %s final age, columns: %s final age", m.names[0], m.names[1])))
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", 5))
		for c := c0; c < c1; c++ {
			b.WriteString(tuistyles.TableHeaderStyle.Render(fmt.Sprintf("%*d", cellWidth, m.minAge+c)))
		}
	} else {
		b.WriteString(tuistyles.SubtitleStyle.Render(fmt.Sprintf("Optimal filing age for %s by final age", m.names[0])))
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", 5))
		b.WriteString(tuistyles.TableHeaderStyle.Render(fmt.Sprintf("%*s", cellWidth, "filing")))
	}
	b.WriteString("\n")

	for r := r0; r < r1; r++ {
		b.WriteString(tuistyles.TableHeaderStyle.Render(fmt.Sprintf("%4d ", m.minAge+r)))
		for c := c0; c < c1; c++ {
			s, _ := m.at(r, c)
			text := fmt.Sprintf("%*s", cellWidth, m.cellText(s))
			style := tuistyles.CellStyle(s)
			if r == m.row && c == m.col {
				style = tuistyles.TableHighlightStyle
			}
			b.WriteString(style.Render(text))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *GridModel) cellText(s domain.StrategyResult) string {
	if m.grid == nil {
		return fmt.Sprintf("%d:%02d", s.FilingAge1.Years(), s.FilingAge1.ModMonths())
	}
	return fmt.Sprintf("%d:%02d/%d:%02d",
		s.FilingAge1.Years(), s.FilingAge1.ModMonths(),
		s.FilingAge2.Years(), s.FilingAge2.ModMonths())
}

func (m *GridModel) renderSelection() string {
	s, ok := m.Selected()
	if !ok {
		return ""
	}
	a1, a2 := m.Cursor()

	filing := components.NewMetricCard(m.names[0]+" files at", s.FilingAge1.String()).
		WithDescription(fmt.Sprintf("benefits through age %d", a1))
	cards := []*components.MetricCard{filing}
	if m.grid != nil {
		cards = append(cards, components.NewMetricCard(m.names[1]+" files at", s.FilingAge2.String()).
			WithDescription(fmt.Sprintf("benefits through age %d", a2)))
	}

	total := components.NewMetricCard("Lifetime (PV)", s.Total().String())
	if prev, ok := m.at(m.row-1, m.col); ok {
		diff := s.Total().Minus(prev.Total())
		total.WithTrend(!diff.IsNegative(), diff.String()+" vs one year less")
	}
	cards = append(cards, total.WithWidth(36))
	return components.MetricGrid(cards, len(cards))
}
