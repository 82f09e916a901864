// Package status renders the one-line connection and progress bar.
package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/dwilliams27/gc-decomp/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	State   string // connecting, connected, disconnected
	Active  int
	Matched int
	Failed  int
	Crashed int
	Width   int
}

// New creates a status bar model.
func New() Model {
	return Model{State: "disconnected"}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	switch m.State {
	case "connected":
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● connected")
	case "connecting":
		connStr = lipgloss.NewStyle().Foreground(theme.ColorFailed).Render("◐ connecting…")
	default:
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ disconnected")
	}

	counts := fmt.Sprintf("%d running  %d matched  %d failed  %d crashed",
		m.Active, m.Matched, m.Failed, m.Crashed)

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	help := theme.StyleDimmed.Render("j/k:select  enter:detail  d:events  b:batch  x:cancel  q:quit")

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.ColorBorder).
		Render(connStr + sep + counts + sep + help)
}
