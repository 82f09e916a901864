// Package debug renders the raw event log overlay: the bounded window
// of every frame the stream delivered, newest at the bottom.
package debug

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dwilliams27/gc-decomp/internal/event"
	"github.com/dwilliams27/gc-decomp/internal/theme"
)

// Model holds the overlay scroll state. Entries come from the event log
// snapshot at render time; the overlay itself keeps no copy.
type Model struct {
	Offset int // scroll offset from the bottom
}

// New creates an overlay model scrolled to the bottom.
func New() Model {
	return Model{}
}

// ScrollUp moves the viewport toward older entries.
func (m *Model) ScrollUp(n, total int) {
	m.Offset += n
	max := total - 1
	if max < 0 {
		max = 0
	}
	if m.Offset > max {
		m.Offset = max
	}
}

// ScrollDown moves the viewport toward the newest entries.
func (m *Model) ScrollDown(n int) {
	m.Offset -= n
	if m.Offset < 0 {
		m.Offset = 0
	}
}

func panelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder)
}

func levelColor(level string) lipgloss.Color {
	switch level {
	case "warning":
		return theme.ColorFailed
	case "error":
		return theme.ColorDanger
	}
	return theme.ColorDimmed
}

// View renders the event log overlay.
func (m Model) View(entries []*event.Event, connected bool, width, height int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}
	visibleLines := height - 6
	if visibleLines < 3 {
		visibleLines = 3
	}

	conn := "stream down"
	if connected {
		conn = "stream up"
	}
	title := theme.StyleHeader.Render(" EVENT LOG ")
	help := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  esc:close  %d entries  %s", len(entries), conn))

	if len(entries) == 0 {
		body := theme.StyleDimmed.Render("  No events received yet.")
		return panelStyle(innerW).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", help))
	}

	end := len(entries) - m.Offset
	start := end - visibleLines
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}

	var lines []string
	for i := start; i < end; i++ {
		e := entries[i]
		tsStr := theme.StyleDimmed.Render(e.Time().Format("15:04:05.000"))
		kindStr := lipgloss.NewStyle().Foreground(levelColor(e.Level)).Width(22).Render(e.Kind)
		fn := e.Function
		if fn == "" {
			fn = "-"
		}
		if len(fn) > innerW-40 && innerW > 40 {
			fn = fn[:innerW-43] + "..."
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", tsStr, kindStr, fn))
	}

	body := strings.Join(lines, "\n")
	scrollIndicator := ""
	if m.Offset > 0 {
		scrollIndicator = theme.StyleDimmed.Render(fmt.Sprintf(" ↑ %d newer", m.Offset))
	}

	return panelStyle(innerW).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, scrollIndicator, help))
}
