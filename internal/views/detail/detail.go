// Package detail renders the per-worker overlay: tool-call history and
// the match trajectory.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dwilliams27/gc-decomp/internal/theme"
	"github.com/dwilliams27/gc-decomp/internal/worker"
)

// historyWindow caps how many history rows the overlay shows.
const historyWindow = 15

func panelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder)
}

// sparkline renders the match history as a compact bar series.
func sparkline(points []worker.MatchPoint) string {
	if len(points) == 0 {
		return theme.StyleDimmed.Render("no improvements yet")
	}
	levels := []rune("▁▂▃▄▅▆▇█")
	var b strings.Builder
	for _, p := range points {
		pct := p.MatchPct
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		idx := int(pct / 100 * float64(len(levels)-1))
		b.WriteRune(levels[idx])
	}
	return lipgloss.NewStyle().Foreground(theme.ColorMatchHigh).Render(b.String())
}

// View renders the detail overlay for one worker.
func View(rec *worker.Record, width int) string {
	innerW := width - 6
	if innerW < 40 {
		innerW = 40
	}

	title := theme.StyleHeader.Render(" " + rec.Function + " ")
	meta := fmt.Sprintf("status %s   iteration %d/%d   match %.1f%%   tokens %d",
		rec.Status, rec.Iteration, rec.MaxIterations, rec.RenderMatchPct(), rec.TokensUsed)
	if rec.TokenBudget > 0 {
		meta += fmt.Sprintf(" of %d", rec.TokenBudget)
	}

	var lines []string
	lines = append(lines, title, meta, "")
	lines = append(lines, theme.StyleHeader.Render("Match history"), sparkline(rec.MatchHistory))

	points := rec.MatchHistory
	if len(points) > historyWindow {
		points = points[len(points)-historyWindow:]
	}
	for _, p := range points {
		lines = append(lines, theme.StyleDimmed.Render(
			fmt.Sprintf("  iter %-3d  %.1f%%", p.Iteration, p.MatchPct)))
	}

	lines = append(lines, "", theme.StyleHeader.Render("Tool calls"))
	calls := rec.ToolCalls
	if len(calls) > historyWindow {
		lines = append(lines, theme.StyleDimmed.Render(
			fmt.Sprintf("  … %d earlier calls", len(calls)-historyWindow)))
		calls = calls[len(calls)-historyWindow:]
	}
	if len(calls) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("  none recorded"))
	}
	for _, c := range calls {
		lines = append(lines, fmt.Sprintf("  %s  iter %-3d  %s",
			theme.StyleDimmed.Render(c.Timestamp.Format("15:04:05")), c.Iteration, c.Tool))
	}

	lines = append(lines, "", theme.StyleDimmed.Render("esc:close"))
	return panelStyle(innerW).Render(strings.Join(lines, "\n"))
}
