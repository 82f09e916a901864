// Package dashboard renders the worker table: one row per tracked
// function, in first-seen order.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dwilliams27/gc-decomp/internal/theme"
	"github.com/dwilliams27/gc-decomp/internal/worker"
)

// Model holds the dashboard state.
type Model struct {
	Width    int
	Height   int
	Selected int
}

// New creates an empty dashboard.
func New() Model {
	return Model{}
}

func statusStyle(s worker.Status) lipgloss.Style {
	switch s {
	case worker.Matched:
		return lipgloss.NewStyle().Foreground(theme.ColorMatched)
	case worker.Failed:
		return lipgloss.NewStyle().Foreground(theme.ColorFailed)
	case worker.Crashed:
		return lipgloss.NewStyle().Foreground(theme.ColorCrashed)
	}
	return lipgloss.NewStyle().Foreground(theme.ColorRunning)
}

// matchBar renders a small progress bar for the match percentage.
func matchBar(pct float64, width int) string {
	if width < 4 {
		width = 4
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(theme.MatchColor(pct)).Render(bar)
}

func tokenCell(rec *worker.Record) string {
	if rec.TokenBudget > 0 {
		return fmt.Sprintf("%dk/%dk", rec.TokensUsed/1000, rec.TokenBudget/1000)
	}
	return fmt.Sprintf("%dk", rec.TokensUsed/1000)
}

// View renders the worker table.
func (m Model) View(records []*worker.Record) string {
	if len(records) == 0 {
		return theme.StyleDimmed.Render("\n  No workers yet — waiting for the agent to start.\n")
	}

	header := fmt.Sprintf("  %-28s %-8s %7s  %-14s %6s  %10s  %s",
		"FUNCTION", "STATUS", "ITER", "MATCH", "", "TOKENS", "LAST EVENT")
	rows := []string{theme.StyleHeader.Render(header)}

	for i, rec := range records {
		pct := rec.RenderMatchPct()
		line := fmt.Sprintf("  %-28s %-8s %3d/%-3d  %s %5.1f%%  %10s  %s",
			truncate(rec.Function, 28),
			statusStyle(rec.Status).Render(fmt.Sprintf("%-8s", rec.Status)),
			rec.Iteration, rec.MaxIterations,
			matchBar(pct, 12), pct,
			tokenCell(rec),
			theme.StyleDimmed.Render(lastEvent(rec)),
		)
		if i == m.Selected {
			line = theme.StyleSelected.Render("▸") + line[1:]
		}
		rows = append(rows, line)
	}

	return strings.Join(rows, "\n")
}

func lastEvent(rec *worker.Record) string {
	if rec.LastEventKind == "" {
		return "-"
	}
	age := time.Since(rec.LastEventAt).Truncate(time.Second)
	if age < 0 {
		age = 0
	}
	return fmt.Sprintf("%s (%s ago)", rec.LastEventKind, age)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
