// Package theme provides the Lip Gloss color palette and reusable styles
// for the console. It is a leaf package with no internal imports to
// avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Worker status colors.
var (
	ColorRunning = lipgloss.Color("#2563eb")
	ColorMatched = lipgloss.Color("#16a34a")
	ColorFailed  = lipgloss.Color("#d97706")
	ColorCrashed = lipgloss.Color("#dc2626")
)

// Match percentage thresholds.
var (
	ColorMatchLow  = lipgloss.Color("#dc2626") // <40%
	ColorMatchMid  = lipgloss.Color("#d97706") // 40-85%
	ColorMatchHigh = lipgloss.Color("#22c55e") // >85%
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// Shared styles.
var (
	StyleHeader   = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)
	StyleDimmed   = lipgloss.NewStyle().Foreground(ColorDimmed)
	StyleSelected = lipgloss.NewStyle().Bold(true).Foreground(ColorBright).Background(lipgloss.Color("#1f2937"))
)

// MatchColor returns the color for a match percentage.
func MatchColor(pct float64) lipgloss.Color {
	switch {
	case pct > 85:
		return ColorMatchHigh
	case pct >= 40:
		return ColorMatchMid
	}
	return ColorMatchLow
}
