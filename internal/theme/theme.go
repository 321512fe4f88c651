// Package theme provides the Lip Gloss color palette and reusable styles
// for the scanwatch TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Scan status colors.
var (
	ColorScanning = lipgloss.Color("#2563eb")
	ColorScanned  = lipgloss.Color("#16a34a")
	ColorFailed   = lipgloss.Color("#dc2626")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// Shared styles.
var (
	StyleHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)
	StyleDimmed = lipgloss.NewStyle().Foreground(ColorDimmed)
)

// StatusColor returns the color for a scan status tag.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "scanning":
		return ColorScanning
	case "scanned":
		return ColorScanned
	case "failed":
		return ColorFailed
	default:
		return ColorDimmed
	}
}
