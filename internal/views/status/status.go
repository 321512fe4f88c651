// Package status renders the connection/progress status bar.
package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/zozs/scan-stream/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Connected bool
	Scanning  int
	Scanned   int
	Failed    int
	Cursor    string
	Width     int
}

// New creates a status bar model.
func New() Model {
	return Model{}
}

// SetCounts updates the per-status scan counts.
func (m *Model) SetCounts(scanning, scanned, failed int) {
	m.Scanning = scanning
	m.Scanned = scanned
	m.Failed = failed
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	if m.Connected {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Connected")
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Reconnecting...")
	}

	counts := fmt.Sprintf("%d scanning  %d scanned  %d failed",
		m.Scanning, m.Scanned, m.Failed)

	cursorStr := theme.StyleDimmed.Render("cursor: -")
	if m.Cursor != "" {
		cursorStr = theme.StyleDimmed.Render("cursor: " + m.Cursor)
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + counts + sep + cursorStr

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
