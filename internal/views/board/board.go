// Package board renders the scan table: one row per scan with its id,
// elapsed or final duration, and a colored status tag.
package board

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/zozs/scan-stream/internal/scan"
	"github.com/zozs/scan-stream/internal/theme"
)

// Model holds the scan table state.
type Model struct {
	Scans  []scan.Scan // newest first
	Offset int         // scroll offset from the top
	Width  int
	Height int
}

// New creates an empty board model.
func New() Model {
	return Model{}
}

// SetScans replaces the rendered snapshot, clamping the scroll offset.
func (m *Model) SetScans(scans []scan.Scan) {
	m.Scans = scans
	if m.Offset >= len(scans) {
		m.Offset = 0
	}
}

// ScrollDown moves the viewport toward older scans.
func (m *Model) ScrollDown(n int) {
	m.Offset += n
	max := len(m.Scans) - 1
	if max < 0 {
		max = 0
	}
	if m.Offset > max {
		m.Offset = max
	}
}

// ScrollUp moves the viewport back toward the newest scans.
func (m *Model) ScrollUp(n int) {
	m.Offset -= n
	if m.Offset < 0 {
		m.Offset = 0
	}
}

// View renders the table with durations computed at now.
func (m Model) View(now time.Time) string {
	header := theme.StyleHeader.Render(fmt.Sprintf("  %-8s %-16s %s", "Scan", "Elapsed", "Status"))
	lines := []string{header}

	if len(m.Scans) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("  No scans observed yet"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	visible := m.Height - 1
	if visible < 1 {
		visible = len(m.Scans)
	}
	end := m.Offset + visible
	if end > len(m.Scans) {
		end = len(m.Scans)
	}

	for _, s := range m.Scans[m.Offset:end] {
		lines = append(lines, renderRow(s, now))
	}

	if end < len(m.Scans) {
		lines = append(lines, theme.StyleDimmed.Render(fmt.Sprintf("  ↓ %d more", len(m.Scans)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRow(s scan.Scan, now time.Time) string {
	tag := lipgloss.NewStyle().
		Foreground(theme.StatusColor(s.Status.String())).
		Render(s.Status.String())
	return fmt.Sprintf("  %-8d %-16s %s", s.ID, formatDuration(s.Elapsed(now)), tag)
}

// formatDuration renders whole seconds, matching the feed's granularity.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%d seconds", int(d.Seconds()))
}
