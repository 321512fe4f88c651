// Package eventlog provides a scrollable diagnostics overlay: connection
// loss, decode failures, and rejected transitions all land here as
// severity + message pairs.
package eventlog

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/zozs/scan-stream/internal/theme"
)

const maxEntries = 200

// Severity levels for log entries.
const (
	Info = "info"
	Warn = "warn"
	Err  = "err"
)

// Entry is a single diagnostic line.
type Entry struct {
	Time     time.Time
	Severity string
	Message  string
}

// Model holds the diagnostics log state. Entries are appended in arrival
// order and rendered newest first, like the scan board.
type Model struct {
	Entries []Entry
	Offset  int // how many of the newest entries are scrolled past
}

// New creates an empty log model.
func New() Model {
	return Model{}
}

// Add appends an entry, caps the buffer, and snaps the viewport back to
// the newest entry.
func (m *Model) Add(severity, message string) {
	m.Entries = append(m.Entries, Entry{
		Time:     time.Now(),
		Severity: severity,
		Message:  message,
	})
	if len(m.Entries) > maxEntries {
		m.Entries = m.Entries[len(m.Entries)-maxEntries:]
	}
	m.Offset = 0
}

// ScrollDown moves the viewport toward older entries.
func (m *Model) ScrollDown(n int) {
	m.Offset += n
	if max := len(m.Entries) - 1; m.Offset > max {
		m.Offset = max
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}

// ScrollUp moves the viewport back toward the newest entry.
func (m *Model) ScrollUp(n int) {
	m.Offset -= n
	if m.Offset < 0 {
		m.Offset = 0
	}
}

// View renders the overlay panel.
func (m Model) View(width, height int) string {
	w := width - 6
	if w < 24 {
		w = 24
	}
	rows := height - 7
	if rows < 4 {
		rows = 4
	}

	frame := lipgloss.NewStyle().
		Width(w).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder)

	var warns int
	for _, e := range m.Entries {
		if e.Severity != Info {
			warns++
		}
	}
	header := theme.StyleHeader.Render("Diagnostics") +
		theme.StyleDimmed.Render(fmt.Sprintf("  %d entries, %d warnings", len(m.Entries), warns))
	footer := theme.StyleDimmed.Render("j:older  k:newer  esc:close")

	if len(m.Entries) == 0 {
		return frame.Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			theme.StyleDimmed.Render("nothing recorded"),
			footer))
	}

	newest := len(m.Entries) - 1 - m.Offset
	row := lipgloss.NewStyle().MaxWidth(w - 2)

	lines := []string{header}
	for i := newest; i >= 0 && len(lines) <= rows; i-- {
		e := m.Entries[i]
		sev := lipgloss.NewStyle().
			Foreground(severityColor(e.Severity)).
			Render(fmt.Sprintf("%-4s", e.Severity))
		lines = append(lines, row.Render(
			fmt.Sprintf("%s %s %s", e.Time.Format("15:04:05"), sev, e.Message)))
	}
	if hidden := newest - rows + 1; hidden > 0 {
		lines = append(lines, theme.StyleDimmed.Render(fmt.Sprintf("%d older below", hidden)))
	}
	lines = append(lines, footer)

	return frame.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func severityColor(severity string) lipgloss.Color {
	switch severity {
	case Err:
		return theme.ColorDanger
	case Warn:
		return theme.ColorWarning
	default:
		return theme.ColorDimmed
	}
}
