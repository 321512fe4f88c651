// Package app is the scanwatch event loop: a Bubble Tea model that
// serializes inbound status batches, liveness probes, and refresh ticks
// into a single dispatcher owning the scan registry and the resume
// cursor. The registry needs no locking because nothing outside Update
// ever touches it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zozs/scan-stream/internal/client"
	"github.com/zozs/scan-stream/internal/config"
	"github.com/zozs/scan-stream/internal/scan"
	"github.com/zozs/scan-stream/internal/theme"
	"github.com/zozs/scan-stream/internal/views/board"
	"github.com/zozs/scan-stream/internal/views/eventlog"
	"github.com/zozs/scan-stream/internal/views/status"
)

// --- messages ---

// connectedMsg reports a successfully opened stream.
type connectedMsg struct{ stream *client.Stream }

// connectFailedMsg reports a failed subscription attempt; the next probe
// retries.
type connectFailedMsg struct{ err error }

// batchMsg delivers one decoded notification batch. It carries the stream
// it came from so batches read off a replaced connection are discarded.
type batchMsg struct {
	stream *client.Stream
	batch  client.Batch
}

// decodeFailedMsg reports a batch that could not be decoded; it is
// dropped and reading continues.
type decodeFailedMsg struct {
	stream *client.Stream
	err    error
}

// streamClosedMsg reports that a stream's delivery channel closed.
type streamClosedMsg struct{ stream *client.Stream }

// probeMsg is the periodic liveness check.
type probeMsg time.Time

// refreshMsg is the periodic render heartbeat for elapsed durations.
type refreshMsg time.Time

// Model is the root Bubble Tea model.
type Model struct {
	cfg    config.WatchConfig
	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	// Scan state, exclusively owned by Update.
	registry *scan.Registry
	// Resume cursor: position of the last successfully decoded batch.
	lastEventID string

	stream    *client.Stream
	connected bool

	now     time.Time
	showLog bool

	statusBar status.Model
	board     board.Model
	log       eventlog.Model
}

// New creates the root model.
func New(cfg config.WatchConfig) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		registry:  scan.NewRegistry(),
		now:       time.Now(),
		statusBar: status.New(),
		board:     board.New(),
		log:       eventlog.New(),
	}
}

// Init opens the initial subscription (no resume cursor yet) and arms
// both periodic ticks.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.connect(), m.probeTick(), m.refreshTick())
}

// --- commands ---

// connect opens a subscription carrying the current resume cursor.
func (m Model) connect() tea.Cmd {
	ctx := m.ctx
	cfg := client.Config{URL: m.cfg.URL, Token: m.cfg.Token, Cookie: m.cfg.Cookie}
	cursor := m.lastEventID
	return func() tea.Msg {
		s, err := client.Open(ctx, cfg, cursor)
		if err != nil {
			return connectFailedMsg{err: err}
		}
		return connectedMsg{stream: s}
	}
}

// waitForBatch blocks on the stream's delivery channel and decodes the
// next event. Update re-issues it after handling each message, so at most
// one read is in flight per stream.
func (m Model) waitForBatch(s *client.Stream) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-s.Events()
		if !ok {
			return streamClosedMsg{stream: s}
		}
		b, err := client.DecodeBatch([]byte(ev.Data), ev.ID)
		if err != nil {
			return decodeFailedMsg{stream: s, err: err}
		}
		return batchMsg{stream: s, batch: b}
	}
}

func (m Model) probeTick() tea.Cmd {
	return tea.Tick(m.cfg.ProbeInterval, func(t time.Time) tea.Msg {
		return probeMsg(t)
	})
}

func (m Model) refreshTick() tea.Cmd {
	return tea.Tick(m.cfg.RefreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.board.Width = msg.Width
		m.board.Height = msg.Height - 6
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connectedMsg:
		// Overlapping connect attempts can both succeed; only one
		// subscription may stay live, so the older one is dropped here.
		if m.stream != nil {
			m.stream.Close()
		}
		m.stream = msg.stream
		m.connected = true
		m.statusBar.Connected = true
		m.log.Add(eventlog.Info, "subscribed to scan feed")
		return m, m.waitForBatch(msg.stream)

	case connectFailedMsg:
		m.connected = false
		m.statusBar.Connected = false
		m.log.Add(eventlog.Warn, fmt.Sprintf("subscribe failed: %v", msg.err))
		return m, nil

	case batchMsg:
		if msg.stream != m.stream {
			// Read off a replaced connection; the new one owns delivery.
			return m, nil
		}
		m.applyBatch(msg.batch)
		return m, m.waitForBatch(msg.stream)

	case decodeFailedMsg:
		if msg.stream != m.stream {
			return m, nil
		}
		m.log.Add(eventlog.Warn, fmt.Sprintf("dropping batch: %v", msg.err))
		return m, m.waitForBatch(msg.stream)

	case streamClosedMsg:
		if msg.stream != m.stream {
			return m, nil
		}
		m.stream.Close()
		m.stream = nil
		m.connected = false
		m.statusBar.Connected = false
		m.log.Add(eventlog.Warn, "scan feed stream closed")
		return m, nil

	case probeMsg:
		cmd := m.probe()
		return m, tea.Batch(m.probeTick(), cmd)

	case refreshMsg:
		m.now = time.Time(msg)
		return m, m.refreshTick()
	}

	return m, nil
}

// probe is the reconnection supervisor step: level-triggered, replacing
// the connection whenever it is absent or no longer live. The old
// connection is closed before the new one opens, so only one delivers at
// any time.
func (m *Model) probe() tea.Cmd {
	if m.stream != nil && m.stream.IsLive() {
		return nil
	}
	m.log.Add(eventlog.Warn, "scan feed connection lost, reconnecting")
	return m.reconnect()
}

// reconnect discards any current connection and opens a replacement
// seeded with the last resume cursor.
func (m *Model) reconnect() tea.Cmd {
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
	m.connected = false
	m.statusBar.Connected = false
	return m.connect()
}

// applyBatch folds a decoded batch into the registry and advances the
// resume cursor. The cursor moves for every decoded batch, whether or not
// individual updates were accepted.
func (m *Model) applyBatch(b client.Batch) {
	now := time.Now()
	for _, u := range b.Updates {
		res := m.registry.Apply(now, u)
		switch res.Outcome {
		case scan.OutcomeRejected:
			m.log.Add(eventlog.Warn, fmt.Sprintf(
				"scan %d: ignoring %s, already %s", res.ScanID, res.Incoming, res.Current))
		case scan.OutcomeDuplicate:
			m.log.Add(eventlog.Info, fmt.Sprintf("scan %d: duplicate %s", res.ScanID, res.Incoming))
		default:
			m.log.Add(eventlog.Info, fmt.Sprintf(
				"scan %d: %s (event %s)", res.ScanID, res.Current, b.Cursor))
		}
	}

	m.lastEventID = b.Cursor
	m.statusBar.Cursor = b.Cursor
	m.board.SetScans(m.registry.Snapshot())
	m.statusBar.SetCounts(m.registry.Counts())
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showLog {
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Log):
			m.showLog = false
		case key.Matches(msg, m.keys.Up):
			m.log.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.log.ScrollDown(1)
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Down):
		m.board.ScrollDown(1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.board.ScrollUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Log):
		m.showLog = true
		return m, nil

	case key.Matches(msg, m.keys.Reconnect):
		m.log.Add(eventlog.Info, "manual reconnect requested")
		cmd := m.reconnect()
		return m, cmd
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.stream != nil {
		m.stream.Close()
	}
	m.cancel()
	return m, tea.Quit
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.showLog {
		return m.log.View(m.width, m.height)
	}

	sections := []string{
		m.statusBar.View(),
		m.board.View(m.now),
		theme.StyleDimmed.Render("  j/k:scroll  d:event log  r:reconnect  q:quit"),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
