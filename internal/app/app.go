// Package app wires the stream session, the published stores, and the
// REST client into the root Bubble Tea model. The model is read-only
// over the stores: all folding happens on the stream side.
package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dwilliams27/gc-decomp/internal/client"
	"github.com/dwilliams27/gc-decomp/internal/eventlog"
	"github.com/dwilliams27/gc-decomp/internal/theme"
	"github.com/dwilliams27/gc-decomp/internal/views/dashboard"
	"github.com/dwilliams27/gc-decomp/internal/views/debug"
	"github.com/dwilliams27/gc-decomp/internal/views/detail"
	"github.com/dwilliams27/gc-decomp/internal/views/status"
	"github.com/dwilliams27/gc-decomp/internal/worker"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDetail
	OverlayEvents
)

// streamUpdateMsg signals that the session applied an event or changed
// connection state.
type streamUpdateMsg struct{}

// batchActionMsg reports the outcome of a batch start/cancel call.
type batchActionMsg struct {
	action string
	err    error
}

// Model is the root Bubble Tea model.
type Model struct {
	session *client.Session
	log     *eventlog.Log
	agg     *worker.Aggregator
	http    *client.HTTPClient

	keys   KeyMap
	width  int
	height int

	selectedIdx int
	overlay     Overlay
	flash       string

	statusBar status.Model
	dashboard dashboard.Model
	eventView debug.Model
}

// New creates the root model.
func New(session *client.Session, lg *eventlog.Log, agg *worker.Aggregator, httpClient *client.HTTPClient) Model {
	return Model{
		session:   session,
		log:       lg,
		agg:       agg,
		http:      httpClient,
		keys:      DefaultKeyMap(),
		statusBar: status.New(),
		dashboard: dashboard.New(),
		eventView: debug.New(),
	}
}

// Init opens the stream and starts waiting for updates.
func (m Model) Init() tea.Cmd {
	m.session.Connect()
	return waitForUpdate(m.session)
}

// waitForUpdate blocks on the session's coalescing notify channel.
func waitForUpdate(s *client.Session) tea.Cmd {
	return func() tea.Msg {
		<-s.Notify()
		return streamUpdateMsg{}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.dashboard.Width = msg.Width
		m.dashboard.Height = msg.Height
		return m, nil

	case streamUpdateMsg:
		m.refreshCounts()
		m.clampSelection()
		return m, waitForUpdate(m.session)

	case batchActionMsg:
		if msg.err != nil {
			m.flash = msg.action + " failed: " + msg.err.Error()
		} else {
			m.flash = msg.action + " requested"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.session.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		m.overlay = OverlayNone
		m.flash = ""
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.overlay == OverlayEvents {
			m.eventView.ScrollUp(1, m.log.Len())
		} else if m.selectedIdx > 0 {
			m.selectedIdx--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.overlay == OverlayEvents {
			m.eventView.ScrollDown(1)
		} else if m.selectedIdx < m.agg.Len()-1 {
			m.selectedIdx++
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if m.overlay == OverlayNone && m.agg.Len() > 0 {
			m.overlay = OverlayDetail
		}
		return m, nil

	case key.Matches(msg, m.keys.Events):
		if m.overlay == OverlayEvents {
			m.overlay = OverlayNone
		} else {
			m.overlay = OverlayEvents
			m.eventView = debug.New()
		}
		return m, nil

	case key.Matches(msg, m.keys.StartBatch):
		return m, m.batchCmd("batch start", func() error {
			return m.http.StartBatch(client.BatchStartRequest{Limit: 50, Strategy: "smallest_first"})
		})

	case key.Matches(msg, m.keys.CancelBatch):
		return m, m.batchCmd("batch cancel", func() error {
			return m.http.CancelBatch()
		})

	case key.Matches(msg, m.keys.Reset):
		m.agg.Reset()
		m.selectedIdx = 0
		m.refreshCounts()
		return m, nil
	}
	return m, nil
}

func (m Model) batchCmd(action string, call func() error) tea.Cmd {
	return func() tea.Msg {
		return batchActionMsg{action: action, err: call()}
	}
}

func (m *Model) refreshCounts() {
	m.statusBar.State = m.session.State().String()
	m.statusBar.Active, m.statusBar.Matched, m.statusBar.Failed, m.statusBar.Crashed = 0, 0, 0, 0
	for _, rec := range m.agg.All() {
		switch rec.Status {
		case worker.Matched:
			m.statusBar.Matched++
		case worker.Failed:
			m.statusBar.Failed++
		case worker.Crashed:
			m.statusBar.Crashed++
		default:
			m.statusBar.Active++
		}
	}
}

func (m *Model) clampSelection() {
	if n := m.agg.Len(); m.selectedIdx >= n {
		m.selectedIdx = n - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
}

// selectedRecord returns the worker under the cursor, if any.
func (m Model) selectedRecord() *worker.Record {
	records := m.agg.All()
	if m.selectedIdx < 0 || m.selectedIdx >= len(records) {
		return nil
	}
	return records[m.selectedIdx]
}

// View renders the console.
func (m Model) View() string {
	switch m.overlay {
	case OverlayEvents:
		return m.eventView.View(m.log.Events(), m.log.Connected(), m.width, m.height)
	case OverlayDetail:
		if rec := m.selectedRecord(); rec != nil {
			return detail.View(rec, m.width)
		}
	}

	m.dashboard.Selected = m.selectedIdx
	body := m.dashboard.View(m.agg.All())

	parts := []string{m.statusBar.View(), body}
	if m.flash != "" {
		parts = append(parts, theme.StyleDimmed.Render("  "+m.flash))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
