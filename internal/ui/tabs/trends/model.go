// Package trends provides the trends tab: week-over-week comparison, the
// last four weeks and the persisted daily history.
package trends

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hackdash/internal/app"
	"github.com/j-veylop/hackdash/internal/models"
	"github.com/j-veylop/hackdash/internal/services"
)

// keyMap defines the key bindings specific to the trends tab.
type keyMap struct {
	ToggleRange key.Binding
	Up          key.Binding
	Down        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle history range"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// historyLoadedMsg carries persisted history for one range.
type historyLoadedMsg struct {
	history *models.DailyHistory
}

type historyErrorMsg struct {
	err string
}

// Model represents the trends tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	keys     keyMap
	viewport viewport.Model

	historyRange models.HistoryRange
	history      *models.DailyHistory
	loading      bool
	errorMsg     string

	width  int
	height int
}

// New creates a new trends model. svc may be nil in tests.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:        state,
		services:     svc,
		keys:         defaultKeyMap(),
		viewport:     viewport.New(0, 0),
		historyRange: models.HistoryRange30Days,
	}
}

// Init loads the persisted history.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.loadHistoryCmd()
}

func (m *Model) loadHistoryCmd() tea.Cmd {
	svc := m.services
	r := m.historyRange
	return func() tea.Msg {
		if svc == nil {
			return historyErrorMsg{err: "Services not initialized"}
		}
		hist, err := svc.DailyHistory(r)
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}
		return historyLoadedMsg{history: hist}
	}
}

func (m *Model) reload() tea.Cmd {
	m.loading = true
	return m.loadHistoryCmd()
}

// Update handles messages for the trends tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case historyLoadedMsg:
		// A range toggle can race an older load.
		if msg.history != nil && msg.history.Range != m.historyRange {
			return m, nil
		}
		m.history = msg.history
		m.loading = false
		m.errorMsg = ""

	case historyErrorMsg:
		m.loading = false
		m.errorMsg = msg.err
		cmds = append(cmds, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("History error: %s", msg.err),
				Duration: app.LongNotificationDuration,
			}
		})

	// Each successful run writes the daily buckets to history.
	case app.StatsUpdatedMsg:
		cmds = append(cmds, m.reload())

	case app.StatsRefreshedMsg:
		if msg.Error == nil {
			cmds = append(cmds, m.reload())
		}

	case app.IdentityChangedMsg:
		m.history = nil
		cmds = append(cmds, m.reload())

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.ToggleRange) {
		m.historyRange = m.historyRange.Next()
		return m.reload()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

// SetSize sets the available size for the trends tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleRange}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange},
		{m.keys.Up, m.keys.Down},
	}
}
