// Package info provides the info tab: configuration, endpoints and build
// information.
package info

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hackdash/internal/app"
	"github.com/j-veylop/hackdash/internal/config"
	"github.com/j-veylop/hackdash/internal/services/hackatime"
)

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	Copy key.Binding
	Up   key.Binding
	Down key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy stats URL"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// Model represents the info tab state.
type Model struct {
	state    *app.State
	config   *config.Config
	client   *hackatime.Client
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model
}

// New creates a new info model. cfg may be nil.
func New(state *app.State, cfg *config.Config) *Model {
	m := &Model{
		state:    state,
		config:   cfg,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
	if cfg != nil {
		m.client = hackatime.New(hackatime.Config{BaseURL: cfg.HackatimeBaseURL})
	}
	return m
}

// Init initializes the info tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// statsURL is the all-time endpoint for the tracked user, or "".
func (m *Model) statsURL() string {
	userID := m.state.GetUserID()
	if m.client == nil || userID == "" {
		return ""
	}
	return m.client.StatsURL(userID, nil)
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Matches(keyMsg, m.keys.Copy) {
		u := m.statsURL()
		if u == "" {
			return m, nil
		}
		return m, func() tea.Msg { return app.CopyToClipboardMsg{Text: u} }
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(keyMsg)
	return m, cmd
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Copy}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Copy},
		{m.keys.Up, m.keys.Down},
	}
}
