// Package dashboard provides the main dashboard tab: headline coding stats
// and the 7-day and 3-month activity charts.
package dashboard

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hackdash/internal/app"
	"github.com/j-veylop/hackdash/internal/ui/components"
	"github.com/j-veylop/hackdash/internal/usage"
)

// keyMap defines the key bindings specific to the dashboard tab.
type keyMap struct {
	EditID  key.Binding
	ClearID key.Binding
	Submit  key.Binding
	Cancel  key.Binding
	Refresh key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		EditID: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "enter slack id"),
		),
		ClearID: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "forget slack id"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh / retry"),
		),
	}
}

var errSlackIDFormat = errors.New("slack IDs are letters and digits, like U01ABC23DEF")

// validateSlackID accepts partial input while typing.
func validateSlackID(s string) error {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return errSlackIDFormat
		}
	}
	return nil
}

// Model represents the dashboard tab state.
type Model struct {
	state    *app.State
	keys     keyMap
	spinner  components.ActivitySpinner
	goalBar  components.GoalBar
	input    textinput.Model
	viewport viewport.Model
	now      func() time.Time
	goal     float64
	width    int
	height   int
	frame    int
}

// New creates a new dashboard model. goal is the daily target in hours.
func New(state *app.State, goal float64) *Model {
	ti := textinput.New()
	ti.Placeholder = "U01ABC23DEF"
	ti.CharLimit = 32
	ti.Width = 24
	ti.Prompt = "Slack ID › "
	ti.Validate = validateSlackID

	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		spinner:  components.NewActivitySpinner("Loading cached stats..."),
		goalBar:  components.NewGoalBar(),
		input:    ti,
		viewport: viewport.New(0, 0),
		now:      time.Now,
		goal:     goal,
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// CapturesInput reports whether the Slack ID field has focus.
func (m *Model) CapturesInput() bool {
	return m.input.Focused()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.CacheLoadedMsg, app.IdentityChangedMsg:
		cmds = append(cmds, m.syncIdentity(), m.syncGoal())

	case app.StatsUpdatedMsg, app.StatsRefreshedMsg:
		cmds = append(cmds, m.syncGoal())

	case components.AnimationTickMsg:
		var cmd tea.Cmd
		m.goalBar, cmd = m.goalBar.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		m.frame++
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))
	}

	return m, tea.Batch(cmds...)
}

// syncIdentity opens the Slack ID prompt when there is no user to track.
func (m *Model) syncIdentity() tea.Cmd {
	if m.state.GetUserID() == "" {
		return m.input.Focus()
	}
	m.input.Blur()
	m.input.Reset()
	return nil
}

func (m *Model) syncGoal() tea.Cmd {
	snap := m.state.GetSnapshot()
	if snap == nil || m.goal <= 0 {
		return m.goalBar.SetPercent(0)
	}
	return m.goalBar.SetPercent(usage.TodayHours(snap.Today) / m.goal * 100)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.input.Focused() {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.EditID):
		m.input.SetValue(m.state.GetUserID())
		m.input.CursorEnd()
		return m.input.Focus()

	case key.Matches(msg, m.keys.ClearID):
		if m.state.GetUserID() == "" {
			return nil
		}
		return func() tea.Msg { return app.ClearIdentityMsg{} }

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		id := strings.ToUpper(strings.TrimSpace(m.input.Value()))
		if id == "" || m.input.Err != nil {
			return nil
		}
		m.input.Blur()
		m.input.Reset()
		return func() tea.Msg { return app.SetSlackIDMsg{SlackID: id} }

	case key.Matches(msg, m.keys.Cancel):
		m.input.Blur()
		m.input.Reset()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// SetSize sets the available size for the dashboard.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.input.Focused() {
		return []key.Binding{m.keys.Submit, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Refresh, m.keys.EditID, m.keys.ClearID}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Refresh},
		{m.keys.EditID, m.keys.ClearID},
		{m.keys.Submit, m.keys.Cancel},
	}
}
