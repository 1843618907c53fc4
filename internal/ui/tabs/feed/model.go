// Package feed provides the program feed tab: the You Ship, We Ship catalog
// with status badges and a detail pane.
package feed

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hackdash/internal/app"
	"github.com/j-veylop/hackdash/internal/models"
	"github.com/j-veylop/hackdash/internal/ui/styles"
)

const (
	statusColWidth    = 8
	publishedColWidth = 12
	minTitleColWidth  = 20
)

// keyMap defines the key bindings specific to the feed tab.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Copy   key.Binding
	Filter key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c", "copy link"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter by status"),
		),
	}
}

// filterOrder is the cycle of the status filter; "" shows everything.
var filterOrder = []models.FeedStatus{"", models.FeedStatusActive, models.FeedStatusDraft, models.FeedStatusEnded}

// Model represents the feed tab state.
type Model struct {
	state  *app.State
	table  table.Model
	keys   keyMap
	filter models.FeedStatus
	items  []models.FeedItem
	width  int
	height int
}

// New creates a new feed model.
func New(state *app.State) *Model {
	t := table.New(
		table.WithColumns(columns(minTitleColWidth)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	return &Model{
		state: state,
		table: t,
		keys:  defaultKeyMap(),
	}
}

func columns(titleWidth int) []table.Column {
	return []table.Column{
		{Title: "Status", Width: statusColWidth},
		{Title: "Program", Width: titleWidth},
		{Title: "Published", Width: publishedColWidth},
	}
}

// Init initializes the feed tab.
func (m *Model) Init() tea.Cmd {
	m.syncItems()
	return nil
}

// Update handles messages for the feed tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.CacheLoadedMsg, app.FeedUpdatedMsg, app.FeedRefreshedMsg:
		m.syncItems()

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Copy):
		item, ok := m.Selected()
		if !ok || item.Link == "" {
			return nil
		}
		link := item.Link
		return func() tea.Msg { return app.CopyToClipboardMsg{Text: link} }

	case key.Matches(msg, m.keys.Filter):
		m.filter = nextFilter(m.filter)
		m.syncItems()
		m.table.GotoTop()
		return nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

func nextFilter(current models.FeedStatus) models.FeedStatus {
	for i, f := range filterOrder {
		if f == current {
			return filterOrder[(i+1)%len(filterOrder)]
		}
	}
	return ""
}

// syncItems rebuilds the rows from shared state, keeping the selected
// program selected when it is still listed.
func (m *Model) syncItems() {
	var selectedLink string
	if item, ok := m.Selected(); ok {
		selectedLink = item.Link
	}

	all := m.state.GetFeedItems()
	m.items = m.items[:0]
	for _, item := range all {
		if m.filter == "" || item.Status == m.filter {
			m.items = append(m.items, item)
		}
	}

	rows := make([]table.Row, 0, len(m.items))
	cursor := 0
	for i, item := range m.items {
		if selectedLink != "" && item.Link == selectedLink {
			cursor = i
		}
		rows = append(rows, table.Row{string(item.Status), item.Title, formatPublished(item)})
	}
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(cursor)
	}
}

// Selected returns the highlighted program.
func (m *Model) Selected() (models.FeedItem, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return models.FeedItem{}, false
	}
	return m.items[i], true
}

// SetSize sets the available size for the feed tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	// Each cell carries one column of padding on both sides.
	titleWidth := max(width-6-statusColWidth-publishedColWidth-6, minTitleColWidth)
	m.table.SetColumns(columns(titleWidth))
	m.table.SetWidth(max(width-6, 0))
	m.table.SetHeight(max(height/2-2, 4))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Copy, m.keys.Filter}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Copy, m.keys.Filter},
	}
}
