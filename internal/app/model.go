// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/hackdash/internal/services"
	"github.com/j-veylop/hackdash/internal/ui/styles"
	"github.com/j-veylop/hackdash/internal/usage"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabDashboard is the ID for the dashboard tab.
	TabDashboard TabID = iota
	// TabTrends is the ID for the trends tab.
	TabTrends
	// TabFeed is the ID for the program feed tab.
	TabFeed
	// TabInfo is the ID for the info tab.
	TabInfo

	tabCount = 4
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabDashboard:
		return "Dashboard"
	case TabTrends:
		return "Trends"
	case TabFeed:
		return "Feed"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs with a text field. While it reports
// true, keys go to the tab instead of the global bindings.
type InputCapturer interface {
	CapturesInput() bool
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Tab4    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Escape  key.Binding
	Home    key.Binding
	End     key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	km = setNavigationKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "trends"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "feed"))
	k.Tab4 = key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "info"))
	k.NextTab = key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab/→", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab/←", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	return k
}

func setNavigationKeys(k KeyMap) KeyMap {
	k.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	k.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	k.Enter = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	k.Home = key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "go to top"))
	k.End = key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "go to bottom"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.NextTab, k.PrevTab},
		{k.Up, k.Down, k.Home, k.End},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content lipgloss.Style
	Spinner lipgloss.Style
	Toast   lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(styles.Subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(styles.Subtle).Padding(0, 2)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(styles.Success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(styles.Error).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(styles.Warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(styles.Info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Spinner = lipgloss.NewStyle().Foreground(styles.Primary)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(styles.Primary)
	s.Subtle = lipgloss.NewStyle().Foreground(styles.Subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(styles.Primary)

	return s
}

// Model is the main application model.
type Model struct {
	// Tab management
	activeTab TabID
	tabs      []Tab
	tabNames  []string

	// Shared state
	state    *State
	services *services.Manager
	commands *Commands
	keymap   KeyMap
	styles   Styles

	spinner spinner.Model

	width  int
	height int

	showHelp bool
	ready    bool

	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		activeTab: TabDashboard,
		tabNames:  []string{"Dashboard", "Trends", "Feed", "Info"},
		tabs:      make([]Tab, tabCount), // set by SetTabs
		state:     NewState(),
		services:  mgr,
		commands:  NewCommands(mgr),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services))
		cmds = append(cmds, loadCacheCmd(m.services))
		cmds = append(cmds, startServicesCmd(m.services))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.activeCapturesInput() && msg.String() != "ctrl+c" {
			return m, m.updateActiveTab(msg)
		}
		if cmd := m.handleKeyMsg(msg); cmd != nil {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	default:
		if appCmds := m.handleAppMsg(msg); len(appCmds) > 0 {
			cmds = append(cmds, appCmds...)
		}
	}

	if isDataMsg(msg) {
		cmds = append(cmds, m.updateAllTabs(msg)...)
	} else if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// isDataMsg reports whether msg changes shared data, so inactive tabs must
// see it too.
func isDataMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case CacheLoadedMsg, StatsUpdatedMsg, StatsRefreshedMsg, FeedUpdatedMsg,
		FeedRefreshedMsg, IdentityChangedMsg, tea.WindowSizeMsg:
		return true
	}
	return false
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event))
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case CacheLoadedMsg:
		m.handleCacheLoaded(msg)
	case StatsRefreshedMsg:
		cmds = append(cmds, m.handleStatsRefreshed(msg))
	case FeedRefreshedMsg:
		m.handleFeedRefreshed(msg)
	case SetSlackIDMsg:
		if m.services != nil {
			cmds = append(cmds, setSlackIDCmd(m.services, msg.SlackID))
		}
	case SetSlackIDResultMsg:
		cmds = append(cmds, m.handleSetSlackIDResult(msg))
	case ClearIdentityMsg:
		if m.services != nil {
			cmds = append(cmds, clearIdentityCmd(m.services))
		}
	case CopyToClipboardMsg:
		cmds = append(cmds, m.commands.CopyToClipboard(msg.Text))
	case ClipboardResultMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Copy failed: %v", msg.Error)))
		} else {
			cmds = append(cmds, notifyInfoCmd("Link copied"))
		}
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
		m.state.SetLoadingNotification("Refreshing...")
	case StopLoadingMsg:
		m.stopLoading(msg.Resource)
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("[%s] %v", msg.Context, msg.Error)))
	case RefreshMsg:
		cmds = append(cmds, m.handleRefresh(msg))
	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) stopLoading(resource string) {
	m.state.SetLoading(resource, false)
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) handleCacheLoaded(msg CacheLoadedMsg) {
	m.state.SetIdentity(msg.UserID, msg.Identity)
	if msg.Snapshot != nil {
		m.state.SetSnapshot(msg.Snapshot)
	}
	if len(msg.Feed) > 0 {
		m.state.SetFeedItems(msg.Feed)
	}
	m.stopLoading("initial")
}

func (m *Model) handleStatsRefreshed(msg StatsRefreshedMsg) tea.Cmd {
	m.stopLoading("stats")
	if msg.Error == nil {
		m.state.SetSnapshot(msg.Snapshot)
		return nil
	}
	// Other failures arrive as an ErrorEvent from the manager.
	switch {
	case errors.Is(msg.Error, usage.ErrIdentityRequired):
		return notifyWarningCmd("Enter your Slack ID on the dashboard first")
	case errors.Is(msg.Error, services.ErrIdentityChanged):
		// The run for the new identity reports on its own.
		return nil
	}
	m.state.SetStatsError(msg.Error)
	return nil
}

func (m *Model) handleFeedRefreshed(msg FeedRefreshedMsg) {
	m.stopLoading("feed")
	if msg.Error == nil {
		m.state.SetFeedItems(msg.Items)
	}
}

func (m *Model) handleSetSlackIDResult(msg SetSlackIDResultMsg) tea.Cmd {
	if msg.Error != nil {
		return notifyErrorCmd(fmt.Sprintf("Failed to save Slack ID: %v", msg.Error))
	}
	if msg.SlackID == "" {
		return notifyInfoCmd("Slack ID cleared")
	}
	return notifySuccessCmd(fmt.Sprintf("Saved Slack ID %s", msg.SlackID))
}

func (m *Model) handleRefresh(msg RefreshMsg) tea.Cmd {
	switch msg.Resource {
	case "stats":
		return m.commands.RefreshStats()
	case "feed":
		return m.commands.RefreshFeed()
	default:
		return tea.Batch(m.commands.RefreshStats(), m.commands.RefreshFeed())
	}
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.StatsRefreshingEvent:
		m.state.SetLoading("stats", true)
		m.state.SetLoadingNotification("Refreshing stats...")

	case services.StatsUpdatedEvent:
		m.state.SetSnapshot(e.Snapshot)
		m.stopLoading("stats")
		return func() tea.Msg { return StatsUpdatedMsg{Snapshot: e.Snapshot} }

	case services.FeedUpdatedEvent:
		m.state.SetFeedItems(e.Items)
		return func() tea.Msg { return FeedUpdatedMsg{Items: e.Items} }

	case services.IdentityChangedEvent:
		m.state.SetIdentity(e.UserID, e.Identity)
		cmds := []tea.Cmd{func() tea.Msg {
			return IdentityChangedMsg{Identity: e.Identity, UserID: e.UserID}
		}}
		if e.UserID != "" {
			cmds = append(cmds, notifyInfoCmd(fmt.Sprintf("Tracking %s", e.Identity.DisplayName())))
		}
		return tea.Batch(cmds...)

	case services.ErrorEvent:
		if e.Service == "stats" {
			m.state.SetStatsError(e.Error)
			m.stopLoading("stats")
		}
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

func (m *Model) activeTabModel() Tab {
	if int(m.activeTab) < len(m.tabs) {
		return m.tabs[m.activeTab]
	}
	return nil
}

func (m *Model) activeCapturesInput() bool {
	c, ok := m.activeTabModel().(InputCapturer)
	return ok && c.CapturesInput()
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	tab := m.activeTabModel()
	if tab == nil {
		return nil
	}
	var cmd tea.Cmd
	m.tabs[m.activeTab], cmd = tab.Update(msg)
	return cmd
}

func (m *Model) updateAllTabs(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for i, tab := range m.tabs {
		if tab == nil {
			continue
		}
		var cmd tea.Cmd
		m.tabs[i], cmd = tab.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-5)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) switchTab(id TabID) {
	m.activeTab = id
	m.updateTabSizes()
}

// handleKeyMsg handles global keys. A nil result lets the active tab see
// the key.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return noop

	case key.Matches(msg, m.keymap.Escape):
		if m.showHelp {
			m.showHelp = false
			return noop
		}
		return nil
	}

	if m.showHelp {
		return noop
	}

	switch {
	case key.Matches(msg, m.keymap.Tab1):
		m.switchTab(TabDashboard)
	case key.Matches(msg, m.keymap.Tab2):
		m.switchTab(TabTrends)
	case key.Matches(msg, m.keymap.Tab3):
		m.switchTab(TabFeed)
	case key.Matches(msg, m.keymap.Tab4):
		m.switchTab(TabInfo)
	case key.Matches(msg, m.keymap.NextTab):
		m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs)))
	case key.Matches(msg, m.keymap.PrevTab):
		m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs)))
	case key.Matches(msg, m.keymap.Refresh):
		resource := "stats"
		if m.activeTab == TabFeed {
			resource = "feed"
		}
		return func() tea.Msg { return RefreshMsg{Resource: resource} }
	default:
		return nil
	}
	return noop
}

// noop marks a key as consumed by the root model.
func noop() tea.Msg { return nil }

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if tab := m.activeTabModel(); tab != nil {
		b.WriteString(tab.View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := lipgloss.Width(overlay)
	y := max(0, (m.height-len(overlayLines))/2)
	x := max(0, (m.width-overlayWidth)/2)

	for len(mainLines) < y+len(overlayLines) {
		mainLines = append(mainLines, "")
	}

	for i, overlayLine := range overlayLines {
		mainLine := mainLines[y+i]

		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")
		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}

		mainLines[y+i] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	tabs := make([]string, 0, len(m.tabNames)+1)

	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	if id := m.state.GetIdentity(); m.state.GetUserID() != "" {
		tabs = append(tabs, m.styles.Subtle.Render("  "+id.DisplayName()))
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	startX := max(m.width-lipgloss.Width(toastStack)-2, 0)
	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		if w := lipgloss.Width(mainLine); w < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-w) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	lines := []string{
		m.styles.Title.Render("Keyboard Shortcuts"),
		"",
		m.styles.Highlight.Render("Navigation"),
		"  1-4        Switch tabs",
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"",
		m.styles.Highlight.Render("Actions"),
		"  r          Refresh stats (feed on the Feed tab)",
		"  ?          Toggle help",
		"  q/Ctrl+C   Quit",
		"",
	}

	if tab := m.activeTabModel(); tab != nil {
		if tabHelp := tab.ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.tabNames[m.activeTab])))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.tabNames[m.activeTab],
		m.styles.Subtle.Render("This tab is not available."),
	)
	return m.styles.Content.Render(content)
}
