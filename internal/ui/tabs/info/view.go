package info

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hackdash/internal/ui/styles"
	"github.com/j-veylop/hackdash/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderIdentityCard(),
		m.renderConfigCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

func (m *Model) card(title string, rows ...string) string {
	all := append([]string{styles.CardTitleStyle.Render(title), ""}, rows...)
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, all...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderRow renders a label/value row.
func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(20).
		Foreground(styles.TextMuted)
	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	if value == "" {
		value = "-"
	}
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (m *Model) renderIdentityCard() string {
	userID := m.state.GetUserID()
	if userID == "" {
		return m.card("Identity", styles.HelpStyle.Render("No Slack ID yet. Enter one on the dashboard."))
	}

	id := m.state.GetIdentity()
	source := "identity file"
	if m.config != nil && m.config.SlackID != "" {
		source = "SLACK_ID"
	}

	rows := []string{
		renderRow("Slack ID", userID),
		renderRow("Name", id.Name),
		renderRow("Email", id.Email),
		renderRow("Source", source),
	}

	if u := m.statsURL(); u != "" {
		rows = append(rows, renderRow("Stats URL", u), "", styles.HelpStyle.Render("Press 'c' to copy the stats URL"))
	}

	if snap := m.state.GetSnapshot(); snap != nil {
		rows = append(rows, "", renderRow("Last refresh", snap.Timestamp.Local().Format("Jan 2 15:04:05")))
	}

	return m.card("Identity", rows...)
}

func (m *Model) renderConfigCard() string {
	if m.config == nil {
		return m.card("Configuration", styles.HelpStyle.Render("Configuration not loaded"))
	}
	c := m.config

	parallel := yesNo(c.ParallelQueries)
	if c.ParallelQueries {
		parallel += fmt.Sprintf(" (max %d)", c.MaxConcurrentQueries)
	}

	rows := []string{
		renderRow("Env File", c.EnvFile),
		renderRow("Database", c.DatabasePath),
		renderRow("Identity File", c.IdentityPath),
		renderRow("Log File", c.LogPath),
		renderRow("Log Level", c.LogLevel),
		"",
		renderRow("Hackatime API", c.HackatimeBaseURL),
		renderRow("API Key", yesNo(c.HackatimeAPIKey != "")),
		renderRow("Query Timeout", c.QueryTimeout.String()),
		renderRow("Parallel Queries", parallel),
		renderRow("Stats Refresh", c.StatsRefreshInterval.String()),
		"",
		renderRow("Feed URL", c.FeedURL),
		renderRow("Feed Refresh", c.FeedRefreshInterval.String()),
		"",
		renderRow("Daily Goal", strconv.FormatFloat(c.DailyGoalHours, 'f', -1, 64)+"h"),
		renderRow("History Kept", fmt.Sprintf("%d days", c.HistoryKeepDays)),
		renderRow("Hack Club OAuth", yesNo(c.OAuthConfigured())),
	}

	return m.card("Configuration", rows...)
}

func (m *Model) renderAboutCard() string {
	rows := []string{
		renderRow("Version", version.GetVersion()),
		renderRow("Commit", version.GetCommit()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}
	return m.card("About hackdash", rows...)
}
