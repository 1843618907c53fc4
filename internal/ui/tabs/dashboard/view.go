package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hackdash/internal/models"
	"github.com/j-veylop/hackdash/internal/ui/components"
	"github.com/j-veylop/hackdash/internal/ui/styles"
	"github.com/j-veylop/hackdash/internal/usage"
)

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.spinner.Centered(m.width, m.height)
	}

	var content string
	snap := m.state.GetSnapshot()
	switch {
	case m.state.GetUserID() == "" || m.input.Focused():
		content = m.renderIdentityPrompt()
	case snap == nil && m.state.GetStatsError() != nil:
		content = m.renderErrorPanel(m.state.GetStatsError())
	case snap == nil:
		content = m.renderFetching()
	default:
		content = m.renderStats(snap)
	}

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderIdentityPrompt() string {
	rows := []string{
		styles.TitleStyle.Render("hackdash"),
		styles.HelpStyle.Render("Hackatime coding stats in your terminal"),
		"",
		"Enter your Slack member ID to start tracking.",
		styles.HelpStyle.Render("Slack: profile › ⋮ › Copy member ID"),
		"",
		styles.FocusedBorderStyle.Render(m.input.View()),
	}
	if m.input.Err != nil {
		rows = append(rows, styles.ErrorTextStyle.Render(m.input.Err.Error()))
	}
	if m.input.Focused() {
		rows = append(rows, "", styles.HelpStyle.Render("enter save • esc cancel"))
	} else {
		rows = append(rows, "", styles.HelpStyle.Render("press i to type your Slack ID"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderErrorPanel(err error) string {
	rows := []string{
		styles.ErrorTextStyle.Bold(true).Render("Couldn't load your stats"),
		"",
		err.Error(),
		"",
		styles.HelpStyle.Render("Press r to retry."),
	}
	return styles.ErrorPanelStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderFetching() string {
	rows := []string{
		styles.TitleStyle.Render("Fetching your stats"),
		styles.HelpStyle.Render("Querying Hackatime for " + m.state.GetUserID()),
		"",
		components.RenderLoadingBar(m.cardWidth()-8, m.frame),
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderStats(snap *models.Snapshot) string {
	sections := []string{
		m.renderWelcome(snap),
		m.renderCards(snap),
		m.renderGoal(snap),
		m.renderDailyChart(snap),
		m.renderMonthlyChart(snap),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderWelcome(snap *models.Snapshot) string {
	name := snap.Username()
	if name == "" {
		name = m.state.GetUserID()
	}

	welcome := lipgloss.JoinHorizontal(lipgloss.Bottom,
		styles.HelpStyle.Render("welcome back, "),
		styles.TitleStyle.UnsetMarginBottom().Render(name),
	)

	status := styles.HelpStyle.Render("updated " + formatAge(snap.Age(m.now())))
	if m.state.IsLoading("stats") {
		status = m.spinner.Status(true, m.state.IsLoading("feed"))
	} else if err := m.state.GetStatsError(); err != nil {
		status = styles.WarningTextStyle.Render("showing cached stats, last refresh failed (r to retry)")
	}

	return lipgloss.JoinVertical(lipgloss.Left, welcome, status, "")
}

func statCard(value, label string) string {
	return styles.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.StatValueStyle.Render(value),
		styles.StatLabelStyle.Render(label),
	))
}

func (m *Model) renderCards(snap *models.Snapshot) string {
	streak := usage.Streak(snap.Daily)
	change := usage.WeekOverWeekChange(snap.Daily)

	changeStr := styles.GetChangeStyle(change).Render(fmt.Sprintf("%+d%%", change))

	cards := []string{
		statCard(fmt.Sprintf("🔥 %d days", streak), "streak"),
		statCard(fmt.Sprintf("%.1fh", usage.TodayHours(snap.Today)), "hours coded today"),
		statCard(changeStr, "vs last week"),
		statCard(usage.FavoriteLanguage(snap.AllTime), "favorite language"),
		statCard(fmt.Sprintf("%dh", usage.AllTimeHours(snap.AllTime)), "all time"),
	}

	// Five cards need about 90 columns; stack them in two rows below that.
	if m.width < 96 {
		top := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], " ", cards[1], " ", cards[2])
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], " ", cards[4])
		return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	}

	row := make([]string, 0, 2*len(cards))
	for i, c := range cards {
		if i > 0 {
			row = append(row, " ")
		}
		row = append(row, c)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, row...)
}

func (m *Model) renderGoal(snap *models.Snapshot) string {
	if m.goal <= 0 {
		return ""
	}
	title := styles.CardTitleStyle.Render("Daily Goal")
	bar := m.goalBar.View(usage.TodayHours(snap.Today), m.goal, m.cardWidth()-6)
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, title, bar))
}

func (m *Model) renderDailyChart(snap *models.Snapshot) string {
	days := usage.LastDays(snap.Daily, 7)
	bars := make([]components.Bar, 0, len(days))
	for _, d := range days {
		label := d.Date
		if day := d.Day(time.Local); !day.IsZero() {
			label = day.Format("Mon 1/2")
		}
		bars = append(bars, components.Bar{Label: label, Value: d.Hours, Failed: d.Failed})
	}

	title := styles.CardTitleStyle.Render("Last 7 Days Activity")
	total := styles.HelpStyle.Render(fmt.Sprintf("%.1fh this week", usage.WeekTotal(snap.Daily)))
	if fortnight := usage.LastDays(snap.Daily, 14); len(fortnight) > 7 {
		values := make([]float64, len(fortnight))
		for i, d := range fortnight {
			values[i] = d.Hours
		}
		total += styles.HelpStyle.Render("  •  14 days ") +
			styles.InfoTextStyle.Render(components.RenderSparkline(values, len(values)))
	}
	chart := components.RenderBarChart(bars, m.cardWidth()-6, components.ChartBarColor)

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, chart, "", total),
	)
}

func (m *Model) renderMonthlyChart(snap *models.Snapshot) string {
	bars := make([]components.Bar, 0, len(snap.Monthly))
	for _, mo := range snap.Monthly {
		bars = append(bars, components.Bar{Label: mo.Label, Value: mo.Hours, Failed: mo.Failed})
	}

	title := styles.CardTitleStyle.Render("Last 3 Months Activity")
	chart := components.RenderBarChart(bars, m.cardWidth()-6, components.ChartCurrentColor)

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, title, chart))
}

// formatAge renders a snapshot age the way a status line reads it.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
