package trends

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hackdash/internal/models"
	"github.com/j-veylop/hackdash/internal/ui/components"
	"github.com/j-veylop/hackdash/internal/ui/styles"
	"github.com/j-veylop/hackdash/internal/usage"
)

// View renders the trends tab.
func (m *Model) View() string {
	snap := m.state.GetSnapshot()

	sections := []string{m.renderHeader()}
	if snap == nil {
		sections = append(sections, m.renderNoStats())
	} else {
		sections = append(sections,
			m.renderWeekComparison(snap),
			m.renderWeeklyTotals(snap),
		)
	}
	sections = append(sections,
		m.renderHistory(),
		m.renderWeeklyPattern(),
	)

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) chartWidth() int {
	return max(m.cardWidth()-12, 30)
}

func indent(block string) []string {
	var rows []string
	for line := range strings.SplitSeq(block, "\n") {
		rows = append(rows, "  "+line)
	}
	return rows
}

func (m *Model) card(icon, title string, rows ...string) string {
	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render(icon)
	all := append([]string{fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render(title))}, rows...)
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, all...))
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Trends")

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)
	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.historyRange.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	var subtitle string
	if m.history.HasData() {
		points := m.history.Points
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("History: %s → %s (%d days recorded)",
			points[0].Date.Format("Jan 2, 2006"),
			points[len(points)-1].Date.Format("Jan 2, 2006"),
			len(points),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderNoStats() string {
	msg := "Waiting for the first stats run."
	if m.state.GetUserID() == "" {
		msg = "Enter your Slack ID on the dashboard to see trends."
	}
	return m.card("📈", "This Week vs Last Week", "", styles.HelpStyle.Render(msg))
}

// renderWeekComparison overlays the last 7 days on the 7 before them.
func (m *Model) renderWeekComparison(snap *models.Snapshot) string {
	days := usage.LastDays(snap.Daily, 14)
	split := max(len(days)-7, 0)

	previous := make([]float64, 0, split)
	for _, d := range days[:split] {
		previous = append(previous, d.Hours)
	}
	current := make([]float64, 0, len(days)-split)
	for _, d := range days[split:] {
		current = append(current, d.Hours)
	}

	rows := []string{""}
	rows = append(rows, indent(components.RenderDualLineChart(current, previous, m.chartWidth(), 8,
		"Hours per day, oldest to newest"))...)

	change := usage.WeekOverWeekChange(snap.Daily)
	rows = append(rows,
		"",
		"  "+components.RenderLegend([]components.LegendItem{
			{Label: "This week", Color: components.ChartCurrentColor},
			{Label: "Last week", Color: components.ChartPreviousColor},
		}),
		fmt.Sprintf("  %s vs last week, %.1fh this week",
			styles.GetChangeStyle(change).Render(fmt.Sprintf("%+d%%", change)),
			usage.WeekTotal(snap.Daily),
		),
	)

	return m.card("📈", "This Week vs Last Week", rows...)
}

func (m *Model) renderWeeklyTotals(snap *models.Snapshot) string {
	bars := make([]components.Bar, 0, len(snap.Weekly))
	for _, w := range snap.Weekly {
		bars = append(bars, components.Bar{Label: w.Label, Value: w.Hours, Failed: w.Failed})
	}

	rows := []string{""}
	rows = append(rows, indent(components.RenderBarChart(bars, m.chartWidth(), components.ChartBarColor))...)
	return m.card("🗓", "Last 4 Weeks", rows...)
}

func (m *Model) renderHistory() string {
	rows := []string{""}

	switch {
	case m.loading && m.history == nil:
		rows = append(rows, styles.HelpStyle.Render("  Loading history data..."))
	case m.errorMsg != "" && m.history == nil:
		rows = append(rows, fmt.Sprintf("  %s %s", styles.ErrorTextStyle.Render("Error:"), m.errorMsg))
	case !m.history.HasData():
		rows = append(rows,
			styles.HelpStyle.Render("  No history recorded yet."),
			styles.HelpStyle.Render("  Every stats run adds the last 14 days."),
		)
	default:
		rows = append(rows, indent(components.RenderLineChart(m.history.Values(), m.chartWidth(), 8,
			fmt.Sprintf("Hours per day, %s", strings.ToLower(m.historyRange.String()))))...)

		peakDay, peakVal := m.history.GetPeakDay()
		peak := "none yet"
		if !peakDay.IsZero() {
			peak = fmt.Sprintf("%s (%.1fh)",
				lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Render(peakDay.Format("Mon Jan 2")),
				peakVal)
		}
		rows = append(rows,
			"",
			fmt.Sprintf("  Total: %.1fh  Active days: %d/%d  Peak: %s",
				m.history.Total(), m.history.ActiveDays(), len(m.history.Points), peak),
		)
	}

	return m.card("📜", "Daily History", rows...)
}

func (m *Model) renderWeeklyPattern() string {
	if !m.history.HasData() {
		return ""
	}

	avgs := m.history.WeekdayAverages()
	rows := []string{"", "  " + components.RenderWeeklyPattern(avgs)}

	best, bestVal := time.Sunday, 0.0
	for wd, v := range avgs {
		if v > bestVal {
			best, bestVal = time.Weekday(wd), v
		}
	}
	if bestVal > 0 {
		rows = append(rows, "", fmt.Sprintf("  Busiest day: %s (avg %.1fh)",
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Render(best.String()),
			bestVal))
	}

	return m.card("📅", "Weekly Pattern", rows...)
}
