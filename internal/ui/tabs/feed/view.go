package feed

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hackdash/internal/models"
	"github.com/j-veylop/hackdash/internal/ui/styles"
)

// View renders the feed tab.
func (m *Model) View() string {
	sections := []string{m.renderHeader()}

	if len(m.items) == 0 {
		sections = append(sections, m.renderEmpty())
	} else {
		sections = append(sections, m.table.View(), "", m.renderDetail())
	}

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.UnsetMarginBottom().Render("You Ship, We Ship")

	filter := "all"
	if m.filter != "" {
		filter = string(m.filter)
	}
	info := styles.HelpStyle.Render(fmt.Sprintf("  %d programs • showing %s", len(m.items), filter))
	if m.state.IsLoading("feed") {
		info += styles.InfoTextStyle.Render("  refreshing...")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, info),
		"",
	)
}

func (m *Model) renderEmpty() string {
	msg := "No programs loaded yet. Press r to fetch the feed."
	if m.filter != "" && len(m.state.GetFeedItems()) > 0 {
		msg = fmt.Sprintf("No %s programs. Press f to change the filter.", m.filter)
	}
	return styles.HelpStyle.Render(msg)
}

func (m *Model) renderDetail() string {
	item, ok := m.Selected()
	if !ok {
		return ""
	}

	cardWidth := max(m.width-6, 40)
	textWidth := max(cardWidth-6, 20)

	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.StatusBadge(item.Status), " ",
			styles.CardTitleStyle.UnsetMarginBottom().Render(item.Title),
		),
		styles.HelpStyle.Render("Published " + formatPublished(item)),
		"",
	}
	if item.Snippet != "" {
		rows = append(rows, lipgloss.NewStyle().Width(textWidth).Render(item.Snippet), "")
	}
	if item.Link != "" {
		rows = append(rows,
			styles.InfoTextStyle.Render(item.Link),
			styles.HelpStyle.Render("c copy link"),
		)
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatPublished(item models.FeedItem) string {
	if item.Published.IsZero() {
		return "-"
	}
	return item.Published.Local().Format("Jan 2, 2006")
}
