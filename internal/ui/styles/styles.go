// Package styles holds the hackdash palette and shared lipgloss styles.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hackdash/internal/models"
)

// Color definitions, taken from the Hack Club palette.
var (
	Primary = lipgloss.Color("#EC3750") // Hack Club red
	Subtle  = lipgloss.Color("240")

	// Trend series
	Orange = lipgloss.Color("#FF8C37")
	Cyan   = lipgloss.Color("#5BC0DE")

	// Status colors
	Success = lipgloss.Color("#33D6A6") // Green
	Error   = lipgloss.Color("196")     // Red
	Warning = lipgloss.Color("#F1C40F") // Yellow
	Info    = lipgloss.Color("#338EDA") // Blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// DocStyle wraps every tab body.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// StatValueStyle styles the big number on a stat card.
var StatValueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(TextPrimary)

// StatLabelStyle styles the caption under a stat value.
var StatLabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// ErrorPanelStyle frames the retry panel shown when a stats run fails
// with nothing cached.
var ErrorPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Error).
	Padding(1, 2).
	MarginBottom(1)

// FocusedBorderStyle frames the Slack ID input while it has focus.
var FocusedBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(0, 1)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpPanelStyle frames the ? overlay.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

var badgeStyle = lipgloss.NewStyle().
	Bold(true).
	Padding(0, 1)

// StatusBadge renders a feed status as a colored label.
func StatusBadge(status models.FeedStatus) string {
	switch status {
	case models.FeedStatusActive:
		return badgeStyle.Foreground(lipgloss.Color("0")).Background(Success).Render("ACTIVE")
	case models.FeedStatusDraft:
		return badgeStyle.Foreground(lipgloss.Color("0")).Background(Warning).Render("DRAFT")
	case models.FeedStatusEnded:
		return badgeStyle.Foreground(TextPrimary).Background(Subtle).Render("ENDED")
	default:
		return badgeStyle.Foreground(TextSecondary).Render("?")
	}
}

// GetChangeStyle colors a week-over-week percentage.
func GetChangeStyle(change int) lipgloss.Style {
	switch {
	case change > 0:
		return SuccessTextStyle
	case change < 0:
		return ErrorTextStyle
	default:
		return lipgloss.NewStyle().Foreground(TextSecondary)
	}
}

// GetGoalStyle colors progress toward the daily goal.
func GetGoalStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= 100:
		return SuccessTextStyle
	case percent >= 50:
		return WarningTextStyle
	default:
		return lipgloss.NewStyle().Foreground(TextSecondary)
	}
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
